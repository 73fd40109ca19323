package analytics

import (
	"fmt"
	"testing"
	"time"
)

func TestRecordAssignsIDAndTimestamp(t *testing.T) {
	r := NewRecorder(10)
	id := r.Record(Event{FileName: "a.png", OriginalFormat: "png", TargetFormat: "jpeg", Success: true})
	if id == "" {
		t.Fatal("empty analytics id")
	}
	events := r.Export("all")
	if len(events) != 1 {
		t.Fatalf("len = %d, want 1", len(events))
	}
	if events[0].ID != id || events[0].Timestamp.IsZero() {
		t.Fatalf("event not stamped: %+v", events[0])
	}
}

func TestBoundedLogEvictsOldestFirst(t *testing.T) {
	r := NewRecorder(1000)
	for i := 0; i < 1001; i++ {
		r.Record(Event{FileName: fmt.Sprintf("file-%d.png", i), OriginalFormat: "png", TargetFormat: "jpeg", Success: true})
	}
	if r.Len() != 1000 {
		t.Fatalf("retained %d events, want 1000", r.Len())
	}
	events := r.Export("all")
	if events[0].FileName != "file-1.png" {
		t.Fatalf("oldest retained = %s, want file-1.png (file-0 evicted)", events[0].FileName)
	}
	if events[len(events)-1].FileName != "file-1000.png" {
		t.Fatalf("newest retained = %s, want file-1000.png", events[len(events)-1].FileName)
	}
}

func TestSummarizeDayWindowExcludesOldEvents(t *testing.T) {
	r := NewRecorder(10)
	base := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	r.now = func() time.Time { return base.Add(-25 * time.Hour) }
	r.Record(Event{FileName: "old.png", OriginalFormat: "png", TargetFormat: "jpeg", Success: true})

	r.now = func() time.Time { return base.Add(-1 * time.Hour) }
	r.Record(Event{FileName: "recent.png", OriginalFormat: "png", TargetFormat: "jpeg", Success: true})

	r.now = func() time.Time { return base }
	s := r.Summarize("day")
	if s.TotalConversions != 1 {
		t.Fatalf("day window included %d events, want 1", s.TotalConversions)
	}
	all := r.Summarize("all")
	if all.TotalConversions != 2 {
		t.Fatalf("all window included %d events, want 2", all.TotalConversions)
	}
}

func TestSummarizeAggregates(t *testing.T) {
	r := NewRecorder(100)
	r.Record(Event{OriginalFormat: "png", TargetFormat: "jpeg", FileSize: 100, ProcessingTimeMs: 10, Success: true})
	r.Record(Event{OriginalFormat: "png", TargetFormat: "jpeg", FileSize: 200, ProcessingTimeMs: 30, Success: true})
	r.Record(Event{OriginalFormat: "mp4", TargetFormat: "mp3", FileSize: 700, ProcessingTimeMs: 200, Success: false, ErrorMessage: "ffmpeg error"})

	s := r.Summarize("all")
	if s.TotalConversions != 3 || s.Successes != 2 || s.Failures != 1 {
		t.Fatalf("counts wrong: %+v", s)
	}
	if s.TotalBytes != 1000 {
		t.Fatalf("total bytes = %d, want 1000", s.TotalBytes)
	}
	if s.AvgProcessingMs != 80 {
		t.Fatalf("avg ms = %g, want 80", s.AvgProcessingMs)
	}
	if s.SuccessRate < 66.6 || s.SuccessRate > 66.7 {
		t.Fatalf("success rate = %g", s.SuccessRate)
	}
	if len(s.TopPairs) != 2 || s.TopPairs[0].Pair != "png-jpeg" || s.TopPairs[0].Count != 2 {
		t.Fatalf("top pairs wrong: %+v", s.TopPairs)
	}
	if len(s.Daily) != 30 {
		t.Fatalf("daily rollup has %d days, want 30", len(s.Daily))
	}
}

func TestPairBreakdownFilter(t *testing.T) {
	r := NewRecorder(100)
	r.Record(Event{OriginalFormat: "png", TargetFormat: "jpeg", Success: true})
	r.Record(Event{OriginalFormat: "svg", TargetFormat: "png", Success: true})

	all := r.PairBreakdown("all", "")
	if len(all) != 2 {
		t.Fatalf("breakdown has %d pairs, want 2", len(all))
	}
	one := r.PairBreakdown("all", "svg-png")
	if len(one) != 1 || one[0].Pair != "svg-png" {
		t.Fatalf("filtered breakdown wrong: %+v", one)
	}
}

func TestInsightsThresholds(t *testing.T) {
	r := NewRecorder(100)
	// 50% success, slow pair, large volume.
	r.Record(Event{OriginalFormat: "mp4", TargetFormat: "webm", FileSize: 600 << 20, ProcessingTimeMs: 20000, Success: true})
	r.Record(Event{OriginalFormat: "mp4", TargetFormat: "webm", FileSize: 600 << 20, ProcessingTimeMs: 20000, Success: false, ErrorMessage: "boom"})

	ins := r.Insights()
	if len(ins.Recommendations) == 0 {
		t.Fatal("expected recommendations for low success rate")
	}
	if len(ins.Bottlenecks) == 0 {
		t.Fatal("expected bottlenecks for slow conversions")
	}
	if len(ins.Optimizations) == 0 {
		t.Fatal("expected optimizations for >1GiB volume")
	}
}

func TestInsightsEmptyRecorder(t *testing.T) {
	r := NewRecorder(10)
	ins := r.Insights()
	if ins.Recommendations == nil || ins.Bottlenecks == nil || ins.Optimizations == nil {
		t.Fatal("insight lists must be non-nil for JSON serialization")
	}
	if len(ins.Recommendations)+len(ins.Bottlenecks)+len(ins.Optimizations) != 0 {
		t.Fatalf("expected no findings: %+v", ins)
	}
}
