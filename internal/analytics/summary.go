package analytics

import (
	"fmt"
	"sort"
)

const gib = int64(1) << 30

// PairStat aggregates one source->target conversion pair.
type PairStat struct {
	Pair             string  `json:"pair"`
	Count            int     `json:"count"`
	SuccessRate      float64 `json:"successRate"`
	AvgProcessingMs  float64 `json:"avgProcessingTime"`
	TotalBytes       int64   `json:"totalBytes"`
	FailedConversion int     `json:"failedConversions"`
}

// DailyStat is one day of the 30-day rollup.
type DailyStat struct {
	Date      string `json:"date"`
	Count     int    `json:"count"`
	Successes int    `json:"successes"`
	Failures  int    `json:"failures"`
}

// Summary is the payload served for action=summary.
type Summary struct {
	TimeRange        string      `json:"timeRange"`
	TotalConversions int         `json:"totalConversions"`
	Successes        int         `json:"successfulConversions"`
	Failures         int         `json:"failedConversions"`
	SuccessRate      float64     `json:"successRate"`
	AvgProcessingMs  float64     `json:"avgProcessingTime"`
	TotalBytes       int64       `json:"totalBytes"`
	TopPairs         []PairStat  `json:"topFormats"`
	Daily            []DailyStat `json:"dailyBreakdown"`
}

// Insights groups the static-threshold findings served for
// action=insights.
type Insights struct {
	Recommendations []string `json:"recommendations"`
	Bottlenecks     []string `json:"bottlenecks"`
	Optimizations   []string `json:"optimizations"`
}

// Summarize aggregates the events inside the time range: counts,
// success rate, mean processing time, total bytes, the most frequent
// conversion pairs and a daily rollup for the last 30 days.
func (r *Recorder) Summarize(timeRange string) *Summary {
	events := r.filtered(timeRange)

	s := &Summary{TimeRange: timeRange}
	if len(events) == 0 {
		s.TopPairs = []PairStat{}
		s.Daily = []DailyStat{}
		return s
	}

	var totalMs int64
	for _, e := range events {
		s.TotalConversions++
		if e.Success {
			s.Successes++
		} else {
			s.Failures++
		}
		totalMs += e.ProcessingTimeMs
		s.TotalBytes += e.FileSize
	}
	s.SuccessRate = float64(s.Successes) / float64(s.TotalConversions) * 100
	s.AvgProcessingMs = float64(totalMs) / float64(s.TotalConversions)
	s.TopPairs = pairStats(events, 10)
	s.Daily = r.dailyRollup(events)
	return s
}

// PairBreakdown serves action=formats: every pair within the time
// range, optionally narrowed to a single "source-target" pair.
func (r *Recorder) PairBreakdown(timeRange, pair string) []PairStat {
	stats := pairStats(r.filtered(timeRange), 0)
	if pair == "" {
		return stats
	}
	out := make([]PairStat, 0, 1)
	for _, st := range stats {
		if st.Pair == pair {
			out = append(out, st)
		}
	}
	return out
}

func pairStats(events []Event, limit int) []PairStat {
	type acc struct {
		count    int
		failures int
		totalMs  int64
		bytes    int64
	}
	byPair := map[string]*acc{}
	for _, e := range events {
		key := fmt.Sprintf("%s-%s", e.OriginalFormat, e.TargetFormat)
		a := byPair[key]
		if a == nil {
			a = &acc{}
			byPair[key] = a
		}
		a.count++
		if !e.Success {
			a.failures++
		}
		a.totalMs += e.ProcessingTimeMs
		a.bytes += e.FileSize
	}

	stats := make([]PairStat, 0, len(byPair))
	for pair, a := range byPair {
		stats = append(stats, PairStat{
			Pair:             pair,
			Count:            a.count,
			SuccessRate:      float64(a.count-a.failures) / float64(a.count) * 100,
			AvgProcessingMs:  float64(a.totalMs) / float64(a.count),
			TotalBytes:       a.bytes,
			FailedConversion: a.failures,
		})
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Count != stats[j].Count {
			return stats[i].Count > stats[j].Count
		}
		return stats[i].Pair < stats[j].Pair
	})
	if limit > 0 && len(stats) > limit {
		stats = stats[:limit]
	}
	return stats
}

func (r *Recorder) dailyRollup(events []Event) []DailyStat {
	byDay := map[string]*DailyStat{}
	now := r.now()
	for i := 0; i < 30; i++ {
		date := now.AddDate(0, 0, -i).Format("2006-01-02")
		byDay[date] = &DailyStat{Date: date}
	}

	for _, e := range events {
		date := e.Timestamp.Format("2006-01-02")
		if day, ok := byDay[date]; ok {
			day.Count++
			if e.Success {
				day.Successes++
			} else {
				day.Failures++
			}
		}
	}

	out := make([]DailyStat, 0, len(byDay))
	for _, day := range byDay {
		out = append(out, *day)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

// Insights derives recommendations from fixed thresholds: overall
// success below 95%, mean time above 5s, per-pair success below 90%,
// per-pair mean above 10s, and total volume above 1 GiB.
func (r *Recorder) Insights() *Insights {
	events := r.filtered("all")
	ins := &Insights{
		Recommendations: []string{},
		Bottlenecks:     []string{},
		Optimizations:   []string{},
	}
	if len(events) == 0 {
		return ins
	}

	var successes int
	var totalMs, totalBytes int64
	for _, e := range events {
		if e.Success {
			successes++
		}
		totalMs += e.ProcessingTimeMs
		totalBytes += e.FileSize
	}
	successRate := float64(successes) / float64(len(events)) * 100
	avgMs := float64(totalMs) / float64(len(events))

	if successRate < 95 {
		ins.Recommendations = append(ins.Recommendations,
			fmt.Sprintf("Overall success rate is %.1f%%; investigate the most common failure messages.", successRate))
	}
	if avgMs > 5000 {
		ins.Bottlenecks = append(ins.Bottlenecks,
			fmt.Sprintf("Mean conversion time is %.0fms; conversions are slower than the 5s threshold.", avgMs))
	}
	for _, pair := range pairStats(events, 0) {
		if pair.SuccessRate < 90 {
			ins.Recommendations = append(ins.Recommendations,
				fmt.Sprintf("Conversion %s succeeds only %.1f%% of the time.", pair.Pair, pair.SuccessRate))
		}
		if pair.AvgProcessingMs > 10000 {
			ins.Bottlenecks = append(ins.Bottlenecks,
				fmt.Sprintf("Conversion %s averages %.0fms per request.", pair.Pair, pair.AvgProcessingMs))
		}
	}
	if totalBytes > gib {
		ins.Optimizations = append(ins.Optimizations,
			fmt.Sprintf("Processed volume is %d bytes; consider offloading large conversions to the async queue.", totalBytes))
	}
	return ins
}
