package analytics

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultCapacity bounds the in-memory event log.
const DefaultCapacity = 1000

// Event is one recorded conversion attempt.
type Event struct {
	ID               string    `json:"id"`
	FileName         string    `json:"fileName"`
	OriginalFormat   string    `json:"originalFormat"`
	TargetFormat     string    `json:"targetFormat"`
	FileSize         int64     `json:"fileSize"`
	ProcessingTimeMs int64     `json:"processingTime"`
	Success          bool      `json:"success"`
	ErrorMessage     string    `json:"errorMessage,omitempty"`
	Timestamp        time.Time `json:"timestamp"`
}

// Recorder is a mutex-guarded bounded log of conversion events with
// FIFO eviction. Nothing is persisted; a restart discards all history.
type Recorder struct {
	mu       sync.Mutex
	events   []Event
	capacity int
	now      func() time.Time
}

func NewRecorder(capacity int) *Recorder {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Recorder{
		capacity: capacity,
		now:      time.Now,
	}
}

// Record assigns an id and timestamp, appends the event and trims the
// log to capacity, discarding the oldest entries first. Returns the
// generated id.
func (r *Recorder) Record(e Event) string {
	e.ID = uuid.New().String()
	e.Timestamp = r.now()

	r.mu.Lock()
	defer r.mu.Unlock()

	r.events = append(r.events, e)
	if len(r.events) > r.capacity {
		r.events = r.events[len(r.events)-r.capacity:]
	}
	return e.ID
}

// Len returns the number of retained events.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

// cutoff translates a time range name into the earliest included
// timestamp. Unknown names behave like "all".
func (r *Recorder) cutoff(timeRange string) time.Time {
	now := r.now()
	switch timeRange {
	case "day":
		return now.Add(-24 * time.Hour)
	case "week":
		return now.Add(-7 * 24 * time.Hour)
	case "month":
		return now.Add(-30 * 24 * time.Hour)
	default:
		return time.Time{}
	}
}

func (r *Recorder) filtered(timeRange string) []Event {
	cut := r.cutoff(timeRange)

	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Event, 0, len(r.events))
	for _, e := range r.events {
		if cut.IsZero() || e.Timestamp.After(cut) {
			out = append(out, e)
		}
	}
	return out
}

// Export returns a copy of the retained events within the time range.
func (r *Recorder) Export(timeRange string) []Event {
	return r.filtered(timeRange)
}
