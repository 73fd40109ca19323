package models

import "time"

// ConversionJob is the unit published to the queue for async
// conversions. Input bytes are staged in the cache under InputKey
// rather than travelling through the broker.
type ConversionJob struct {
	ID           string    `json:"id"`
	InputKey     string    `json:"input_key"`
	FileName     string    `json:"file_name"`
	TargetFormat string    `json:"target_format"`
	CreatedAt    time.Time `json:"created_at"`
}

// JobState is what GET /jobs/:id serves; it lives in the cache keyed
// by job id.
type JobState struct {
	ID          string    `json:"id"`
	Status      string    `json:"status"`
	FileName    string    `json:"file_name"`
	ResultURL   string    `json:"result_url,omitempty"`
	Error       string    `json:"error,omitempty"`
	SubmittedAt time.Time `json:"submitted_at"`
	FinishedAt  time.Time `json:"finished_at,omitempty"`
}

const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// UploadedFile is the metadata row written alongside a stored original.
type UploadedFile struct {
	ID          string    `json:"id"`
	Key         string    `json:"key"`
	FileName    string    `json:"file_name"`
	Size        int64     `json:"size"`
	ContentType string    `json:"content_type"`
	URL         string    `json:"url"`
	UploadedAt  time.Time `json:"uploaded_at"`
}
