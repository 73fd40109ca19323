package models

import "time"

type APIResponse struct {
	Success bool        `json:"success"`
	Error   string      `json:"error,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// ConversionError is the JSON body returned for failed conversions.
type ConversionError struct {
	Error    string    `json:"error"`
	Details  string    `json:"details,omitempty"`
	FileInfo *FileInfo `json:"fileInfo,omitempty"`
}

// FileInfo identifies the rejected (kind, sourceExt, targetFormat)
// combination in error responses.
type FileInfo struct {
	FileName     string `json:"fileName,omitempty"`
	Kind         string `json:"kind,omitempty"`
	SourceFormat string `json:"sourceFormat,omitempty"`
	TargetFormat string `json:"targetFormat,omitempty"`
}

type HealthCheck struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Services  map[string]string `json:"services"`
}
