package types

import "encoding/json"

// UploadResult is the per-file outcome of an upload job. Every file in a job
// produces exactly one of these, success or not.
type UploadResult struct {
	FileName string `json:"fileName"`
	PdfURL   string `json:"pdfUrl,omitempty"`
	Key      string `json:"key,omitempty"`
	Success  bool   `json:"success"`
	Error    string `json:"error,omitempty"`
}

// ProcessResult is the per-file outcome of a START_PROCESSING job.
type ProcessResult struct {
	Name  string          `json:"name"`
	Data  json.RawMessage `json:"data,omitempty"`
	Error string          `json:"error,omitempty"`
}

// Job status values stored in the job store.
const (
	JobStatusPending    = "pending"
	JobStatusUploading  = "uploading"
	JobStatusProcessing = "processing"
	JobStatusCompleted  = "completed"
	JobStatusFailed     = "failed"
)

// Job is the durable record of one client-initiated batch. It survives the
// connection so a reconnecting client can query status with GET_STATUS or
// over HTTP.
type Job struct {
	ID        string         `json:"id"`
	Username  string         `json:"username,omitempty"`
	Status    string         `json:"status"`
	FileCount int            `json:"fileCount"`
	Results   []UploadResult `json:"results"`
	CreatedAt int64          `json:"createdAt"`
	UpdatedAt int64          `json:"updatedAt"`
}
