package types

import (
	"encoding/json"
	"time"
)

// Outbound progress event types, in the order a client observes them.
const (
	EventUploadStarted             = "UPLOAD_STARTED"
	EventUploadingFile             = "UPLOADING_FILE"
	EventFileUploaded              = "FILE_UPLOADED"
	EventFileUploadError           = "FILE_UPLOAD_ERROR"
	EventOpenAIProcessingProgress  = "OPENAI_PROCESSING_PROGRESS"
	EventOpenAIProcessingCompleted = "OPENAI_PROCESSING_COMPLETED"
	EventOpenAIProcessingError     = "OPENAI_PROCESSING_ERROR"
	EventUploadCompleted           = "UPLOAD_COMPLETED"
	EventProcessingStarted         = "PROCESSING_STARTED"
	EventProcessingFile            = "PROCESSING_FILE"
	EventFileProcessed             = "FILE_PROCESSED"
	EventFileError                 = "FILE_ERROR"
	EventProcessingCompleted       = "PROCESSING_COMPLETED"
	EventStatusUpdate              = "STATUS_UPDATE"
	EventPong                      = "PONG"
	EventError                     = "ERROR"
)

// File status values carried in progress events.
const (
	StatusUploading  = "uploading"
	StatusUploaded   = "uploaded"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusDone       = "done"
	StatusError      = "error"
)

// ProgressEvent is one status notification pushed to a connection during job
// execution. Transient: pushed and forgotten, never replayed. Index and Total
// are pointers so that zero values survive omitempty.
type ProgressEvent struct {
	Type         string          `json:"type"`
	JobID        string          `json:"jobId,omitempty"`
	FileName     string          `json:"fileName,omitempty"`
	Status       string          `json:"status,omitempty"`
	Message      string          `json:"message,omitempty"`
	Index        *int            `json:"index,omitempty"`
	Total        *int            `json:"total,omitempty"`
	FileCount    *int            `json:"fileCount,omitempty"`
	URL          string          `json:"url,omitempty"`
	Key          string          `json:"key,omitempty"`
	DocumentType string          `json:"documentType,omitempty"`
	HasError     *bool           `json:"hasError,omitempty"`
	Result       json.RawMessage `json:"result,omitempty"`
	Results      []UploadResult  `json:"results,omitempty"`
	ProcResults  []ProcessResult `json:"processResults,omitempty"`
	Error        string          `json:"error,omitempty"`
	Timestamp    string          `json:"timestamp"`
}

// NewProgressEvent creates an event of the given type with the timestamp set.
// Every event carries an ISO-8601 timestamp.
func NewProgressEvent(eventType, jobID string) *ProgressEvent {
	return &ProgressEvent{
		Type:      eventType,
		JobID:     jobID,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// IntPtr is a small helper for the optional numeric event fields.
func IntPtr(v int) *int { return &v }

// BoolPtr is a small helper for the optional hasError event field.
func BoolPtr(v bool) *bool { return &v }
