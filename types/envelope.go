package types

// Inbound WebSocket message types.
const (
	MessageUploadFile      = "UPLOAD_FILE"
	MessageStartProcessing = "START_PROCESSING"
	MessagePing            = "PING"
	MessageGetStatus       = "GET_STATUS"
)

// Envelope is the inbound WebSocket message frame. The Type discriminator
// selects the handler; the remaining fields are filled depending on type.
type Envelope struct {
	Type     string      `json:"type"`
	JobID    string      `json:"jobId,omitempty"`
	Username string      `json:"username,omitempty"`
	Files    []FileInput `json:"files,omitempty"`
}

// FileInput is one file in an UPLOAD_FILE message. Content travels base64
// encoded inside the JSON frame.
type FileInput struct {
	FileName      string `json:"fileName"`
	Base64Content string `json:"base64Content"`
	ContentType   string `json:"contentType,omitempty"`
}

// ProcessedFileRef is one entry in a START_PROCESSING message: a file that is
// already in object storage, referenced by URL. Older clients send imageName
// and url instead of fileName and pdfUrl, both spellings are accepted.
type ProcessedFileRef struct {
	FileName  string `json:"fileName,omitempty"`
	ImageName string `json:"imageName,omitempty"`
	PdfURL    string `json:"pdfUrl,omitempty"`
	URL       string `json:"url,omitempty"`
}

// Name returns the file name regardless of which spelling the client used.
func (r ProcessedFileRef) Name() string {
	if r.FileName != "" {
		return r.FileName
	}
	return r.ImageName
}

// FileURL returns the storage URL regardless of which spelling the client used.
func (r ProcessedFileRef) FileURL() string {
	if r.PdfURL != "" {
		return r.PdfURL
	}
	return r.URL
}

// StartProcessingEnvelope mirrors Envelope for the START_PROCESSING type,
// where the files array carries URL references instead of raw content.
type StartProcessingEnvelope struct {
	Type  string             `json:"type"`
	JobID string             `json:"jobId,omitempty"`
	Files []ProcessedFileRef `json:"files,omitempty"`
}
