package vision

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/bytedance/sonic"
)

// Error kinds for a single extraction attempt. Both are per-file failures,
// the pipeline records them and moves on to the next file.
var (
	ErrModelInvocation = errors.New("vision model invocation failed")
	ErrModelParse      = errors.New("vision model reply is not valid JSON")
)

// Result is the parsed model reply for one document. Raw carries the full
// JSON object; DocumentType and TotalError are the only fields with a fixed
// meaning, the rest of the shape is model-determined.
type Result struct {
	Raw          json.RawMessage
	DocumentType string
	TotalError   []string
}

// resultEnvelope picks the two conventional fields out of the reply.
type resultEnvelope struct {
	DocumentType string   `json:"documentType"`
	TotalError   []string `json:"totalError"`
}

// ParseResult validates the model reply and extracts the conventional fields.
func ParseResult(reply string) (*Result, error) {
	var env resultEnvelope
	if err := sonic.Unmarshal([]byte(reply), &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrModelParse, err)
	}
	return &Result{
		Raw:          json.RawMessage(reply),
		DocumentType: env.DocumentType,
		TotalError:   env.TotalError,
	}, nil
}

// HasError reports whether any extracted field came back low-confidence.
func (r *Result) HasError() bool {
	return len(r.TotalError) > 0
}
