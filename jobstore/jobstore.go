// Package jobstore keeps durable per-job records so a client can query job
// status after reconnecting, instead of relying only on in-flight events.
package jobstore

import (
	"context"
	"errors"

	"github.com/hyeonkim-dev/docintake/types"
)

// ErrJobNotFound is returned by Get for unknown job ids.
var ErrJobNotFound = errors.New("job not found")

// Store records job lifecycle. UpdateFile appends (or replaces, matched by
// file name) one per-file result and bumps the updated timestamp.
type Store interface {
	Create(ctx context.Context, job *types.Job) error
	UpdateFile(ctx context.Context, jobID string, result types.UploadResult) error
	SetStatus(ctx context.Context, jobID, status string) error
	Get(ctx context.Context, jobID string) (*types.Job, error)
}

// applyFileResult replaces an existing result for the same file name or
// appends a new one. Shared by the store implementations.
func applyFileResult(job *types.Job, result types.UploadResult) {
	for i, r := range job.Results {
		if r.FileName == result.FileName {
			job.Results[i] = result
			return
		}
	}
	job.Results = append(job.Results, result)
}
