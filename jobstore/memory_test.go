package jobstore

import (
	"context"
	"errors"
	"testing"

	"github.com/hyeonkim-dev/docintake/types"
)

func TestMemoryStoreLifecycle(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	err := store.Create(ctx, &types.Job{
		ID:        "job-1",
		Username:  "alice",
		Status:    types.JobStatusUploading,
		FileCount: 2,
		Results:   []types.UploadResult{},
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if err := store.UpdateFile(ctx, "job-1", types.UploadResult{FileName: "a.pdf", Success: true}); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if err := store.UpdateFile(ctx, "job-1", types.UploadResult{FileName: "b.pdf", Success: false, Error: "boom"}); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if err := store.SetStatus(ctx, "job-1", types.JobStatusCompleted); err != nil {
		t.Fatalf("set status failed: %v", err)
	}

	job, err := store.Get(ctx, "job-1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if job.Status != types.JobStatusCompleted {
		t.Errorf("status = %s, want completed", job.Status)
	}
	if len(job.Results) != 2 {
		t.Errorf("expected 2 file results, got %d", len(job.Results))
	}
	if job.CreatedAt == 0 || job.UpdatedAt == 0 {
		t.Errorf("timestamps not set: created=%d updated=%d", job.CreatedAt, job.UpdatedAt)
	}
}

func TestMemoryStoreUpdateReplacesByFileName(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	_ = store.Create(ctx, &types.Job{ID: "job-1", Status: types.JobStatusUploading})
	_ = store.UpdateFile(ctx, "job-1", types.UploadResult{FileName: "a.pdf", Success: false, Error: "transient"})
	_ = store.UpdateFile(ctx, "job-1", types.UploadResult{FileName: "a.pdf", Success: true})

	job, _ := store.Get(ctx, "job-1")
	if len(job.Results) != 1 {
		t.Fatalf("expected one result per file name, got %d", len(job.Results))
	}
	if !job.Results[0].Success {
		t.Errorf("later result must replace the earlier one")
	}
}

func TestMemoryStoreUnknownJob(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	if _, err := store.Get(ctx, "nope"); !errors.Is(err, ErrJobNotFound) {
		t.Errorf("get unknown job = %v, want ErrJobNotFound", err)
	}
	if err := store.UpdateFile(ctx, "nope", types.UploadResult{}); !errors.Is(err, ErrJobNotFound) {
		t.Errorf("update unknown job = %v, want ErrJobNotFound", err)
	}
	if err := store.SetStatus(ctx, "nope", types.JobStatusFailed); !errors.Is(err, ErrJobNotFound) {
		t.Errorf("set status on unknown job = %v, want ErrJobNotFound", err)
	}
}

func TestMemoryStoreGetReturnsCopy(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	_ = store.Create(ctx, &types.Job{ID: "job-1", Status: types.JobStatusUploading})
	_ = store.UpdateFile(ctx, "job-1", types.UploadResult{FileName: "a.pdf", Success: true})

	job, _ := store.Get(ctx, "job-1")
	job.Status = "tampered"
	job.Results[0].FileName = "tampered.pdf"

	fresh, _ := store.Get(ctx, "job-1")
	if fresh.Status == "tampered" || fresh.Results[0].FileName == "tampered.pdf" {
		t.Errorf("mutating a returned job must not affect the stored record")
	}
}
