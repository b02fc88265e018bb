package jobstore

import (
	"context"
	"sync"
	"time"

	"github.com/hyeonkim-dev/docintake/types"
)

// MemoryStore keeps job records in process memory. Single-node default and
// test double.
type MemoryStore struct {
	mu   sync.RWMutex
	jobs map[string]*types.Job
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{jobs: make(map[string]*types.Job)}
}

func (s *MemoryStore) Create(_ context.Context, job *types.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UnixMilli()
	stored := *job
	if stored.CreatedAt == 0 {
		stored.CreatedAt = now
	}
	stored.UpdatedAt = now
	s.jobs[stored.ID] = &stored
	return nil
}

func (s *MemoryStore) UpdateFile(_ context.Context, jobID string, result types.UploadResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[jobID]
	if !ok {
		return ErrJobNotFound
	}
	applyFileResult(job, result)
	job.UpdatedAt = time.Now().UnixMilli()
	return nil
}

func (s *MemoryStore) SetStatus(_ context.Context, jobID, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[jobID]
	if !ok {
		return ErrJobNotFound
	}
	job.Status = status
	job.UpdatedAt = time.Now().UnixMilli()
	return nil
}

func (s *MemoryStore) Get(_ context.Context, jobID string) (*types.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[jobID]
	if !ok {
		return nil, ErrJobNotFound
	}
	copied := *job
	copied.Results = append([]types.UploadResult(nil), job.Results...)
	return &copied, nil
}
