package jobstore

import (
	"context"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"

	"github.com/hyeonkim-dev/docintake/types"
)

const (
	jobKeyPrefix = "docintake:job:"

	// Jobs are queryable for a day after completion.
	jobTTL = 24 * time.Hour
)

// RedisStore persists job records as JSON blobs with a TTL.
type RedisStore struct {
	client *redis.Client
}

var _ Store = (*RedisStore)(nil)

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Create(ctx context.Context, job *types.Job) error {
	now := time.Now().UnixMilli()
	stored := *job
	if stored.CreatedAt == 0 {
		stored.CreatedAt = now
	}
	stored.UpdatedAt = now
	return s.write(ctx, &stored)
}

func (s *RedisStore) UpdateFile(ctx context.Context, jobID string, result types.UploadResult) error {
	job, err := s.Get(ctx, jobID)
	if err != nil {
		return err
	}
	applyFileResult(job, result)
	job.UpdatedAt = time.Now().UnixMilli()
	return s.write(ctx, job)
}

func (s *RedisStore) SetStatus(ctx context.Context, jobID, status string) error {
	job, err := s.Get(ctx, jobID)
	if err != nil {
		return err
	}
	job.Status = status
	job.UpdatedAt = time.Now().UnixMilli()
	return s.write(ctx, job)
}

func (s *RedisStore) Get(ctx context.Context, jobID string) (*types.Job, error) {
	payload, err := s.client.Get(ctx, jobKeyPrefix+jobID).Bytes()
	if err == redis.Nil {
		return nil, ErrJobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read job %s: %w", jobID, err)
	}
	var job types.Job
	if err := sonic.Unmarshal(payload, &job); err != nil {
		return nil, fmt.Errorf("failed to decode job %s: %w", jobID, err)
	}
	return &job, nil
}

func (s *RedisStore) write(ctx context.Context, job *types.Job) error {
	payload, err := sonic.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to encode job %s: %w", job.ID, err)
	}
	if err := s.client.Set(ctx, jobKeyPrefix+job.ID, payload, jobTTL).Err(); err != nil {
		return fmt.Errorf("failed to store job %s: %w", job.ID, err)
	}
	return nil
}
