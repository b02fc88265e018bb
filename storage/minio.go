package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/hyeonkim-dev/docintake/tool"
	"github.com/hyeonkim-dev/docintake/types"
)

// MinioStore is the S3-compatible ObjectStore used in production. It works
// against both AWS S3 and a self-hosted MinIO, the retrieval URL shape is the
// only difference.
type MinioStore struct {
	client        *minio.Client
	bucket        string
	region        string
	endpoint      string
	useSSL        bool
	publicBaseURL string
}

var _ ObjectStore = (*MinioStore)(nil)

// NewMinioStore connects to the object storage endpoint and makes sure the
// bucket exists with a public-read policy, so retrieval URLs work without
// presigning.
func NewMinioStore(ctx context.Context, cfg types.StorageConfig) (*MinioStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	s := &MinioStore{
		client:        client,
		bucket:        cfg.Bucket,
		region:        cfg.Region,
		endpoint:      cfg.Endpoint,
		useSSL:        cfg.UseSSL,
		publicBaseURL: strings.TrimSuffix(cfg.PublicBaseURL, "/"),
	}
	if err := s.ensureBucket(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *MinioStore) ensureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket %s: %w", s.bucket, err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{Region: s.region}); err != nil {
		// AWS rejects MakeBucket when the bucket exists in another account's
		// namespace or the key lacks the permission; both are survivable.
		tool.DefaultLogger.Warnf("[Storage] Could not create bucket %s: %v", s.bucket, err)
		return nil
	}
	policy := fmt.Sprintf(`{"Version":"2012-10-17","Statement":[{"Effect":"Allow","Principal":{"AWS":["*"]},"Action":["s3:GetObject"],"Resource":["arn:aws:s3:::%s/*"]}]}`, s.bucket)
	if err := s.client.SetBucketPolicy(ctx, s.bucket, policy); err != nil {
		tool.DefaultLogger.Warnf("[Storage] Could not set public-read policy on %s: %v", s.bucket, err)
	}
	tool.DefaultLogger.Infof("[Storage] Created bucket %s", s.bucket)
	return nil
}

// Put writes the object and returns its deterministic public URL.
func (s *MinioStore) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrStorageWrite, err)
	}
	tool.DefaultLogger.Infof("[Storage] Uploaded object %s (%d bytes)", key, len(data))
	return s.ObjectURL(key), nil
}

// ObjectURL builds the retrieval URL for a key. With a public base URL
// configured that wins; against AWS the virtual-host form is used; otherwise
// the plain endpoint/bucket/key form (MinIO).
func (s *MinioStore) ObjectURL(key string) string {
	if s.publicBaseURL != "" {
		return s.publicBaseURL + "/" + key
	}
	if strings.HasSuffix(s.endpoint, "amazonaws.com") {
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key)
	}
	scheme := "http"
	if s.useSSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s/%s", scheme, s.endpoint, s.bucket, key)
}
