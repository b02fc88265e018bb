package storage

import (
	"context"
	"errors"
	"path"
	"strings"

	"github.com/hyeonkim-dev/docintake/tool"
)

// ErrStorageWrite wraps any object store write failure so callers can treat
// it as a per-file error instead of a job-level one.
var ErrStorageWrite = errors.New("storage write failed")

// ObjectStore persists a document and returns its public retrieval URL.
type ObjectStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (url string, err error)
}

// DeriveKey builds the storage key for a file:
// {sanitized-username-or-empty}/{uuid}_{originalFileName}. The username
// segment is dropped entirely when no username was supplied.
func DeriveKey(username, fileName string) string {
	prefix := ""
	if username != "" {
		prefix = SanitizeUsername(username) + "/"
	}
	return prefix + tool.GenerateRandomUUID() + "_" + fileName
}

// SanitizeUsername replaces every character outside [A-Za-z0-9_] with an
// underscore so usernames are safe as key prefixes.
func SanitizeUsername(username string) string {
	var b strings.Builder
	b.Grow(len(username))
	for _, r := range username {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}

// InferContentType resolves the content type for a file. An explicit value
// wins; otherwise the file extension decides, falling back to octet-stream.
func InferContentType(fileName, explicit string) string {
	if explicit != "" {
		return explicit
	}
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(fileName), "."))
	switch ext {
	case "pdf":
		return "application/pdf"
	case "jpg":
		return "image/jpeg"
	case "png", "jpeg", "gif":
		return "image/" + ext
	default:
		return "application/octet-stream"
	}
}
