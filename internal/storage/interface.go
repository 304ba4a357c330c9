package storage

import (
	"context"
	"io"
)

// ObjectStorage is the subset of bucket operations the image archive needs.
type ObjectStorage interface {
	// Upload writes an object under key.
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error

	// GetURL returns the URL an archived object is reachable at.
	GetURL(key string) string

	// Exists reports whether key is already stored.
	Exists(ctx context.Context, key string) (bool, error)
}
