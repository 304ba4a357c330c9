package storage

import (
	"context"
	"strings"
)

// NewStorage creates an ObjectStorage for cfg and makes sure its bucket exists.
// Parameters:
//   - ctx: context for the bucket check.
//   - cfg: endpoint, credentials and bucket; Type is detected from the endpoint when empty.
//
// Returns:
//   - ObjectStorage: initialized storage client.
//   - error: non-nil if the client cannot be created or the bucket is unusable.
func NewStorage(ctx context.Context, cfg *S3Config) (ObjectStorage, error) {
	if cfg.Type == "" {
		cfg.Type = detectStorageType(cfg.Endpoint)
	}

	s, err := NewS3Storage(cfg)
	if err != nil {
		return nil, err
	}
	if err := s.EnsureBucket(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func detectStorageType(endpoint string) StorageType {
	endpoint = strings.ToLower(endpoint)

	switch {
	case strings.Contains(endpoint, "r2.cloudflarestorage.com"):
		return StorageTypeR2
	case strings.Contains(endpoint, "supabase.co"):
		return StorageTypeSupabase
	case endpoint == "", strings.Contains(endpoint, "amazonaws.com"):
		return StorageTypeS3
	default:
		return StorageTypeS3Compatible
	}
}
