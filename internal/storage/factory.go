package storage

import (
	"context"
	"fmt"

	"datahub/internal/config"
)

// Backend selects where snapshots are written
type Backend string

const (
	BackendLocal Backend = "local"
	BackendGCS   Backend = "gcs"
)

// NewStorageClient creates a storage client for the configured backend
func NewStorageClient(ctx context.Context, cfg *config.Config) (StorageClient, error) {
	switch Backend(cfg.StorageBackend) {
	case BackendLocal, "":
		dir := cfg.LocalSnapshotsDir
		if dir == "" {
			dir = "snapshots"
		}

		localClient, err := NewLocalStorageClient(dir)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize local storage client: %w", err)
		}
		return localClient, nil

	case BackendGCS:
		gcsClient, err := NewGCSClient(ctx, cfg.GCSBucket)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize GCS client: %w", err)
		}
		return gcsClient, nil

	default:
		return nil, fmt.Errorf("unsupported storage backend: %s", cfg.StorageBackend)
	}
}
