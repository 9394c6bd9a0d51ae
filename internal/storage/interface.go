package storage

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested file does not exist
var ErrNotFound = errors.New("file not found")

// StorageClient stores dashboard snapshots. Files of one snapshot share a
// folder derived from the snapshot timestamp.
type StorageClient interface {
	// Close releases the client
	Close() error

	// StoreFile writes filename into the snapshot folder for timestamp
	StoreFile(ctx context.Context, fileData []byte, filename string, timestamp time.Time) error

	// GetFile reads a file by its path relative to the storage root
	GetFile(ctx context.Context, filePath string) ([]byte, error)

	// ListSnapshots returns snapshot index paths, newest first
	ListSnapshots(ctx context.Context, limit int) ([]string, error)
}
