package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"datahub/internal/logger"
)

// LocalStorageClient handles local file system storage operations
type LocalStorageClient struct {
	baseDir string
	log     *logger.Logger
}

// NewLocalStorageClient creates a new local storage client
func NewLocalStorageClient(baseDir string) (*LocalStorageClient, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base directory %s: %w", baseDir, err)
	}

	return &LocalStorageClient{
		baseDir: baseDir,
		log:     logger.Component("storage"),
	}, nil
}

// BaseDir returns the storage root
func (l *LocalStorageClient) BaseDir() string {
	return l.baseDir
}

// Close is a no-op for local storage (implements same interface as GCSClient)
func (l *LocalStorageClient) Close() error {
	return nil
}

// StoreFile writes a file into the snapshot folder for timestamp
func (l *LocalStorageClient) StoreFile(ctx context.Context, fileData []byte, filename string, timestamp time.Time) error {
	name, err := CleanPath(filename)
	if err != nil {
		return err
	}
	filePath := filepath.Join(l.baseDir, filepath.FromSlash(GenerateSnapshotFolderPath(timestamp)), filepath.FromSlash(name))

	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	if err := os.WriteFile(filePath, fileData, 0644); err != nil {
		return fmt.Errorf("failed to write file %s: %w", filePath, err)
	}

	l.log.Debug("Stored snapshot file", map[string]interface{}{"path": filePath, "bytes": len(fileData)})
	return nil
}

// GetFile reads a file relative to the storage root
func (l *LocalStorageClient) GetFile(ctx context.Context, filePath string) ([]byte, error) {
	rel, err := CleanPath(filePath)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filepath.Join(l.baseDir, filepath.FromSlash(rel)))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, rel)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", rel, err)
	}
	return data, nil
}

// ListSnapshots lists snapshot index pages, newest first
func (l *LocalStorageClient) ListSnapshots(ctx context.Context, limit int) ([]string, error) {
	root := filepath.Join(l.baseDir, SnapshotsPrefix)

	var paths []string
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return filepath.SkipAll
			}
			return nil // skip unreadable entries
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if !d.IsDir() && d.Name() == IndexFile {
			rel, relErr := filepath.Rel(l.baseDir, p)
			if relErr == nil {
				paths = append(paths, filepath.ToSlash(rel))
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk snapshots directory: %w", err)
	}

	return newestFirst(paths, limit), nil
}
