package reports

import (
	"context"
	"fmt"
	"sort"
	"time"

	"datahub/internal/logger"
	"datahub/internal/storage"
)

// StorageOrchestrator handles the business logic of storing generated files
type StorageOrchestrator struct {
	storage storage.StorageClient
	log     *logger.Logger
}

// NewStorageOrchestrator creates a new storage orchestrator
func NewStorageOrchestrator(store storage.StorageClient) *StorageOrchestrator {
	return &StorageOrchestrator{
		storage: store,
		log:     logger.Component("reports"),
	}
}

// StoreAllFiles writes every generated file into the snapshot folder and
// returns their names. The page is written last so a listed snapshot is complete.
func (so *StorageOrchestrator) StoreAllFiles(ctx context.Context, files *GeneratedFiles, timestamp time.Time) ([]string, error) {
	pending := make(map[string][]byte, len(files.JSONFiles)+len(files.AssetFiles)+1)
	for name, data := range files.JSONFiles {
		pending[name] = data
	}
	for name, data := range files.AssetFiles {
		pending[name] = data
	}
	pending["summary.md"] = []byte(files.Markdown)

	names := make([]string, 0, len(pending)+1)
	for name := range pending {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := so.storage.StoreFile(ctx, pending[name], name, timestamp); err != nil {
			return nil, fmt.Errorf("failed to store %s: %w", name, err)
		}
	}

	if err := so.storage.StoreFile(ctx, []byte(files.HTMLContent), storage.IndexFile, timestamp); err != nil {
		return nil, fmt.Errorf("failed to store snapshot page: %w", err)
	}
	names = append(names, storage.IndexFile)

	so.log.Info("Snapshot stored", map[string]interface{}{"folder": files.FolderPath, "files": len(names)})
	return names, nil
}
