package storage

import (
	"fmt"
	"path"
	"sort"
	"strings"
	"time"
)

const (
	// SnapshotsPrefix is the root folder of every snapshot
	SnapshotsPrefix = "snapshots"
	// IndexFile is the page of a snapshot
	IndexFile = "index.html"
)

// GenerateSnapshotFolderPath generates a consistent folder path for snapshots
// Format: snapshots/YYYY/MM/DD/Snapshot-YYYY-MM-DD-HH-MM-SS
func GenerateSnapshotFolderPath(timestamp time.Time) string {
	ts := timestamp.UTC()
	return fmt.Sprintf("%s/%04d/%02d/%02d/Snapshot-%04d-%02d-%02d-%02d-%02d-%02d",
		SnapshotsPrefix,
		ts.Year(), ts.Month(), ts.Day(),
		ts.Year(), ts.Month(), ts.Day(),
		ts.Hour(), ts.Minute(), ts.Second())
}

// CleanPath normalises a relative storage path and rejects escapes from the root
func CleanPath(p string) (string, error) {
	p = strings.TrimPrefix(strings.ReplaceAll(p, "\\", "/"), "/")
	if p == "" {
		return "", fmt.Errorf("empty path")
	}
	cleaned := path.Clean(p)
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", fmt.Errorf("invalid path %q", p)
	}
	return cleaned, nil
}

// newestFirst sorts folder-dated paths newest first and applies limit
func newestFirst(paths []string, limit int) []string {
	sort.Sort(sort.Reverse(sort.StringSlice(paths)))
	if limit > 0 && limit < len(paths) {
		paths = paths[:limit]
	}
	return paths
}

// GetContentType determines the MIME content type based on file extension
func GetContentType(filename string) string {
	switch strings.ToLower(path.Ext(filename)) {
	case ".json":
		return "application/json"
	case ".txt":
		return "text/plain"
	case ".html":
		return "text/html"
	case ".css":
		return "text/css"
	case ".md":
		return "text/markdown"
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".gif":
		return "image/gif"
	default:
		return "application/octet-stream"
	}
}
