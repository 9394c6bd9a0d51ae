package reports

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"datahub/internal/analytics"
	"datahub/internal/charts"
	"datahub/internal/config"
	"datahub/internal/dashboard"
	"datahub/internal/llm"
	"datahub/internal/logger"
	"datahub/internal/storage"
)

// Input is everything one snapshot is generated from
type Input struct {
	ID        string
	CreatedAt time.Time
	View      dashboard.View
	Charts    []charts.Handle
	Facts     llm.Facts
	Narrative string
}

// GeneratedFiles contains all files generated for a snapshot
type GeneratedFiles struct {
	HTMLContent string
	Markdown    string
	JSONFiles   map[string][]byte
	AssetFiles  map[string][]byte // CSS and chart images
	FolderPath  string
}

// snapshotData is the machine-readable part of a snapshot
type snapshotData struct {
	ID        string              `json:"id"`
	CreatedAt time.Time           `json:"createdAt"`
	View      dashboard.View      `json:"view"`
	Classes   analytics.Histogram `json:"classes"`
	Levels    analytics.Histogram `json:"levels"`
	ItemTypes analytics.Histogram `json:"itemTypes"`
	Clans     analytics.Histogram `json:"clans"`
	Charts    []charts.Handle     `json:"charts"`
	Narrative string              `json:"narrative,omitempty"`
}

// FileGenerator handles generation of all snapshot files
type FileGenerator struct {
	htmlBuilder *HTMLBuilder
	log         *logger.Logger
}

// NewFileGenerator creates a new file generator
func NewFileGenerator() *FileGenerator {
	return &FileGenerator{
		htmlBuilder: NewHTMLBuilder(),
		log:         logger.Component("reports"),
	}
}

// GenerateAllFiles creates the snapshot page, its data, styles and chart images
func (fg *FileGenerator) GenerateAllFiles(ctx context.Context, in Input) (*GeneratedFiles, error) {
	files := &GeneratedFiles{
		JSONFiles:  make(map[string][]byte),
		AssetFiles: make(map[string][]byte),
		FolderPath: storage.GenerateSnapshotFolderPath(in.CreatedAt),
	}

	data, err := json.MarshalIndent(snapshotData{
		ID:        in.ID,
		CreatedAt: in.CreatedAt,
		View:      in.View,
		Classes:   in.Facts.Classes,
		Levels:    in.Facts.Levels,
		ItemTypes: in.Facts.ItemTypes,
		Clans:     in.Facts.Clans,
		Charts:    in.Charts,
		Narrative: in.Narrative,
	}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot data: %w", err)
	}
	files.JSONFiles["data.json"] = data

	files.Markdown = BuildMarkdown(in.Facts, in.View.Changes, in.Narrative)

	if css, err := fg.htmlBuilder.GenerateStaticCSS(); err != nil {
		fg.log.Warn("Failed to load snapshot styles", map[string]interface{}{"error": err.Error()})
	} else {
		files.AssetFiles["styles.css"] = []byte(css)
	}

	images := fg.generateChartImages(ctx, in.Charts, files)

	content, err := fg.htmlBuilder.ConvertMarkdownToHTML(files.Markdown)
	if err != nil {
		return nil, err
	}

	snippets := make([]charts.ChartSnippet, 0, len(in.Charts))
	for _, h := range in.Charts {
		snippets = append(snippets, charts.Snippet(h))
	}

	html, err := fg.htmlBuilder.BuildCompleteHTML(TemplateData{
		ID:            in.ID,
		Title:         "DataHub snapshot",
		GeneratedAt:   in.CreatedAt.UTC().Format("2006-01-02 15:04:05 UTC"),
		Version:       config.GetVersion(),
		Content:       templateHTML(content),
		Charts:        snippets,
		Images:        images,
		Degraded:      in.View.Degraded,
		MockResources: mockResources(in.View.Sources),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate HTML: %w", err)
	}
	files.HTMLContent = html

	fg.log.Debug("Generated snapshot files", map[string]interface{}{
		"folder": files.FolderPath,
		"charts": len(images),
		"bytes":  len(html),
	})
	return files, nil
}

// generateChartImages draws a PNG per chart; empty charts are skipped
func (fg *FileGenerator) generateChartImages(ctx context.Context, handles []charts.Handle, files *GeneratedFiles) []Image {
	var images []Image
	for _, h := range handles {
		if ctx.Err() != nil {
			break
		}

		png, err := charts.RenderPNG(h)
		if errors.Is(err, charts.ErrEmptyChart) {
			fg.log.Debug("Skipping empty chart image", map[string]interface{}{"chart": h.ID})
			continue
		}
		if err != nil {
			fg.log.Warn("Failed to render chart image", map[string]interface{}{"chart": h.ID, "error": err.Error()})
			continue
		}

		name := "charts/" + h.ID + ".png"
		files.AssetFiles[name] = png
		title := h.Style.Title
		if title == "" {
			title = h.ID
		}
		images = append(images, Image{Title: title, Src: name})
	}
	return images
}
