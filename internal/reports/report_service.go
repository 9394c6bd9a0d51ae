package reports

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"datahub/internal/analytics"
	"datahub/internal/charts"
	"datahub/internal/dashboard"
	"datahub/internal/llm"
	"datahub/internal/logger"
	"datahub/internal/models"
	"datahub/internal/storage"
)

// NewsLimit is the number of headlines included in a snapshot
const NewsLimit = 5

// Source is the dashboard a snapshot is taken from
type Source interface {
	View() dashboard.View
	Snapshot() dashboard.Snapshot
	Renderer() *charts.Renderer
}

// Narrator writes the optional digest section
type Narrator interface {
	Narrate(ctx context.Context, facts llm.Facts) (string, error)
}

// NewsSource provides headlines; it returns nil when unavailable
type NewsSource interface {
	Latest(ctx context.Context, limit int) []models.NewsItem
}

// Result describes a stored snapshot
type Result struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	Folder    string    `json:"folder"`
	Index     string    `json:"index"`
	Files     []string  `json:"files"`
	Narrated  bool      `json:"narrated"`
	Degraded  bool      `json:"degraded"`
}

// Service orchestrates snapshot generation
type Service struct {
	storage      storage.StorageClient
	files        *FileGenerator
	orchestrator *StorageOrchestrator
	narrator     Narrator
	news         NewsSource
	now          func() time.Time
	log          *logger.Logger
}

// NewService creates a snapshot service. narrator and news are optional.
func NewService(store storage.StorageClient, narrator Narrator, news NewsSource) *Service {
	return &Service{
		storage:      store,
		files:        NewFileGenerator(),
		orchestrator: NewStorageOrchestrator(store),
		narrator:     narrator,
		news:         news,
		now:          func() time.Time { return time.Now().UTC() },
		log:          logger.Component("reports"),
	}
}

// Facts collects the narrative facts for a dashboard view
func Facts(view dashboard.View, snap dashboard.Snapshot, news []models.NewsItem, at time.Time) llm.Facts {
	chars := analytics.ApplyFilters(snap.Characters, view.Filters)

	return llm.Facts{
		GeneratedAt:   at,
		Summary:       view.Summary,
		Sources:       view.Sources,
		Classes:       analytics.ClassHistogram(chars),
		Levels:        analytics.LevelHistogram(chars),
		ItemTypes:     view.ItemTypes,
		Clans:         view.Clans,
		TopCharacters: view.TopCharacters,
		News:          news,
	}
}

// Create generates and stores a snapshot of src
func (s *Service) Create(ctx context.Context, src Source) (*Result, error) {
	createdAt := s.now()
	id := uuid.NewString()

	var news []models.NewsItem
	if s.news != nil {
		news = s.news.Latest(ctx, NewsLimit)
	}

	view := src.View()
	facts := Facts(view, src.Snapshot(), news, createdAt)

	narrative := ""
	if s.narrator != nil {
		text, err := s.narrator.Narrate(ctx, facts)
		if err != nil {
			s.log.Warn("Snapshot narrative unavailable", map[string]interface{}{"error": err.Error()})
		} else {
			narrative = text
		}
	}

	files, err := s.files.GenerateAllFiles(ctx, Input{
		ID:        id,
		CreatedAt: createdAt,
		View:      view,
		Charts:    src.Renderer().Handles(),
		Facts:     facts,
		Narrative: narrative,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate snapshot: %w", err)
	}

	names, err := s.orchestrator.StoreAllFiles(ctx, files, createdAt)
	if err != nil {
		return nil, err
	}

	return &Result{
		ID:        id,
		CreatedAt: createdAt,
		Folder:    files.FolderPath,
		Index:     files.FolderPath + "/" + storage.IndexFile,
		Files:     names,
		Narrated:  narrative != "",
		Degraded:  view.Degraded,
	}, nil
}

// List returns stored snapshot pages, newest first
func (s *Service) List(ctx context.Context, limit int) ([]string, error) {
	return s.storage.ListSnapshots(ctx, limit)
}

// Storage returns the underlying storage client
func (s *Service) Storage() storage.StorageClient {
	return s.storage
}
