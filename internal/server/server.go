package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"datahub/internal/analytics"
	"datahub/internal/config"
	"datahub/internal/dashboard"
	"datahub/internal/fetchers"
	"datahub/internal/hub"
	"datahub/internal/llm"
	"datahub/internal/logger"
	"datahub/internal/metrics"
	"datahub/internal/models"
	"datahub/internal/reports"
	"datahub/internal/stats"
	"datahub/internal/storage"
)

const shutdownTimeout = 10 * time.Second

// NewsSource provides headlines for the page
type NewsSource interface {
	Enabled() bool
	Latest(ctx context.Context, limit int) []models.NewsItem
}

// Deps are the collaborators a server is built from
type Deps struct {
	Session   *dashboard.Session
	Hub       *hub.Hub
	Snapshots *reports.Service
	News      NewsSource
	Metrics   *metrics.Metrics
}

// Server represents the main application server
type Server struct {
	Config    *config.Config
	Session   *dashboard.Session
	Hub       *hub.Hub
	Snapshots *reports.Service
	News      NewsSource
	Metrics   *metrics.Metrics

	router       *gin.Engine
	snapshotLock sync.Mutex
	log          *logger.Logger

	runMu  sync.RWMutex
	runCtx context.Context
}

// NewServer wires the full application from configuration
func NewServer(ctx context.Context, cfg *config.Config) (*Server, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	log := logger.Component("server")

	m := metrics.New()
	h := hub.New(m.WebSocketClients)

	session, err := dashboard.NewSession(ctx, dashboard.Options{
		Config:   cfg,
		Metrics:  m,
		Observer: h,
		Sink:     h,
		Events:   h,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create dashboard session: %w", err)
	}

	store, err := storage.NewStorageClient(ctx, cfg)
	if err != nil {
		session.Close()
		return nil, fmt.Errorf("failed to initialize snapshot storage: %w", err)
	}

	var narrator reports.Narrator
	if cfg.OpenAIAPIKey != "" {
		narrator = llm.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIModel)
		log.Info("Snapshot narration enabled", map[string]interface{}{"model": cfg.OpenAIModel})
	}

	news := fetchers.NewNewsFetcher(nil, cfg.NewsFeedURL)
	var snapshotNews reports.NewsSource
	if news.Enabled() {
		snapshotNews = news
	}

	return New(cfg, Deps{
		Session:   session,
		Hub:       h,
		Snapshots: reports.NewService(store, narrator, snapshotNews),
		News:      news,
		Metrics:   m,
	}), nil
}

// New builds a server from ready-made collaborators
func New(cfg *config.Config, deps Deps) *Server {
	if deps.Metrics == nil && deps.Session != nil {
		deps.Metrics = deps.Session.Metrics()
	}
	s := &Server{
		Config:    cfg,
		Session:   deps.Session,
		Hub:       deps.Hub,
		Snapshots: deps.Snapshots,
		News:      deps.News,
		Metrics:   deps.Metrics,
		log:       logger.Component("server"),
		runCtx:    context.Background(),
	}
	if s.Hub != nil && s.Session != nil {
		s.Hub.SetWelcome(s.welcomeEvents)
	}
	s.router = s.SetupRoutes()
	return s
}

// Router returns the configured gin engine
func (s *Server) Router() http.Handler {
	return s.router
}

// SetupRoutes configures HTTP routes for the server
func (s *Server) SetupRoutes() *gin.Engine {
	if s.Config != nil && s.Config.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		s.log.Error("Panic recovered", fmt.Errorf("%v", recovered), map[string]interface{}{
			"path": c.Request.URL.Path,
		})
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "An unexpected error occurred",
		})
	}))
	r.Use(s.requestLogger())
	if s.Metrics != nil {
		r.Use(s.Metrics.Middleware())
		r.GET("/metrics", s.Metrics.Handler())
	}

	r.GET("/", s.HandleIndex)
	r.GET("/health", s.HandleHealth)
	r.GET("/ws", s.HandleWebSocket)
	r.GET("/files/*path", s.HandleFileProxy)

	api := r.Group("/api")
	api.GET("/state", s.HandleState)
	api.GET("/charts", s.HandleCharts)
	api.GET("/charts/:id", s.HandleChart)
	api.POST("/charts/:id/resize", s.HandleResize)
	api.POST("/filters", s.HandleFilters)
	api.POST("/filters/apply", s.HandleApplyFilters)
	api.POST("/refresh", s.HandleRefresh)
	api.GET("/news", s.HandleNews)
	api.GET("/snapshots", s.HandleListSnapshots)
	api.POST("/snapshots", s.HandleCreateSnapshot)

	return r
}

// requestLogger logs each request at debug level
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Debug("HTTP request", map[string]interface{}{
			"method":   c.Request.Method,
			"path":     c.Request.URL.Path,
			"status":   c.Writer.Status(),
			"duration": time.Since(start).String(),
		})
	}
}

// baseContext is the context background work started by handlers runs under
func (s *Server) baseContext() context.Context {
	s.runMu.RLock()
	defer s.runMu.RUnlock()
	return s.runCtx
}

// Run starts the hub, the first load and the refresh schedule, then serves
// HTTP until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.runMu.Lock()
	s.runCtx = runCtx
	s.runMu.Unlock()

	go s.Hub.Run(runCtx)
	s.Session.Refresh(runCtx)
	go dashboard.NewScheduler(s.Session, s.Config.RefreshInterval).Run(runCtx)

	srv := &http.Server{
		Addr:              ":" + s.Config.Port,
		Handler:           s.router,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		s.log.Info("Server starting", map[string]interface{}{
			"port":    s.Config.Port,
			"version": config.GetVersion(),
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
		s.log.Info("Shutting down server")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}

// Close cleans up server resources
func (s *Server) Close() error {
	if s.Session != nil {
		s.Session.Close()
	}
	if s.Snapshots != nil && s.Snapshots.Storage() != nil {
		return s.Snapshots.Storage().Close()
	}
	return nil
}

// welcomeEvents lets a newly connected page draw the current state at once
func (s *Server) welcomeEvents() []hub.Event {
	now := time.Now().UTC()
	handles := s.Session.Renderer().Handles()
	last := s.Session.Animator().Last()
	events := make([]hub.Event, 0, len(handles)+len(last)+1)
	for _, h := range handles {
		events = append(events, hub.Event{Type: hub.EventChart, Timestamp: now, Data: h})
	}
	for _, key := range analytics.StatKeys {
		if v, ok := last[key]; ok {
			events = append(events, hub.Event{Type: hub.EventStat, Timestamp: now, Data: stats.Frame{Key: key, Value: v, Final: true}})
		}
	}
	snap := s.Session.Snapshot()
	if len(snap.Sources) > 0 {
		events = append(events, hub.Event{
			Type:      hub.EventSources,
			Timestamp: now,
			Data:      hub.NewSourcesData(snap.Generation, snap.Sources),
		})
	}
	return events
}
