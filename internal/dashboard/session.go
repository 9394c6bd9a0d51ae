package dashboard

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"

	"datahub/internal/analytics"
	"datahub/internal/charts"
	"datahub/internal/config"
	"datahub/internal/fetchers"
	"datahub/internal/filters"
	"datahub/internal/logger"
	"datahub/internal/metrics"
	"datahub/internal/mocks"
	"datahub/internal/models"
	"datahub/internal/stats"
)

// TopCharactersLimit is the number of characters listed in the state view
const TopCharactersLimit = 10

// DataLoader starts a load and calls handler once per resource
type DataLoader interface {
	Load(ctx context.Context, generation uint64, handler fetchers.Handler)
}

// Events receives data source changes for the page banner
type Events interface {
	SourcesChanged(generation uint64, sources map[models.Resource]models.DataSource)
}

// Options wires a session. Only Config is required.
type Options struct {
	Config   *config.Config
	Loader   DataLoader
	Layout   *charts.Layout
	Metrics  *metrics.Metrics
	Observer charts.Observer
	Sink     stats.Sink
	Events   Events
	Rand     *rand.Rand
}

// Session is one dashboard: its data, chart registry, stat animations and
// filter controller. Nothing here is package level.
type Session struct {
	cfg      *config.Config
	state    *State
	loader   DataLoader
	renderer *charts.Renderer
	animator *stats.Animator
	filters  *filters.Controller
	metrics  *metrics.Metrics
	events   Events
	log      *logger.Logger

	ctx    context.Context
	cancel context.CancelFunc

	rngMu sync.Mutex
	rng   *rand.Rand

	baseMu   sync.Mutex
	baseline analytics.Summary
}

// NewSession builds a session. Background work (animations, debounced
// filter recomputes) stops when ctx is cancelled or Close is called.
func NewSession(ctx context.Context, opts Options) (*Session, error) {
	if opts.Config == nil {
		return nil, fmt.Errorf("session config is required")
	}
	cfg := opts.Config

	layout := opts.Layout
	if layout == nil {
		var err error
		layout, err = charts.LoadLayout(cfg.LayoutFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load chart layout: %w", err)
		}
	}

	m := opts.Metrics
	if m == nil {
		m = metrics.New()
	}

	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	loader := opts.Loader
	if loader == nil {
		loader = fetchers.NewLoader(cfg, mocks.NewGenerator(nil), m)
	}

	ctx, cancel := context.WithCancel(ctx)
	s := &Session{
		cfg:     cfg,
		state:   NewState(),
		loader:  loader,
		metrics: m,
		events:  opts.Events,
		log:     logger.Component("dashboard"),
		ctx:     ctx,
		cancel:  cancel,
		rng:     rng,
	}

	s.renderer = charts.NewRenderer(layout)
	s.renderer.SetRecorder(m)
	if opts.Observer != nil {
		s.renderer.SetObserver(opts.Observer)
	}
	s.animator = stats.NewAnimator(ctx, cfg.AnimationDuration, opts.Sink, analytics.StatKeys...)
	s.filters = filters.NewController(ctx, cfg.FilterPolicy, cfg.FilterDebounce, s.Rerender)
	return s, nil
}

// Renderer returns the session chart registry
func (s *Session) Renderer() *charts.Renderer { return s.renderer }

// Animator returns the stat card animator
func (s *Session) Animator() *stats.Animator { return s.animator }

// Filters returns the filter controller
func (s *Session) Filters() *filters.Controller { return s.filters }

// Metrics returns the session metrics
func (s *Session) Metrics() *metrics.Metrics { return s.metrics }

// Snapshot returns a copy of the loaded data
func (s *Session) Snapshot() Snapshot { return s.state.Snapshot() }

// Loading reports whether the current refresh still awaits results
func (s *Session) Loading() bool { return s.state.Loading() }

// Refresh starts a full refetch and returns its generation. Results of any
// earlier refresh that arrive afterwards are discarded.
func (s *Session) Refresh(ctx context.Context) uint64 {
	before := s.state.Snapshot()
	s.baseMu.Lock()
	s.baseline = analytics.Summarize(before.Players, before.Characters, before.Items)
	s.baseMu.Unlock()

	generation := s.state.Begin()
	s.metrics.RefreshesTotal.Inc()
	s.log.Info("Refreshing dashboard data", map[string]interface{}{"generation": generation})

	s.renderPerformance()
	s.loader.Load(ctx, generation, func(gen uint64, result models.LoadResult) {
		s.handle(gen, result)
	})
	return generation
}

// Wait blocks until the latest refresh has applied every resource. A refresh
// started while waiting extends the wait to the newer generation.
func (s *Session) Wait(ctx context.Context) error {
	for {
		select {
		case <-s.state.Done():
			if !s.state.Loading() {
				return nil
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// handle applies one load result and redraws what depends on it
func (s *Session) handle(generation uint64, result models.LoadResult) {
	if !s.state.Apply(generation, result) {
		s.metrics.StaleResultsTotal.Inc()
		s.log.Info("Discarding stale load result", map[string]interface{}{
			"resource":   string(result.Resource),
			"generation": generation,
			"current":    s.state.Generation(),
		})
		return
	}

	snap := s.state.Snapshot()
	s.metrics.MockSources.Set(float64(snap.MockCount()))
	if s.events != nil {
		s.events.SourcesChanged(snap.Generation, snap.Sources)
	}

	values := analytics.Summarize(snap.Players, snap.Characters, snap.Items).Values()
	switch result.Resource {
	case models.ResourcePlayers:
		s.animator.AnimateTo(analytics.StatPlayers, values[analytics.StatPlayers])
		s.renderActivity(snap)
	case models.ResourceCharacters:
		s.animator.AnimateTo(analytics.StatCharacters, values[analytics.StatCharacters])
		s.animator.AnimateTo(analytics.StatAvgLevel, values[analytics.StatAvgLevel])
		s.renderCharacters(snap, s.filters.Current())
	case models.ResourceItems:
		s.animator.AnimateTo(analytics.StatItems, values[analytics.StatItems])
	}
}

// Rerender redraws every chart from the loaded data with the given filters.
// It never refetches.
func (s *Session) Rerender(_ context.Context, set filters.Set) {
	snap := s.state.Snapshot()
	s.renderActivity(snap)
	s.renderCharacters(snap, set)
	s.renderPerformance()
}

// ChangeFilters reports a filter edit to the controller
func (s *Session) ChangeFilters(set filters.Set) bool {
	return s.filters.Change(set)
}

// ApplyFilters recomputes immediately with set
func (s *Session) ApplyFilters(set filters.Set) {
	s.filters.Apply(set)
}

func (s *Session) renderActivity(snap Snapshot) {
	s.rngMu.Lock()
	series := analytics.ActivitySeries(len(snap.Players), s.rng)
	s.rngMu.Unlock()

	s.render(charts.ActivityChart, charts.KindLine, charts.SeriesPayload(series), charts.Style{Smooth: true, Fill: true})
}

func (s *Session) renderCharacters(snap Snapshot, set filters.Set) {
	chars := analytics.ApplyFilters(snap.Characters, set)
	s.render(charts.ClassChart, charts.KindDoughnut,
		charts.HistogramPayload("Characters", analytics.ClassHistogram(chars)), charts.Style{})
	s.render(charts.LevelChart, charts.KindBar,
		charts.HistogramPayload("Characters", analytics.LevelHistogram(chars)), charts.Style{})
}

func (s *Session) renderPerformance() {
	s.rngMu.Lock()
	series := analytics.LatencySeries(analytics.DefaultLatencyPoints, s.rng)
	s.rngMu.Unlock()

	s.render(charts.PerformanceChart, charts.KindLine, charts.SeriesPayload(series), charts.Style{Smooth: true})
}

func (s *Session) render(id string, kind charts.Kind, payload charts.Payload, style charts.Style) {
	if _, err := s.renderer.Render(id, kind, payload, style); err != nil {
		s.log.Warn("Chart render failed", map[string]interface{}{"chart": id, "error": err.Error()})
	}
}

// Close stops pending filter recomputes and running animations
func (s *Session) Close() {
	s.filters.Stop()
	s.cancel()
	s.animator.Stop()
}
