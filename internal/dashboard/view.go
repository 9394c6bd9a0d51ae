package dashboard

import (
	"time"

	"datahub/internal/analytics"
	"datahub/internal/filters"
	"datahub/internal/metrics"
	"datahub/internal/models"
	"datahub/internal/stats"
)

// View is what the page and the CLI show besides the charts
type View struct {
	Generation    uint64                                `json:"generation"`
	Loading       bool                                  `json:"loading"`
	Summary       analytics.Summary                     `json:"summary"`
	Changes       map[string]stats.Change               `json:"changes"`
	Displayed     map[string]float64                    `json:"displayed"`
	Sources       map[models.Resource]models.DataSource `json:"sources"`
	LoadedAt      map[models.Resource]time.Time         `json:"loadedAt"`
	Errors        map[models.Resource]string            `json:"errors,omitempty"`
	Degraded      bool                                  `json:"degraded"`
	Filters       filters.Set                           `json:"filters"`
	FilterPolicy  string                                `json:"filterPolicy"`
	Latency       metrics.LatencySummary                `json:"latency"`
	TopCharacters []models.Character                    `json:"topCharacters"`
	ItemTypes     analytics.Histogram                   `json:"itemTypes"`
	Clans         analytics.Histogram                   `json:"clans"`
}

// View assembles the current stat values, sources and filter state
func (s *Session) View() View {
	snap := s.state.Snapshot()
	summary := analytics.Summarize(snap.Players, snap.Characters, snap.Items)
	set := s.filters.Current()

	s.baseMu.Lock()
	base := s.baseline.Values()
	s.baseMu.Unlock()

	current := summary.Values()
	changes := make(map[string]stats.Change, len(current))
	for _, key := range analytics.StatKeys {
		changes[key] = stats.Compare(base[key], current[key])
	}

	top := analytics.TopCharacters(analytics.ApplyFilters(snap.Characters, set), TopCharactersLimit)
	if top == nil {
		top = []models.Character{}
	}

	return View{
		Generation:    snap.Generation,
		Loading:       snap.Pending > 0,
		Summary:       summary,
		Changes:       changes,
		Displayed:     s.animator.Last(),
		Sources:       snap.Sources,
		LoadedAt:      snap.LoadedAt,
		Errors:        snap.Errors,
		Degraded:      snap.Degraded(),
		Filters:       set,
		FilterPolicy:  s.filters.Policy(),
		Latency:       s.metrics.Latency().Summary(),
		TopCharacters: top,
		ItemTypes:     analytics.CategoryHistogram(snap.Items),
		Clans:         analytics.ClanHistogram(snap.Players),
	}
}
