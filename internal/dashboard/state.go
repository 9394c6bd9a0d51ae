// Package dashboard owns the loaded game data and drives the
// load -> aggregate -> render -> animate pipeline for one dashboard.
package dashboard

import (
	"sync"
	"time"

	"datahub/internal/models"
)

// Snapshot is a point-in-time copy of the dashboard state. Record slices are
// shared with the state: loads replace them wholesale and never mutate them.
type Snapshot struct {
	Generation uint64                                `json:"generation"`
	Players    []models.Player                       `json:"-"`
	Characters []models.Character                    `json:"-"`
	Items      []models.Item                         `json:"-"`
	Sources    map[models.Resource]models.DataSource `json:"sources"`
	LoadedAt   map[models.Resource]time.Time         `json:"loadedAt"`
	Errors     map[models.Resource]string            `json:"errors,omitempty"`
	Pending    int                                   `json:"pending"`
}

// Degraded reports whether any resource is served from mock data
func (s Snapshot) Degraded() bool {
	return s.MockCount() > 0
}

// MockCount returns the number of resources currently served from mock data
func (s Snapshot) MockCount() int {
	n := 0
	for _, src := range s.Sources {
		if src == models.SourceMock {
			n++
		}
	}
	return n
}

// State holds the three record collections. Each collection is written only
// by its own load, and only while that load belongs to the current generation.
type State struct {
	mu         sync.RWMutex
	generation uint64
	pending    int
	done       chan struct{}

	players    []models.Player
	characters []models.Character
	items      []models.Item
	sources    map[models.Resource]models.DataSource
	loadedAt   map[models.Resource]time.Time
	errors     map[models.Resource]string
}

// NewState creates an empty state at generation zero
func NewState() *State {
	done := make(chan struct{})
	close(done)
	return &State{
		done:     done,
		sources:  make(map[models.Resource]models.DataSource, len(models.Resources)),
		loadedAt: make(map[models.Resource]time.Time, len(models.Resources)),
		errors:   make(map[models.Resource]string),
	}
}

// Begin starts a new generation expecting one result per resource and
// returns its number. Results for older generations are rejected from now on.
func (s *State) Begin() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.generation++
	if s.pending > 0 {
		// superseded generation: release its waiters
		close(s.done)
	}
	s.pending = len(models.Resources)
	s.done = make(chan struct{})
	return s.generation
}

// Generation returns the current generation
func (s *State) Generation() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.generation
}

// Loading reports whether the current generation still awaits results
func (s *State) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pending > 0
}

// Done returns a channel closed once the current generation has every
// result or a newer generation begins
func (s *State) Done() <-chan struct{} {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.done
}

// Apply stores one load result. It returns false, leaving the state
// untouched, when the result belongs to an older generation.
func (s *State) Apply(generation uint64, result models.LoadResult) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if generation != s.generation {
		return false
	}

	switch result.Resource {
	case models.ResourcePlayers:
		s.players = result.Players
	case models.ResourceCharacters:
		s.characters = result.Characters
	case models.ResourceItems:
		s.items = result.Items
	default:
		return false
	}

	s.sources[result.Resource] = result.Source
	s.loadedAt[result.Resource] = time.Now().UTC()
	if result.Err != nil {
		s.errors[result.Resource] = result.Err.Error()
	} else {
		delete(s.errors, result.Resource)
	}

	if s.pending > 0 {
		s.pending--
		if s.pending == 0 {
			close(s.done)
		}
	}
	return true
}

// Snapshot copies the current state
func (s *State) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{
		Generation: s.generation,
		Players:    s.players,
		Characters: s.characters,
		Items:      s.items,
		Sources:    make(map[models.Resource]models.DataSource, len(s.sources)),
		LoadedAt:   make(map[models.Resource]time.Time, len(s.loadedAt)),
		Pending:    s.pending,
	}
	for k, v := range s.sources {
		snap.Sources[k] = v
	}
	for k, v := range s.loadedAt {
		snap.LoadedAt[k] = v
	}
	if len(s.errors) > 0 {
		snap.Errors = make(map[models.Resource]string, len(s.errors))
		for k, v := range s.errors {
			snap.Errors[k] = v
		}
	}
	return snap
}
