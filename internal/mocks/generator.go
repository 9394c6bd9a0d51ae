package mocks

import (
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"datahub/internal/models"
)

// Default record counts used when the backend is unavailable
const (
	DefaultPlayerCount    = 500
	DefaultCharacterCount = 1000
	DefaultItemCount      = 200

	MinLevel = 1
	MaxLevel = 100
)

// CharacterClasses is the class set mock characters are drawn from
var CharacterClasses = []string{"Warrior", "Mage", "Archer", "Priest", "Thief", "Paladin"}

// ItemCategories is the category set mock items are drawn from
var ItemCategories = []string{"Weapon", "Gear", "Consumable"}

// Clans is the clan set mock players and characters join
var Clans = []string{"Ironclad", "Moonshade", "Emberfall", "Stormwatch"}

// Generator produces randomized placeholder records. It is safe for
// concurrent use; the three loader goroutines share one instance.
type Generator struct {
	mu  sync.Mutex
	rng *rand.Rand
	now func() time.Time
}

// NewGenerator creates a generator. A nil rng seeds a fresh PCG source.
func NewGenerator(rng *rand.Rand) *Generator {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Generator{
		rng: rng,
		now: time.Now,
	}
}

func (g *Generator) level() models.Level {
	return models.Level(MinLevel + g.rng.IntN(MaxLevel-MinLevel+1))
}

func (g *Generator) createdAt() string {
	age := time.Duration(g.rng.IntN(365*24)) * time.Hour
	return g.now().Add(-age).UTC().Format(time.RFC3339)
}

// Players returns n mock players with levels in [1,100]
func (g *Generator) Players(n int) []models.Player {
	g.mu.Lock()
	defer g.mu.Unlock()

	players := make([]models.Player, 0, max(n, 0))
	for i := 1; i <= n; i++ {
		players = append(players, models.Player{
			ID:        fmt.Sprintf("mock-player-%d", i),
			Name:      fmt.Sprintf("Player %d", i),
			Level:     g.level(),
			Clan:      Clans[g.rng.IntN(len(Clans))],
			CreatedAt: g.createdAt(),
		})
	}
	return players
}

// Characters returns n mock characters with a class drawn uniformly from CharacterClasses
func (g *Generator) Characters(n int) []models.Character {
	g.mu.Lock()
	defer g.mu.Unlock()

	characters := make([]models.Character, 0, max(n, 0))
	for i := 1; i <= n; i++ {
		characters = append(characters, models.Character{
			ID:        fmt.Sprintf("mock-character-%d", i),
			Name:      fmt.Sprintf("Character %d", i),
			Level:     g.level(),
			Class:     CharacterClasses[g.rng.IntN(len(CharacterClasses))],
			Clan:      Clans[g.rng.IntN(len(Clans))],
			CreatedAt: g.createdAt(),
		})
	}
	return characters
}

// Items returns n mock items
func (g *Generator) Items(n int) []models.Item {
	g.mu.Lock()
	defer g.mu.Unlock()

	items := make([]models.Item, 0, max(n, 0))
	for i := 1; i <= n; i++ {
		items = append(items, models.Item{
			ID:        fmt.Sprintf("mock-item-%d", i),
			Name:      fmt.Sprintf("Item %d", i),
			Level:     g.level(),
			Category:  ItemCategories[g.rng.IntN(len(ItemCategories))],
			CreatedAt: g.createdAt(),
		})
	}
	return items
}

// Fill returns a mock LoadResult for one resource with the given record count
func (g *Generator) Fill(resource models.Resource, n int) models.LoadResult {
	result := models.LoadResult{Resource: resource, Source: models.SourceMock}
	switch resource {
	case models.ResourcePlayers:
		result.Players = g.Players(n)
	case models.ResourceCharacters:
		result.Characters = g.Characters(n)
	case models.ResourceItems:
		result.Items = g.Items(n)
	}
	return result
}

// DefaultCount returns the fallback record count for a resource
func DefaultCount(resource models.Resource) int {
	switch resource {
	case models.ResourcePlayers:
		return DefaultPlayerCount
	case models.ResourceCharacters:
		return DefaultCharacterCount
	case models.ResourceItems:
		return DefaultItemCount
	default:
		return 0
	}
}
