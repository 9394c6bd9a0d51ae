package analytics

import (
	"math"

	"datahub/internal/models"
)

// Stat card keys
const (
	StatPlayers    = "players"
	StatCharacters = "characters"
	StatItems      = "items"
	StatAvgLevel   = "avgLevel"
)

// StatKeys lists the stat cards in page order
var StatKeys = []string{StatPlayers, StatCharacters, StatItems, StatAvgLevel}

// StatLabels are the stat card captions
var StatLabels = map[string]string{
	StatPlayers:    "Total Players",
	StatCharacters: "Characters",
	StatItems:      "Items",
	StatAvgLevel:   "Average Level",
}

// Summary holds the headline numbers shown on the stat cards
type Summary struct {
	Players      int     `json:"players"`
	Characters   int     `json:"characters"`
	Items        int     `json:"items"`
	AverageLevel float64 `json:"avgLevel"`
	TopClass     string  `json:"topClass,omitempty"`
}

// Summarize computes stat-card values. Average level is over characters,
// with unset levels counted as 1, rounded to one decimal.
func Summarize(players []models.Player, characters []models.Character, items []models.Item) Summary {
	s := Summary{
		Players:    len(players),
		Characters: len(characters),
		Items:      len(items),
	}

	if len(characters) > 0 {
		total := 0
		for _, c := range characters {
			total += c.Level.OrDefault(1)
		}
		s.AverageLevel = math.Round(float64(total)/float64(len(characters))*10) / 10
	}

	classes := ClassHistogram(characters)
	best := -1
	for i, count := range classes.Counts {
		if count > best {
			best = count
			s.TopClass = classes.Labels[i]
		}
	}
	return s
}

// Values maps stat keys to their numbers
func (s Summary) Values() map[string]float64 {
	return map[string]float64{
		StatPlayers:    float64(s.Players),
		StatCharacters: float64(s.Characters),
		StatItems:      float64(s.Items),
		StatAvgLevel:   s.AverageLevel,
	}
}
