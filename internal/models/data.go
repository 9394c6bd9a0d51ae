package models

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// Resource names one of the three backend collections
type Resource string

const (
	ResourcePlayers    Resource = "players"
	ResourceCharacters Resource = "characters"
	ResourceItems      Resource = "items"
)

// Resources lists the collections in load order
var Resources = []Resource{ResourcePlayers, ResourceCharacters, ResourceItems}

// DataSource tells whether a collection came from the backend or the mock generator
type DataSource string

const (
	SourceUnknown DataSource = ""
	SourceLive    DataSource = "live"
	SourceMock    DataSource = "mock"
)

// UnknownClass labels characters without a class
const UnknownClass = "Unknown"

// Level is a record level. The backend sends either a number or a numeric
// string; anything else decodes as 0, which means unset.
type Level int

// UnmarshalJSON accepts numbers, numeric strings and null
func (l *Level) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*l = 0
		return nil
	}

	raw := string(data)
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			*l = 0
			return nil
		}
		raw = strings.TrimSpace(s)
	}

	*l = parseLevel(raw)
	return nil
}

func parseLevel(raw string) Level {
	if n, err := strconv.Atoi(raw); err == nil {
		return Level(n)
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
		return Level(int(f))
	}
	return 0
}

// IsSet reports whether the level carried a usable value
func (l Level) IsSet() bool {
	return l != 0
}

// OrDefault returns the level, or def when unset
func (l Level) OrDefault(def int) int {
	if l == 0 {
		return def
	}
	return int(l)
}

// Player is one account record
type Player struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Level     Level  `json:"level"`
	Clan      string `json:"clan,omitempty"`
	CreatedAt string `json:"createdAt,omitempty"` // kept as sent by the backend
}

// Character is one playable character record
type Character struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Level          Level  `json:"level"`
	Class          string `json:"class,omitempty"`
	CharacterClass string `json:"characterClass,omitempty"` // alternate class field
	Clan           string `json:"clan,omitempty"`
	CreatedAt      string `json:"createdAt,omitempty"`
}

// ClassLabel returns class, then characterClass, then "Unknown"
func (c Character) ClassLabel() string {
	if c.Class != "" {
		return c.Class
	}
	if c.CharacterClass != "" {
		return c.CharacterClass
	}
	return UnknownClass
}

// Item is one item record
type Item struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Level     Level  `json:"level"`
	Category  string `json:"category,omitempty"`
	Type      string `json:"type,omitempty"` // alternate category field
	CreatedAt string `json:"createdAt,omitempty"`
}

// CategoryLabel returns category, then type, then "Unknown"
func (i Item) CategoryLabel() string {
	if i.Category != "" {
		return i.Category
	}
	if i.Type != "" {
		return i.Type
	}
	return UnknownClass
}

// LoadResult is the outcome of loading one resource
type LoadResult struct {
	Resource   Resource      `json:"resource"`
	Source     DataSource    `json:"source"`
	Players    []Player      `json:"players,omitempty"`
	Characters []Character   `json:"characters,omitempty"`
	Items      []Item        `json:"items,omitempty"`
	Duration   time.Duration `json:"duration"`
	Err        error         `json:"-"` // failure that caused the mock fallback
}

// Count returns the number of records carried by the result
func (r LoadResult) Count() int {
	switch r.Resource {
	case ResourcePlayers:
		return len(r.Players)
	case ResourceCharacters:
		return len(r.Characters)
	case ResourceItems:
		return len(r.Items)
	default:
		return 0
	}
}

// NewsItem is a headline from the optional game news feed
type NewsItem struct {
	Title     string    `json:"title"`
	Link      string    `json:"link"`
	Published time.Time `json:"published"`
	Summary   string    `json:"summary,omitempty"`
}
