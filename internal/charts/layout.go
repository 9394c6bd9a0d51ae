package charts

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed layout.yaml
var defaultLayout []byte

// Kind is the chart type drawn on a canvas
type Kind string

const (
	KindLine     Kind = "line"
	KindBar      Kind = "bar"
	KindDoughnut Kind = "doughnut"
)

// Valid reports whether the kind is supported
func (k Kind) Valid() bool {
	switch k {
	case KindLine, KindBar, KindDoughnut:
		return true
	default:
		return false
	}
}

// Canvas ids of the default dashboard layout
const (
	ActivityChart    = "activityChart"
	ClassChart       = "classChart"
	LevelChart       = "levelChart"
	PerformanceChart = "performanceChart"
)

// MaxCanvasSize bounds canvas width and height in pixels. PNG snapshots
// allocate width*height*4 bytes per chart.
const MaxCanvasSize = 4096

// ErrInvalidSize is returned for sizes outside 1..MaxCanvasSize
var ErrInvalidSize = errors.New("invalid canvas size")

func checkSize(width, height int) error {
	if width <= 0 || height <= 0 || width > MaxCanvasSize || height > MaxCanvasSize {
		return fmt.Errorf("%w: %dx%d (each side must be 1..%d)", ErrInvalidSize, width, height, MaxCanvasSize)
	}
	return nil
}

// Canvas is one chart slot on the page
type Canvas struct {
	ID        string   `yaml:"id" json:"id"`
	Title     string   `yaml:"title" json:"title"`
	Kind      Kind     `yaml:"kind" json:"kind"`
	Width     int      `yaml:"width" json:"width"`
	Height    int      `yaml:"height" json:"height"`
	Colors    []string `yaml:"colors" json:"colors,omitempty"`
	Animation *bool    `yaml:"animation" json:"animation,omitempty"` // nil means animated
}

// Layout is the set of canvases the renderer may draw on
type Layout struct {
	Theme    string   `yaml:"theme" json:"theme"`
	Canvases []Canvas `yaml:"canvases" json:"canvases"`
}

// DefaultLayout returns the embedded layout
func DefaultLayout() *Layout {
	l, err := ParseLayout(defaultLayout)
	if err != nil {
		panic(fmt.Sprintf("embedded chart layout is invalid: %v", err))
	}
	return l
}

// LoadLayout reads a layout file, or returns the embedded layout when path is empty
func LoadLayout(path string) (*Layout, error) {
	if path == "" {
		return DefaultLayout(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read layout file: %w", err)
	}
	l, err := ParseLayout(data)
	if err != nil {
		return nil, fmt.Errorf("invalid layout file %s: %w", path, err)
	}
	return l, nil
}

// ParseLayout decodes and validates a YAML layout
func ParseLayout(data []byte) (*Layout, error) {
	var l Layout
	if err := yaml.Unmarshal(data, &l); err != nil {
		return nil, fmt.Errorf("failed to parse layout: %w", err)
	}
	if err := l.Validate(); err != nil {
		return nil, err
	}
	if l.Theme == "" {
		l.Theme = "white"
	}
	return &l, nil
}

// Validate checks ids are unique and sizes within bounds
func (l *Layout) Validate() error {
	if len(l.Canvases) == 0 {
		return errors.New("layout has no canvases")
	}
	seen := make(map[string]bool, len(l.Canvases))
	for _, c := range l.Canvases {
		if c.ID == "" {
			return errors.New("canvas without id")
		}
		if seen[c.ID] {
			return fmt.Errorf("duplicate canvas id %q", c.ID)
		}
		seen[c.ID] = true
		if err := checkSize(c.Width, c.Height); err != nil {
			return fmt.Errorf("canvas %q: %w", c.ID, err)
		}
		if !c.Kind.Valid() {
			return fmt.Errorf("canvas %q has unsupported kind %q", c.ID, c.Kind)
		}
	}
	return nil
}

// Canvas looks up a canvas by id
func (l Layout) Canvas(id string) (Canvas, bool) {
	for _, c := range l.Canvases {
		if c.ID == id {
			return c, true
		}
	}
	return Canvas{}, false
}

// IDs returns canvas ids in layout order
func (l Layout) IDs() []string {
	ids := make([]string, 0, len(l.Canvases))
	for _, c := range l.Canvases {
		ids = append(ids, c.ID)
	}
	return ids
}
