package charts

import (
	"errors"
	"fmt"

	"datahub/internal/analytics"
)

// ErrInvalidPayload is returned when dataset lengths do not match the labels
var ErrInvalidPayload = errors.New("invalid chart payload")

// Payload is the data drawn on one chart
type Payload struct {
	Labels   []string            `json:"labels"`
	Datasets []analytics.Dataset `json:"datasets"`
}

// Style tunes how a payload is drawn. Zero values fall back to the canvas.
type Style struct {
	Title     string   `json:"title,omitempty"`
	Subtitle  string   `json:"subtitle,omitempty"`
	Colors    []string `json:"colors,omitempty"`
	Animation *bool    `json:"animation,omitempty"`
	Smooth    bool     `json:"smooth,omitempty"`
	Fill      bool     `json:"fill,omitempty"`
}

// SeriesPayload converts an analytics series
func SeriesPayload(s analytics.Series) Payload {
	return Payload{Labels: s.Labels, Datasets: s.Datasets}
}

// HistogramPayload converts a histogram into a single-dataset payload
func HistogramPayload(name string, h analytics.Histogram) Payload {
	values := make([]float64, len(h.Counts))
	for i, c := range h.Counts {
		values[i] = float64(c)
	}
	return Payload{
		Labels:   h.Labels,
		Datasets: []analytics.Dataset{{Name: name, Values: values}},
	}
}

func (p Payload) validate(kind Kind) error {
	if kind == KindDoughnut && len(p.Datasets) > 1 {
		return fmt.Errorf("%w: doughnut takes one dataset, got %d", ErrInvalidPayload, len(p.Datasets))
	}
	for _, ds := range p.Datasets {
		if len(ds.Values) != len(p.Labels) {
			return fmt.Errorf("%w: dataset %q has %d values for %d labels",
				ErrInvalidPayload, ds.Name, len(ds.Values), len(p.Labels))
		}
	}
	return nil
}

func (p Payload) clone() Payload {
	out := Payload{Labels: append([]string(nil), p.Labels...)}
	for _, ds := range p.Datasets {
		out.Datasets = append(out.Datasets, analytics.Dataset{
			Name:   ds.Name,
			Values: append([]float64(nil), ds.Values...),
		})
	}
	return out
}

func (s Style) withCanvas(c Canvas) Style {
	if s.Title == "" {
		s.Title = c.Title
	}
	if len(s.Colors) == 0 {
		s.Colors = c.Colors
	}
	if s.Animation == nil {
		s.Animation = c.Animation
	}
	return s
}

func (s Style) animated() bool {
	return s.Animation == nil || *s.Animation
}
