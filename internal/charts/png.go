package charts

import (
	"bytes"
	"errors"
	"fmt"
	"math"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// ErrEmptyChart is returned when a handle has nothing drawable
var ErrEmptyChart = errors.New("chart has no data to draw")

var fallbackColor = drawing.Color{R: 84, G: 112, B: 198, A: 255}

// RenderPNG draws a handle's payload as a static PNG image for snapshots
func RenderPNG(h Handle) ([]byte, error) {
	if len(h.Payload.Labels) == 0 || len(h.Payload.Datasets) == 0 {
		return nil, fmt.Errorf("%s: %w", h.ID, ErrEmptyChart)
	}

	var buf bytes.Buffer
	var err error
	switch h.Kind {
	case KindLine:
		err = linePNG(h).Render(chart.PNG, &buf)
	case KindBar:
		err = barPNG(h).Render(chart.PNG, &buf)
	case KindDoughnut:
		err = donutPNG(h).Render(chart.PNG, &buf)
	default:
		return nil, fmt.Errorf("unsupported chart kind %q", h.Kind)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to render %s chart: %w", h.ID, err)
	}
	return buf.Bytes(), nil
}

func colorAt(colors []string, i int) drawing.Color {
	if len(colors) == 0 {
		return fallbackColor
	}
	return drawing.ColorFromHex(colors[i%len(colors)])
}

func maxValue(p Payload) float64 {
	m := 0.0
	for _, ds := range p.Datasets {
		for _, v := range ds.Values {
			m = math.Max(m, v)
		}
	}
	return m
}

// yRange starts at zero with headroom so flat series still draw
func yRange(p Payload) *chart.ContinuousRange {
	return &chart.ContinuousRange{Min: 0, Max: math.Max(1, math.Ceil(maxValue(p)*1.1))}
}

func titleStyle() chart.Style {
	return chart.Style{FontSize: 14, FontColor: drawing.ColorBlack}
}

func linePNG(h Handle) chart.Chart {
	labels := h.Payload.Labels
	ticks := make([]chart.Tick, len(labels))
	xs := make([]float64, len(labels))
	for i, l := range labels {
		xs[i] = float64(i)
		ticks[i] = chart.Tick{Value: float64(i), Label: l}
	}

	series := make([]chart.Series, 0, len(h.Payload.Datasets))
	for i, ds := range h.Payload.Datasets {
		color := colorAt(h.Style.Colors, i)
		style := chart.Style{StrokeColor: color, StrokeWidth: 2}
		if h.Style.Fill {
			style.FillColor = color.WithAlpha(40)
		}
		series = append(series, chart.ContinuousSeries{
			Name:    ds.Name,
			Style:   style,
			XValues: xs,
			YValues: ds.Values,
		})
	}

	graph := chart.Chart{
		Title:      h.Style.Title,
		TitleStyle: titleStyle(),
		Width:      h.Width,
		Height:     h.Height,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 20, Right: 20, Bottom: 20}},
		XAxis:      chart.XAxis{Ticks: ticks},
		YAxis:      chart.YAxis{Range: yRange(h.Payload)},
		Series:     series,
	}
	if len(series) > 1 {
		graph.Elements = []chart.Renderable{chart.Legend(&graph)}
	}
	return graph
}

func barPNG(h Handle) chart.BarChart {
	ds := h.Payload.Datasets[0]
	bars := make([]chart.Value, len(h.Payload.Labels))
	for i, l := range h.Payload.Labels {
		color := colorAt(h.Style.Colors, i)
		bars[i] = chart.Value{
			Label: l,
			Value: ds.Values[i],
			Style: chart.Style{FillColor: color, StrokeColor: color},
		}
	}

	return chart.BarChart{
		Title:      h.Style.Title,
		TitleStyle: titleStyle(),
		Width:      h.Width,
		Height:     h.Height,
		BarWidth:   max(8, h.Width/(2*len(bars)+2)),
		Background: chart.Style{Padding: chart.Box{Top: 40}},
		YAxis:      chart.YAxis{Range: yRange(h.Payload)},
		Bars:       bars,
	}
}

func donutPNG(h Handle) chart.DonutChart {
	ds := h.Payload.Datasets[0]
	values := make([]chart.Value, len(h.Payload.Labels))
	for i, l := range h.Payload.Labels {
		color := colorAt(h.Style.Colors, i)
		values[i] = chart.Value{
			Label: l,
			Value: ds.Values[i],
			Style: chart.Style{FillColor: color, StrokeColor: drawing.ColorWhite},
		}
	}

	return chart.DonutChart{
		Title:      h.Style.Title,
		TitleStyle: titleStyle(),
		Width:      h.Width,
		Height:     h.Height,
		Values:     values,
	}
}
