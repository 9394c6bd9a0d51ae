package charts

import (
	"encoding/json"
	"fmt"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

const areaOpacity = 0.15

// buildOptions renders the echarts option object for a canvas
func buildOptions(theme string, c Canvas, kind Kind, p Payload, s Style) (json.RawMessage, error) {
	global := []charts.GlobalOpts{
		charts.WithInitializationOpts(opts.Initialization{
			ChartID: c.ID,
			Width:   fmt.Sprintf("%dpx", c.Width),
			Height:  fmt.Sprintf("%dpx", c.Height),
			Theme:   theme,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    s.Title,
			Subtitle: s.Subtitle,
			Left:     "center",
		}),
		charts.WithAnimation(s.animated()),
		charts.WithLegendOpts(opts.Legend{
			Show:   opts.Bool(len(p.Datasets) > 1 || kind == KindDoughnut),
			Bottom: "0",
		}),
	}
	if len(s.Colors) > 0 {
		global = append(global, charts.WithColorsOpts(opts.Colors(s.Colors)))
	}

	var obj map[string]interface{}
	switch kind {
	case KindLine:
		line := charts.NewLine()
		line.SetGlobalOptions(append(global, charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}))...)
		line.SetXAxis(p.Labels)
		for _, ds := range p.Datasets {
			series := []charts.SeriesOpts{charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(s.Smooth)})}
			if s.Fill {
				series = append(series, charts.WithAreaStyleOpts(opts.AreaStyle{Opacity: opts.Float(areaOpacity)}))
			}
			line.AddSeries(ds.Name, lineData(ds.Values), series...)
		}
		line.Validate()
		obj = line.JSON()

	case KindBar:
		bar := charts.NewBar()
		bar.SetGlobalOptions(append(global, charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}))...)
		bar.SetXAxis(p.Labels)
		for _, ds := range p.Datasets {
			bar.AddSeries(ds.Name, barData(ds.Values))
		}
		bar.Validate()
		obj = bar.JSON()

	case KindDoughnut:
		pie := charts.NewPie()
		pie.SetGlobalOptions(append(global, charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "item"}))...)
		name := s.Title
		var values []float64
		if len(p.Datasets) == 1 {
			name = p.Datasets[0].Name
			values = p.Datasets[0].Values
		}
		pie.AddSeries(name, pieData(p.Labels, values),
			charts.WithPieChartOpts(opts.PieChart{Radius: []string{"40%", "70%"}}))
		pie.Validate()
		obj = pie.JSON()

	default:
		return nil, fmt.Errorf("unsupported chart kind %q", kind)
	}

	raw, err := json.Marshal(obj)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s options: %w", c.ID, err)
	}
	return raw, nil
}

func lineData(values []float64) []opts.LineData {
	out := make([]opts.LineData, len(values))
	for i, v := range values {
		out[i] = opts.LineData{Value: v}
	}
	return out
}

func barData(values []float64) []opts.BarData {
	out := make([]opts.BarData, len(values))
	for i, v := range values {
		out[i] = opts.BarData{Value: v}
	}
	return out
}

func pieData(labels []string, values []float64) []opts.PieData {
	out := make([]opts.PieData, 0, len(values))
	for i, v := range values {
		out = append(out, opts.PieData{Name: labels[i], Value: v})
	}
	return out
}
