package server

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
	"sort"

	"datahub/internal/analytics"
	"datahub/internal/charts"
	"datahub/internal/config"
	"datahub/internal/dashboard"
	"datahub/internal/filters"
	"datahub/internal/mocks"
	"datahub/internal/models"
)

const pageTitle = "Game Data Hub"

//go:embed templates/dashboard.html
var dashboardHTML string

var dashboardTemplate = template.Must(template.New("dashboard").Parse(dashboardHTML))

type statCard struct {
	Key   string
	Label string
	Value string
}

type sourceBadge struct {
	Resource models.Resource
	Source   models.DataSource
}

type pageData struct {
	Title            string
	Version          string
	EChartsScriptURL string
	Policy           string
	Degraded         bool
	Stats            []statCard
	Canvases         []charts.Canvas
	Classes          []string
	Clans            []string
	LevelRanges      []string
	Selected         filters.Set
	Sources          []sourceBadge
}

// formatStat renders a stat card value the way the page script does
func formatStat(key string, value float64) string {
	if key == analytics.StatAvgLevel {
		return fmt.Sprintf("%.1f", value)
	}
	return fmt.Sprintf("%.0f", value)
}

func buildPageData(view dashboard.View, layout charts.Layout) pageData {
	data := pageData{
		Title:            pageTitle,
		Version:          config.GetVersion(),
		EChartsScriptURL: charts.EChartsScriptURL,
		Policy:           view.FilterPolicy,
		Degraded:         view.Degraded,
		Canvases:         layout.Canvases,
		Classes:          mocks.CharacterClasses,
		Clans:            mocks.Clans,
		LevelRanges:      analytics.LevelBucketLabels,
		Selected:         view.Filters,
	}

	for _, key := range analytics.StatKeys {
		value, ok := view.Displayed[key]
		if !ok {
			value = view.Summary.Values()[key]
		}
		data.Stats = append(data.Stats, statCard{
			Key:   key,
			Label: analytics.StatLabels[key],
			Value: formatStat(key, value),
		})
	}

	for resource, source := range view.Sources {
		data.Sources = append(data.Sources, sourceBadge{Resource: resource, Source: source})
	}
	sort.Slice(data.Sources, func(i, j int) bool { return data.Sources[i].Resource < data.Sources[j].Resource })
	return data
}

func renderPage(data pageData) ([]byte, error) {
	var buf bytes.Buffer
	if err := dashboardTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to render dashboard page: %w", err)
	}
	return buf.Bytes(), nil
}
