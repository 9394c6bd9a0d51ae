package reports

import (
	"fmt"
	"strings"

	"datahub/internal/analytics"
	"datahub/internal/llm"
	"datahub/internal/models"
	"datahub/internal/stats"
)

// BuildMarkdown writes the snapshot summary. The narrative, when present,
// is appended as its own section.
func BuildMarkdown(facts llm.Facts, changes map[string]stats.Change, narrative string) string {
	var b strings.Builder

	b.WriteString("# DataHub snapshot\n\n")
	fmt.Fprintf(&b, "Generated %s.\n\n", facts.GeneratedAt.UTC().Format("2006-01-02 15:04 UTC"))

	if mock := mockResources(facts.Sources); len(mock) > 0 {
		fmt.Fprintf(&b, "> **Degraded data:** %s are generated demo data because the backend was unavailable.\n\n",
			strings.Join(mock, ", "))
	}

	b.WriteString("## Headline numbers\n\n")
	b.WriteString("| Stat | Value | Change |\n|---|---:|---:|\n")
	values := facts.Summary.Values()
	for _, key := range analytics.StatKeys {
		change := "n/a"
		if c, ok := changes[key]; ok {
			change = c.Label
		}
		fmt.Fprintf(&b, "| %s | %s | %s |\n", analytics.StatLabels[key], formatStat(values[key]), change)
	}
	b.WriteString("\n")

	b.WriteString("## Data sources\n\n")
	for _, r := range models.Resources {
		src := facts.Sources[r]
		if src == models.SourceUnknown {
			src = "not loaded"
		}
		fmt.Fprintf(&b, "- %s: %s\n", ToTitleCase(string(r)), src)
	}
	b.WriteString("\n")

	writeHistogram(&b, "Class distribution", "Class", "Characters", facts.Classes)
	writeHistogram(&b, "Item types", "Type", "Items", facts.ItemTypes)
	writeHistogram(&b, "Clans", "Clan", "Players", facts.Clans)

	if len(facts.TopCharacters) > 0 {
		b.WriteString("## Top characters\n\n| # | Name | Class | Level |\n|---:|---|---|---:|\n")
		for i, c := range facts.TopCharacters {
			fmt.Fprintf(&b, "| %d | %s | %s | %d |\n", i+1, escapeCell(c.Name), escapeCell(c.ClassLabel()), c.Level.OrDefault(1))
		}
		b.WriteString("\n")
	}

	if len(facts.News) > 0 {
		b.WriteString("## Game news\n\n")
		for _, n := range facts.News {
			title := escapeCell(n.Title)
			if n.Link != "" {
				title = fmt.Sprintf("[%s](%s)", title, n.Link)
			}
			if n.Published.IsZero() {
				fmt.Fprintf(&b, "- %s\n", title)
			} else {
				fmt.Fprintf(&b, "- %s (%s)\n", title, n.Published.UTC().Format("2006-01-02"))
			}
		}
		b.WriteString("\n")
	}

	if narrative = strings.TrimSpace(narrative); narrative != "" {
		b.WriteString("## Digest\n\n")
		b.WriteString(narrative)
		b.WriteString("\n")
	}

	return b.String()
}

func mockResources(sources map[models.Resource]models.DataSource) []string {
	var out []string
	for _, r := range models.Resources {
		if sources[r] == models.SourceMock {
			out = append(out, string(r))
		}
	}
	return out
}

func formatStat(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%.1f", v)
}

// writeHistogram adds a two-column count table; empty histograms are skipped
func writeHistogram(b *strings.Builder, title, label, unit string, h analytics.Histogram) {
	if h.Len() == 0 {
		return
	}
	fmt.Fprintf(b, "## %s\n\n| %s | %s |\n|---|---:|\n", title, label, unit)
	for i, l := range h.Labels {
		fmt.Fprintf(b, "| %s | %d |\n", escapeCell(l), h.Counts[i])
	}
	b.WriteString("\n")
}
