package main

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"datahub/internal/analytics"
	"datahub/internal/dashboard"
	"datahub/internal/models"
)

func createSummaryCommand() *cobra.Command {
	var timeout time.Duration
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Load the dashboard once and print its stats",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg, err := loadConfig(ctx)
			if err != nil {
				return err
			}

			runner, err := NewLocalRunner(ctx, cfg, nil)
			if err != nil {
				return err
			}
			defer runner.Close()

			if err := runner.Load(ctx, timeout); err != nil {
				return err
			}
			printSummary(cmd.OutOrStdout(), runner.View())
			return nil
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", 2*time.Minute, "how long to wait for the data load")
	return cmd
}

func printHistogram(out io.Writer, title, label string, h analytics.Histogram) {
	if h.Len() == 0 {
		return
	}
	color.New(color.FgGreen).Add(color.Bold).Fprintln(out, "\n"+title)
	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{label, "Count"})
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	for i, l := range h.Labels {
		table.Append([]string{l, strconv.Itoa(h.Counts[i])})
	}
	table.Render()
}

// printSummary writes the stat cards, data sources and top characters as tables
func printSummary(out io.Writer, view dashboard.View) {
	color.New(color.FgCyan).Add(color.Bold).Fprintln(out, "\n=== Game Data Summary ===")
	if view.Degraded {
		color.New(color.FgYellow).Fprintln(out, "Some resources are generated sample data")
	}

	color.New(color.FgGreen).Add(color.Bold).Fprintln(out, "\nStats:")
	values := view.Summary.Values()
	stats := tablewriter.NewWriter(out)
	stats.SetHeader([]string{"Stat", "Value", "Change"})
	stats.SetAlignment(tablewriter.ALIGN_LEFT)
	for _, key := range analytics.StatKeys {
		change := "-"
		if c, ok := view.Changes[key]; ok {
			change = c.Label
		}
		stats.Append([]string{analytics.StatLabels[key], formatValue(key, values[key]), change})
	}
	stats.Render()

	color.New(color.FgGreen).Add(color.Bold).Fprintln(out, "\nSources:")
	sources := tablewriter.NewWriter(out)
	sources.SetHeader([]string{"Resource", "Source", "Loaded", "Error"})
	sources.SetAlignment(tablewriter.ALIGN_LEFT)
	for _, resource := range models.Resources {
		loaded := "-"
		if at, ok := view.LoadedAt[resource]; ok && !at.IsZero() {
			loaded = at.Format(time.RFC3339)
		}
		sources.Append([]string{string(resource), string(view.Sources[resource]), loaded, view.Errors[resource]})
	}
	sources.Render()

	printHistogram(out, "Item types:", "Type", view.ItemTypes)
	printHistogram(out, "Clans:", "Clan", view.Clans)

	fmt.Fprintf(out, "\nFetch latency: p50=%.1fms p90=%.1fms p99=%.1fms (%d samples)\n",
		view.Latency.P50, view.Latency.P90, view.Latency.P99, view.Latency.Count)

	if len(view.TopCharacters) == 0 {
		return
	}
	color.New(color.FgGreen).Add(color.Bold).Fprintln(out, "\nTop characters:")
	top := tablewriter.NewWriter(out)
	top.SetHeader([]string{"Name", "Class", "Level"})
	top.SetAlignment(tablewriter.ALIGN_LEFT)
	for _, c := range view.TopCharacters {
		top.Append([]string{c.Name, c.ClassLabel(), strconv.Itoa(int(c.Level))})
	}
	top.Render()
}

func formatValue(key string, v float64) string {
	if key == analytics.StatAvgLevel {
		return strconv.FormatFloat(v, 'f', 1, 64)
	}
	return strconv.FormatFloat(v, 'f', 0, 64)
}

