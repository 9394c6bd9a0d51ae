package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"

	"datahub/internal/analytics"
	"datahub/internal/config"
	"datahub/internal/dashboard"
	"datahub/internal/fetchers"
	"datahub/internal/models"
	"datahub/internal/stats"
)

func init() {
	color.NoColor = true
}

type staticLoader struct{}

func (staticLoader) Load(_ context.Context, generation uint64, handler fetchers.Handler) {
	handler(generation, models.LoadResult{
		Resource: models.ResourcePlayers,
		Source:   models.SourceLive,
		Players:  []models.Player{{ID: "p1", Name: "Ayla"}},
	})
	handler(generation, models.LoadResult{
		Resource:   models.ResourceCharacters,
		Source:     models.SourceMock,
		Characters: []models.Character{{ID: "c1", Name: "Ayla", Level: 30, Class: "Mage"}},
	})
	handler(generation, models.LoadResult{
		Resource: models.ResourceItems,
		Source:   models.SourceLive,
		Items:    []models.Item{{ID: "i1", Name: "Sword", Category: "Weapon"}},
	})
}

func TestRootCommand(t *testing.T) {
	root := createRootCommand()

	for _, name := range []string{"serve", "snapshot", "summary"} {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Errorf("Expected %q subcommand, got %v (err %v)", name, cmd, err)
		}
	}
	if root.PersistentFlags().Lookup("env-file") == nil {
		t.Error("Expected persistent --env-file flag")
	}
}

func TestPrintSummary(t *testing.T) {
	view := dashboard.View{
		Summary: analytics.Summary{Players: 3, Characters: 2, Items: 5, AverageLevel: 41.5},
		Changes: map[string]stats.Change{
			analytics.StatPlayers: stats.Compare(2, 3),
		},
		Sources: map[models.Resource]models.DataSource{
			models.ResourcePlayers:    models.SourceLive,
			models.ResourceCharacters: models.SourceMock,
			models.ResourceItems:      models.SourceLive,
		},
		Errors:        map[models.Resource]string{models.ResourceCharacters: "status 503"},
		Degraded:      true,
		TopCharacters: []models.Character{{Name: "Ayla", Level: 50, Class: "Mage"}},
		ItemTypes:     analytics.Histogram{Labels: []string{"Weapon"}, Counts: []int{5}},
		Clans:         analytics.Histogram{Labels: []string{"Ironclad"}, Counts: []int{3}},
	}

	var out bytes.Buffer
	printSummary(&out, view)
	got := out.String()

	for _, want := range []string{"Total Players", "+50.0%", "41.5", "status 503", "generated sample data", "Ayla", "Mage", "Item types:", "Weapon", "Clans:", "Ironclad"} {
		if !strings.Contains(got, want) {
			t.Errorf("Summary output missing %q:\n%s", want, got)
		}
	}
}

func TestRunSnapshot(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.Config{
		StorageBackend:    "local",
		LocalSnapshotsDir: dir,
		FilterPolicy:      config.FilterPolicyReactive,
		FilterDebounce:    10 * time.Millisecond,
		AnimationDuration: 10 * time.Millisecond,
	}

	var out bytes.Buffer
	if err := runSnapshot(context.Background(), &out, cfg, staticLoader{}, 5*time.Second); err != nil {
		t.Fatalf("runSnapshot() error = %v", err)
	}

	got := out.String()
	if !strings.Contains(got, "Snapshot stored") {
		t.Errorf("Unexpected output:\n%s", got)
	}
	if !strings.Contains(got, "generated sample data") {
		t.Errorf("Expected degraded notice in output:\n%s", got)
	}

	matches, err := filepath.Glob(filepath.Join(dir, "snapshots", "*", "*", "*", "*", "index.html"))
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 1 {
		t.Fatalf("Expected one stored snapshot index, got %v", matches)
	}
	if info, err := os.Stat(matches[0]); err != nil || info.Size() == 0 {
		t.Errorf("Snapshot index is missing or empty: %v", err)
	}
}

func TestConfigLoad(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// defaults cover every required setting
	if _, err := config.Load(ctx); err != nil {
		t.Logf("Config load failed with the current environment: %v", err)
	}
}
