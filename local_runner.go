package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"datahub/internal/config"
	"datahub/internal/dashboard"
	"datahub/internal/llm"
	"datahub/internal/logger"
	"datahub/internal/reports"
	"datahub/internal/storage"
)

// LocalRunner loads the dashboard once without serving it and works on the
// result: it stores a snapshot or prints a summary.
type LocalRunner struct {
	cfg     *config.Config
	session *dashboard.Session
	log     *logger.Logger
}

// NewLocalRunner creates a runner. A nil loader fetches from the configured
// game API.
func NewLocalRunner(ctx context.Context, cfg *config.Config, loader dashboard.DataLoader) (*LocalRunner, error) {
	session, err := dashboard.NewSession(ctx, dashboard.Options{Config: cfg, Loader: loader})
	if err != nil {
		return nil, fmt.Errorf("failed to create dashboard session: %w", err)
	}
	return &LocalRunner{cfg: cfg, session: session, log: logger.Component("runner")}, nil
}

// Load runs one refresh and waits until every resource is applied
func (r *LocalRunner) Load(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	r.session.Refresh(ctx)
	if err := r.session.Wait(ctx); err != nil {
		return fmt.Errorf("data load did not finish: %w", err)
	}
	// stat animations settle shortly after the last resource arrives
	r.session.Animator().Wait()

	snap := r.session.Snapshot()
	r.log.Info("Dashboard data loaded", map[string]interface{}{
		"duration_ms": time.Since(start).Milliseconds(),
		"degraded":    snap.Degraded(),
		"mock":        snap.MockCount(),
	})
	return nil
}

// Snapshot stores a snapshot of the loaded dashboard
func (r *LocalRunner) Snapshot(ctx context.Context) (*reports.Result, error) {
	store, err := storage.NewStorageClient(ctx, r.cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize snapshot storage: %w", err)
	}
	defer store.Close()

	var narrator reports.Narrator
	if r.cfg.OpenAIAPIKey != "" {
		narrator = llm.NewOpenAIClient(r.cfg.OpenAIAPIKey, r.cfg.OpenAIModel)
	}

	return reports.NewService(store, narrator, nil).Create(ctx, r.session)
}

// View returns the loaded dashboard state
func (r *LocalRunner) View() dashboard.View {
	return r.session.View()
}

// Close stops the session
func (r *LocalRunner) Close() {
	r.session.Close()
}

func createSnapshotCommand() *cobra.Command {
	var timeout time.Duration
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Load the dashboard once and store a snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg, err := loadConfig(ctx)
			if err != nil {
				return err
			}
			return runSnapshot(ctx, cmd.OutOrStdout(), cfg, nil, timeout)
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", 2*time.Minute, "how long to wait for the data load")
	return cmd
}

func runSnapshot(ctx context.Context, out io.Writer, cfg *config.Config, loader dashboard.DataLoader, timeout time.Duration) error {
	runner, err := NewLocalRunner(ctx, cfg, loader)
	if err != nil {
		return err
	}
	defer runner.Close()

	if err := runner.Load(ctx, timeout); err != nil {
		return err
	}
	result, err := runner.Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("snapshot failed: %w", err)
	}

	color.New(color.FgGreen).Add(color.Bold).Fprintln(out, "Snapshot stored")
	fmt.Fprintf(out, "  Folder   : %s\n", result.Folder)
	fmt.Fprintf(out, "  Index    : %s\n", result.Index)
	fmt.Fprintf(out, "  Files    : %d\n", len(result.Files))
	fmt.Fprintf(out, "  Narrated : %t\n", result.Narrated)
	if result.Degraded {
		color.New(color.FgYellow).Fprintln(out, "  Some resources were replaced with generated sample data")
	}
	if storage.Backend(cfg.StorageBackend) == storage.BackendLocal {
		if dir, err := filepath.Abs(cfg.LocalSnapshotsDir); err == nil {
			fmt.Fprintf(out, "  Open     : file://%s\n", filepath.Join(dir, filepath.FromSlash(result.Index)))
		}
	}
	return nil
}
