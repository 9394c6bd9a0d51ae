package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"datahub/internal/config"
	"datahub/internal/logger"
	"datahub/internal/server"
)

var envFiles []string

func main() {
	if err := createRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func createRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "datahub",
		Short:         "Live game data dashboard",
		Version:       config.GetVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringSliceVar(&envFiles, "env-file", nil, "env files to load before reading the environment (default .env)")

	rootCmd.AddCommand(createServeCommand())
	rootCmd.AddCommand(createSnapshotCommand())
	rootCmd.AddCommand(createSummaryCommand())
	return rootCmd
}

func createServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the dashboard page, its API and live updates",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
}

// loadConfig reads configuration and applies its log settings
func loadConfig(ctx context.Context) (*config.Config, error) {
	cfg, err := config.Load(ctx, envFiles...)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	logger.Configure(cfg.LogLevel, cfg.LogFormat)
	return cfg, nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}

	log := logger.Component("main")
	log.Info("Starting game data hub", map[string]interface{}{
		"port":        cfg.Port,
		"environment": cfg.Environment,
		"storage":     cfg.StorageBackend,
		"mockup_mode": cfg.MockupMode,
	})

	srv, err := server.NewServer(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}
	defer func() {
		if err := srv.Close(); err != nil {
			log.Error("Failed to close server resources", err)
		}
	}()

	if err := srv.Run(ctx); err != nil {
		return err
	}
	log.Info("Server stopped")
	return nil
}
