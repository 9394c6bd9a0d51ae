package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

// Filter policies understood by the filter controller
const (
	FilterPolicyReactive = "reactive"
	FilterPolicyManual   = "manual"
)

// Config holds all configuration for the dashboard service
type Config struct {
	// Server configuration
	Port string `env:"PORT,default=8981"`

	// Game data backend
	GameAPIBaseURL  string        `env:"GAME_API_BASE_URL,default=http://localhost:8080/datahub"`
	PlayersPath     string        `env:"PLAYERS_PATH,default=/players"`
	CharactersPath  string        `env:"CHARACTERS_PATH,default=/characters"`
	ItemsPath       string        `env:"ITEMS_PATH,default=/items"`
	PlayersLimit    int           `env:"PLAYERS_LIMIT,default=500"`
	CharactersLimit int           `env:"CHARACTERS_LIMIT,default=1000"`
	ItemsLimit      int           `env:"ITEMS_LIMIT,default=200"`
	FetchTimeout    time.Duration `env:"FETCH_TIMEOUT,default=10s"`
	FetchRetries    int           `env:"FETCH_RETRIES,default=2"`
	NewsFeedURL     string        `env:"NEWS_FEED_URL"`

	// Demo mode: never call the backend, always render generated data
	MockupMode bool `env:"MOCKUP_MODE,default=false"`

	// Dashboard behaviour
	RefreshInterval   time.Duration `env:"REFRESH_INTERVAL,default=30s"`
	FilterPolicy      string        `env:"FILTER_POLICY,default=reactive"`
	FilterDebounce    time.Duration `env:"FILTER_DEBOUNCE,default=300ms"`
	AnimationDuration time.Duration `env:"ANIMATION_DURATION,default=1s"`
	LayoutFile        string        `env:"LAYOUT_FILE"`

	// Snapshot storage
	StorageBackend    string `env:"STORAGE_BACKEND,default=local"`
	LocalSnapshotsDir string `env:"LOCAL_SNAPSHOTS_DIR,default=./snapshots"`
	GCSBucket         string `env:"GCS_BUCKET"`

	// OpenAI configuration (optional, enables snapshot narratives)
	OpenAIAPIKey string `env:"OPENAI_API_KEY"`
	OpenAIModel  string `env:"OPENAI_MODEL,default=gpt-4.1-mini"`

	// Service configuration
	Environment string `env:"ENVIRONMENT,default=development"`
	LogLevel    string `env:"LOG_LEVEL,default=info"`
	LogFormat   string `env:"LOG_FORMAT,default=json"`
}

// Load loads configuration from an optional .env file and environment variables
func Load(ctx context.Context, envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read env file: %w", err)
	}

	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks value ranges envconfig cannot express
func (c *Config) Validate() error {
	c.FilterPolicy = strings.ToLower(strings.TrimSpace(c.FilterPolicy))
	switch c.FilterPolicy {
	case FilterPolicyReactive, FilterPolicyManual:
	default:
		return fmt.Errorf("invalid FILTER_POLICY %q: want %s or %s", c.FilterPolicy, FilterPolicyReactive, FilterPolicyManual)
	}

	if c.PlayersLimit <= 0 || c.CharactersLimit <= 0 || c.ItemsLimit <= 0 {
		return fmt.Errorf("resource limits must be positive")
	}
	if c.RefreshInterval < 0 {
		return fmt.Errorf("REFRESH_INTERVAL must not be negative")
	}

	switch c.StorageBackend {
	case "local":
	case "gcs":
		if c.GCSBucket == "" {
			return fmt.Errorf("GCS_BUCKET is required when STORAGE_BACKEND=gcs")
		}
	default:
		return fmt.Errorf("unsupported STORAGE_BACKEND %q", c.StorageBackend)
	}
	return nil
}

// ResourceURL joins the backend base URL with a resource path
func (c *Config) ResourceURL(path string) string {
	return strings.TrimRight(c.GameAPIBaseURL, "/") + "/" + strings.TrimLeft(path, "/")
}
