package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name        string
		envVars     map[string]string
		expectError bool
		validate    func(*testing.T, *Config)
	}{
		{
			name:        "defaults",
			envVars:     map[string]string{},
			expectError: false,
			validate: func(t *testing.T, cfg *Config) {
				if cfg.Port != "8981" {
					t.Errorf("Expected default Port to be '8981', got '%s'", cfg.Port)
				}
				if cfg.PlayersLimit != 500 || cfg.CharactersLimit != 1000 || cfg.ItemsLimit != 200 {
					t.Errorf("Unexpected default limits: %d/%d/%d", cfg.PlayersLimit, cfg.CharactersLimit, cfg.ItemsLimit)
				}
				if cfg.FilterPolicy != FilterPolicyReactive {
					t.Errorf("Expected default FilterPolicy 'reactive', got '%s'", cfg.FilterPolicy)
				}
				if cfg.FilterDebounce != 300*time.Millisecond {
					t.Errorf("Expected default FilterDebounce 300ms, got %v", cfg.FilterDebounce)
				}
				if cfg.AnimationDuration != time.Second {
					t.Errorf("Expected default AnimationDuration 1s, got %v", cfg.AnimationDuration)
				}
				if cfg.RefreshInterval != 30*time.Second {
					t.Errorf("Expected default RefreshInterval 30s, got %v", cfg.RefreshInterval)
				}
				if cfg.MockupMode {
					t.Errorf("Expected default MockupMode to be false")
				}
				if cfg.StorageBackend != "local" {
					t.Errorf("Expected default StorageBackend 'local', got '%s'", cfg.StorageBackend)
				}
				if cfg.LogFormat != "json" {
					t.Errorf("Expected default LogFormat 'json', got '%s'", cfg.LogFormat)
				}
			},
		},
		{
			name: "custom configuration values",
			envVars: map[string]string{
				"PORT":              "9000",
				"GAME_API_BASE_URL": "http://game.local/api/",
				"PLAYERS_LIMIT":     "50",
				"FILTER_POLICY":     "Manual",
				"REFRESH_INTERVAL":  "0s",
				"MOCKUP_MODE":       "true",
				"STORAGE_BACKEND":   "gcs",
				"GCS_BUCKET":        "dash-bucket",
				"LOG_LEVEL":         "debug",
				"LOG_FORMAT":        "text",
			},
			expectError: false,
			validate: func(t *testing.T, cfg *Config) {
				if cfg.Port != "9000" {
					t.Errorf("Expected Port to be '9000', got '%s'", cfg.Port)
				}
				if cfg.PlayersLimit != 50 {
					t.Errorf("Expected PlayersLimit 50, got %d", cfg.PlayersLimit)
				}
				if cfg.FilterPolicy != FilterPolicyManual {
					t.Errorf("Expected normalised FilterPolicy 'manual', got '%s'", cfg.FilterPolicy)
				}
				if cfg.RefreshInterval != 0 {
					t.Errorf("Expected RefreshInterval 0, got %v", cfg.RefreshInterval)
				}
				if !cfg.MockupMode {
					t.Errorf("Expected MockupMode to be true")
				}
				if cfg.GCSBucket != "dash-bucket" {
					t.Errorf("Expected GCSBucket 'dash-bucket', got '%s'", cfg.GCSBucket)
				}
				if got := cfg.ResourceURL(cfg.PlayersPath); got != "http://game.local/api/players" {
					t.Errorf("Unexpected players URL: %s", got)
				}
			},
		},
		{
			name:        "invalid filter policy",
			envVars:     map[string]string{"FILTER_POLICY": "eager"},
			expectError: true,
		},
		{
			name:        "gcs without bucket",
			envVars:     map[string]string{"STORAGE_BACKEND": "gcs"},
			expectError: true,
		},
		{
			name:        "non-positive limit",
			envVars:     map[string]string{"ITEMS_LIMIT": "0"},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for key, value := range tt.envVars {
				t.Setenv(key, value)
			}

			cfg, err := Load(context.Background(), filepath.Join(t.TempDir(), "missing.env"))

			if tt.expectError {
				if err == nil {
					t.Errorf("Expected error but got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("Expected no error but got: %v", err)
			}
			if tt.validate != nil {
				tt.validate(t, cfg)
			}
		})
	}
}

func TestLoadFromEnvFile(t *testing.T) {
	clearEnv(t)
	envFile := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(envFile, []byte("PORT=7777\nMOCKUP_MODE=true\n"), 0644); err != nil {
		t.Fatalf("Failed to write env file: %v", err)
	}
	// godotenv sets variables directly; register cleanup for them
	t.Cleanup(func() {
		os.Unsetenv("PORT")
		os.Unsetenv("MOCKUP_MODE")
	})

	cfg, err := Load(context.Background(), envFile)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if cfg.Port != "7777" || !cfg.MockupMode {
		t.Errorf("Expected values from env file, got port=%s mockup=%v", cfg.Port, cfg.MockupMode)
	}
}

func TestResourceURL(t *testing.T) {
	cfg := &Config{GameAPIBaseURL: "http://localhost:8080/datahub"}
	tests := map[string]string{
		"/players":   "http://localhost:8080/datahub/players",
		"characters": "http://localhost:8080/datahub/characters",
		"//items":    "http://localhost:8080/datahub/items",
	}
	for path, expected := range tests {
		if got := cfg.ResourceURL(path); got != expected {
			t.Errorf("ResourceURL(%q) = %q, want %q", path, got, expected)
		}
	}
}

// clearEnv unsets every variable the config reads for the duration of the test
func clearEnv(t *testing.T) {
	envVars := []string{
		"PORT", "GAME_API_BASE_URL", "PLAYERS_PATH", "CHARACTERS_PATH", "ITEMS_PATH",
		"PLAYERS_LIMIT", "CHARACTERS_LIMIT", "ITEMS_LIMIT", "FETCH_TIMEOUT", "FETCH_RETRIES",
		"NEWS_FEED_URL", "MOCKUP_MODE", "REFRESH_INTERVAL", "FILTER_POLICY", "FILTER_DEBOUNCE",
		"ANIMATION_DURATION", "LAYOUT_FILE", "STORAGE_BACKEND", "LOCAL_SNAPSHOTS_DIR",
		"GCS_BUCKET", "OPENAI_API_KEY", "OPENAI_MODEL", "ENVIRONMENT", "LOG_LEVEL", "LOG_FORMAT",
	}
	for _, env := range envVars {
		t.Setenv(env, "")
		os.Unsetenv(env)
	}
}
