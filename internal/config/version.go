package config

import (
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"
)

const fallbackVersion = "0.1.0"

// GetVersion returns version from environment variable, VERSION file or build info
func GetVersion() string {
	// CI/CD sets APP_VERSION
	if envVersion := os.Getenv("APP_VERSION"); envVersion != "" {
		return envVersion
	}

	base := getBaseVersion()
	if rev := getBuildRevision(); rev != "" {
		return base + "+" + rev
	}
	return base
}

// getBaseVersion reads the base version from a VERSION file next to or above the working directory
func getBaseVersion() string {
	for _, candidate := range []string{"VERSION", filepath.Join("..", "VERSION")} {
		if content, err := os.ReadFile(candidate); err == nil {
			if v := strings.TrimSpace(string(content)); v != "" {
				return v
			}
		}
	}
	return fallbackVersion
}

// getBuildRevision returns the short VCS revision stamped into the binary, if any
func getBuildRevision() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	for _, setting := range info.Settings {
		if setting.Key == "vcs.revision" && len(setting.Value) >= 7 {
			return setting.Value[:7]
		}
	}
	return ""
}
