package config

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
)

// Environment variables that override file values.
const (
	EnvSourceDir = "TWBUILD_SRC_DIR"
	EnvOutputDir = "TWBUILD_BUILD_DIR"
	EnvDebounce  = "TWBUILD_DEBOUNCE"
	EnvServe     = "TWBUILD_SERVE"
	EnvLogLevel  = "TWBUILD_LOG_LEVEL"
	EnvLogFormat = "TWBUILD_LOG_FORMAT"
)

var envFiles = []string{".env", ".env.local"}

// loadEnvFiles loads .env and .env.local when present. Existing process
// environment variables are never overwritten.
func loadEnvFiles() {
	for _, envPath := range envFiles {
		err := godotenv.Load(envPath)
		switch {
		case err == nil:
			slog.Debug("Loaded environment variables", "path", envPath)
		case errors.Is(err, fs.ErrNotExist):
		default:
			slog.Warn("Could not parse env file", "path", envPath, "error", err)
		}
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv(EnvSourceDir); v != "" {
		cfg.Source.Directory = v
	}
	if v := os.Getenv(EnvOutputDir); v != "" {
		cfg.Output.Directory = v
	}
	if v := os.Getenv(EnvDebounce); v != "" {
		cfg.Watch.Debounce = v
	}
	if v := os.Getenv(EnvServe); v != "" {
		cfg.Watch.Serve = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Logging.Level = LogLevel(v)
	}
	if v := os.Getenv(EnvLogFormat); v != "" {
		cfg.Logging.Format = LogFormat(v)
	}
}
