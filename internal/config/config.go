package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	foundationerrors "git.home.luguber.info/inful/twbuild/internal/foundation/errors"
)

// DefaultPath is the configuration file looked up when --config is not given.
const DefaultPath = "twbuild.yaml"

// Config represents the build tool configuration. Every field is optional;
// a project without a twbuild.yaml builds src/ into build/extension.js.
type Config struct {
	Source  SourceConfig  `yaml:"source"`
	Output  OutputConfig  `yaml:"output"`
	Watch   WatchConfig   `yaml:"watch"`
	Logging LoggingConfig `yaml:"logging"`
}

// SourceConfig locates the source fragments.
type SourceConfig struct {
	Directory string `yaml:"directory"`
}

// OutputConfig locates the build artifact.
type OutputConfig struct {
	Directory string `yaml:"directory"`
}

// WatchConfig tunes watch mode.
type WatchConfig struct {
	// Debounce is the per-file stability window, e.g. "100ms".
	Debounce string `yaml:"debounce,omitempty"`
	// Ignore holds extra doublestar patterns matched against file names in the source directory.
	Ignore []string `yaml:"ignore,omitempty"`
	// Serve is the listen address of the dev server; empty disables it.
	Serve string `yaml:"serve,omitempty"`

	debounce time.Duration
}

// LoggingConfig selects slog level and handler.
type LoggingConfig struct {
	Level  LogLevel  `yaml:"level,omitempty"`
	Format LogFormat `yaml:"format,omitempty"`
}

// DebounceDuration returns the parsed stability window.
func (w WatchConfig) DebounceDuration() time.Duration {
	if w.debounce <= 0 {
		return DefaultDebounce
	}
	return w.debounce
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// Load reads configuration from configPath. A missing file is not an error:
// the defaults are returned instead. Environment overrides from the process
// environment and .env files are applied on top of the file.
func Load(configPath string) (*Config, error) {
	loadEnvFiles()

	cfg := &Config{}
	if configPath != "" {
		data, err := os.ReadFile(configPath)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			slog.Debug("No configuration file, using defaults", "path", configPath)
		case err != nil:
			return nil, foundationerrors.WrapError(err, foundationerrors.CategoryConfig, "failed to read config file").
				Fatal().
				WithContext("path", configPath).
				Build()
		default:
			// Expand environment variables in the YAML content
			expanded := os.ExpandEnv(string(data))
			if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
				return nil, foundationerrors.WrapError(err, foundationerrors.CategoryConfig, "failed to unmarshal config").
					Fatal().
					WithContext("path", configPath).
					Build()
			}
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Normalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Normalize applies defaults, parses derived values and validates the
// configuration. Call it again after overriding fields from CLI flags.
func (c *Config) Normalize() error {
	applyDefaults(c)

	c.Watch.debounce = 0
	if c.Watch.Debounce != "" {
		d, err := time.ParseDuration(c.Watch.Debounce)
		if err != nil {
			return foundationerrors.WrapError(err, foundationerrors.CategoryConfig, "invalid watch debounce").
				Fatal().
				WithContext("value", c.Watch.Debounce).
				Build()
		}
		if d <= 0 {
			return foundationerrors.ConfigError(fmt.Sprintf("watch debounce must be positive, got %s", d)).Build()
		}
		c.Watch.debounce = d
	}

	if filepath.Clean(c.Source.Directory) == filepath.Clean(c.Output.Directory) {
		return foundationerrors.ConfigError("source and output directories must differ").
			WithContext("directory", c.Source.Directory).
			Build()
	}
	return nil
}

// OutputFile is the fixed artifact path inside the output directory.
func (c *Config) OutputFile() string {
	return filepath.Join(c.Output.Directory, OutputFileName)
}
