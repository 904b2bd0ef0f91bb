package config

import "time"

// Defaults applied when neither the config file, the environment nor CLI flags set a value.
const (
	DefaultSourceDir = "src"
	DefaultOutputDir = "build"
	DefaultDebounce  = 100 * time.Millisecond

	// OutputFileName is the artifact name the host loader expects.
	OutputFileName = "extension.js"
)

func applyDefaults(cfg *Config) {
	if cfg.Source.Directory == "" {
		cfg.Source.Directory = DefaultSourceDir
	}
	if cfg.Output.Directory == "" {
		cfg.Output.Directory = DefaultOutputDir
	}
	cfg.Logging.Level = NormalizeLogLevel(string(cfg.Logging.Level))
	cfg.Logging.Format = NormalizeLogFormat(string(cfg.Logging.Format))
}
