package commands

import (
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/twbuild/internal/config"
)

// Global context passed to subcommands.
type Global struct {
	Logger *slog.Logger
}

// CLI definition & global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path (optional)" default:"twbuild.yaml" type:"path"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Build BuildCmd `cmd:"" default:"withargs" help:"Assemble source fragments into the extension script (default)"`
	Init  InitCmd  `cmd:"" help:"Create a starter extension project"`
}

// AfterApply runs after flag parsing; setup logging once. The build command
// replaces the logger after the config file is read.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	logging := config.LoggingConfig{
		Level:  config.LogLevel(os.Getenv(config.EnvLogLevel)),
		Format: config.LogFormat(os.Getenv(config.EnvLogFormat)),
	}
	slog.SetDefault(logging.NewLogger(os.Stderr, c.Verbose))
	return nil
}
