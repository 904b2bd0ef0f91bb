package main

import (
	"log/slog"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/twbuild/cmd/twbuild/commands"
	foundationerrors "git.home.luguber.info/inful/twbuild/internal/foundation/errors"
	"git.home.luguber.info/inful/twbuild/internal/version"
)

func main() {
	cli := &commands.CLI{}
	parser := kong.Parse(cli,
		kong.Name("twbuild"),
		kong.Description("Assemble TurboWarp extension source fragments into a single script."),
		kong.Vars{"version": version.String()},
		kong.UsageOnError(),
	)

	global := &commands.Global{Logger: slog.Default()}
	err := parser.Run(global, cli)
	foundationerrors.NewCLIErrorAdapter(cli.Verbose, global.Logger).HandleError(err)
}
