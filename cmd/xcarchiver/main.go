package main

import (
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/xcarchiver/cmd/xcarchiver/commands"
	derrors "git.home.luguber.info/inful/xcarchiver/internal/errors"
	"git.home.luguber.info/inful/xcarchiver/internal/version"
)

func main() {
	cli := &commands.CLI{}
	parser := kong.Must(cli,
		kong.Name("xcarchiver"),
		kong.Description("Build, archive and export iOS, tvOS and macOS apps."),
		kong.UsageOnError(),
		kong.Vars{"version": version.String()},
	)
	ctx, err := parser.Parse(os.Args[1:])
	parser.FatalIfErrorf(err)

	global := &commands.Global{Logger: slog.Default()}
	if err := ctx.Run(global, cli); err != nil {
		derrors.NewCLIErrorAdapter(cli.Verbose, slog.Default()).HandleError(err)
	}
}
