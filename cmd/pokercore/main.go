package main

import (
	"github.com/alecthomas/kong"
)

// version is set by ldflags during build
var version = "dev"

type CLI struct {
	Version  kong.VersionFlag `short:"v" help:"Show version"`
	Serve    ServeCmd         `cmd:"" help:"Run the poker server"`
	Simulate SimulateCmd      `cmd:"" help:"Play AI tiers against each other offline"`
	Eval     EvalCmd          `cmd:"" help:"Evaluate hands against a board"`
	History  HistoryCmd       `cmd:"" help:"Work with PHH hand history files"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("pokercore"),
		kong.Description("Texas Hold'em tables for humans and AI opponents"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
	)
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}
