package main

import (
	"github.com/alecthomas/kong"
)

// version is set by ldflags during build
var version = "dev"

type CLI struct {
	Version kong.VersionFlag `short:"v" help:"Show version"`
	Parse   ParseCmd         `cmd:"" help:"Parse hand history files and print structured JSON"`
	Export  ExportCmd        `cmd:"" help:"Export hand history files as PHH (TOML)"`
	Import  ImportCmd        `cmd:"" help:"Import hand history files into the hand database"`
	Watch   WatchCmd         `cmd:"" help:"Watch a directory and import new hands as they appear"`
	Serve   ServeCmd         `cmd:"" help:"Serve stored hands for replay over WebSocket"`

	Config string `help:"Path to HCL config file" default:"handreplay.hcl"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("handreplay"),
		kong.Description("Parse, store and replay poker hand histories"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
	)
	err := ctx.Run(&cli)
	ctx.FatalIfErrorf(err)
}
