package main

import (
	"github.com/alecthomas/kong"

	"github.com/duolink/duolink/internal/cli"
)

func main() {
	var root cli.CLI
	ctx := kong.Parse(&root,
		kong.Name("duolinkctl"),
		kong.Description("Command-line control for a paired pair of smart glasses."),
		kong.UsageOnError(),
	)
	err := ctx.Run(&root)
	ctx.FatalIfErrorf(err)
}
