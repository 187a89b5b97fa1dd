package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"github.com/portivue/portivue/renderer"
)

type positionsCmd struct {
	currency string
}

func (*positionsCmd) Name() string     { return "positions" }
func (*positionsCmd) Synopsis() string { return "display current holdings with cost basis and value" }
func (*positionsCmd) Usage() string {
	return `pv positions [-c <currency>]

  Displays every open position: quantity, moving-average cost, last price,
  market value in the instrument currency and in the reporting currency.
`
}

func (c *positionsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.currency, "c", "", "Reporting currency override.")
}

func (c *positionsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	app, err := openApp()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer app.Close()

	positions, err := app.sys.Positions(ctx, app.scope, app.baseOverride(c.currency))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error computing positions: %v\n", err)
		return subcommands.ExitFailure
	}

	printMarkdown(renderer.RenderPositions(renderer.NewPositionsView(positions)))
	return subcommands.ExitSuccess
}
