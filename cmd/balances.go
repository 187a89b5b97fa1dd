package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"github.com/portivue/portivue/date"
	"github.com/portivue/portivue/renderer"
)

type balancesCmd struct {
	currency string
	asOf     string
}

func (*balancesCmd) Name() string     { return "balances" }
func (*balancesCmd) Synopsis() string { return "display account balances in the reporting currency" }
func (*balancesCmd) Usage() string {
	return `pv balances [-c <currency>] [-d <date>]

  Displays every account balance, converted to the reporting currency with
  the FX rate in effect on the valuation date. Accounts whose currency has
  no stored rate show a zero converted value and are flagged.
`
}

func (c *balancesCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.currency, "c", "", "Reporting currency override.")
	f.StringVar(&c.asOf, "d", "", "Valuation date (YYYY-MM-DD). Defaults to today.")
}

func (c *balancesCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	asOf := date.Today()
	if c.asOf != "" {
		var err error
		if asOf, err = date.Parse(c.asOf); err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
			return subcommands.ExitUsageError
		}
	}

	app, err := openApp()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer app.Close()

	balances, err := app.sys.Balances(ctx, app.scope, app.baseOverride(c.currency), asOf)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error computing balances: %v\n", err)
		return subcommands.ExitFailure
	}

	printMarkdown(renderer.RenderBalances(renderer.NewBalancesView(balances)))
	return subcommands.ExitSuccess
}
