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

type historyCmd struct {
	currency string
	start    string
	end      string
}

func (*historyCmd) Name() string     { return "history" }
func (*historyCmd) Synopsis() string { return "display the net worth series over time" }
func (*historyCmd) Usage() string {
	return `pv history [-s <start_date>] [-d <end_date>] [-c <currency>]

  Replays the ledger day by day and displays market value, cash and net
  worth per day, calibrated to current totals. Without -s the series starts
  at the first activity; without -d it ends today.
`
}

func (c *historyCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.start, "s", "", "Start date (YYYY-MM-DD).")
	f.StringVar(&c.end, "d", "", "End date (YYYY-MM-DD).")
	f.StringVar(&c.currency, "c", "", "Reporting currency override.")
}

func (c *historyCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	var from, to date.Date
	var err error
	if c.start != "" {
		if from, err = date.Parse(c.start); err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing start date: %v\n", err)
			return subcommands.ExitUsageError
		}
	}
	if c.end != "" {
		if to, err = date.Parse(c.end); err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing end date: %v\n", err)
			return subcommands.ExitUsageError
		}
	}
	if !from.IsZero() && !to.IsZero() && to.Before(from) {
		fmt.Fprintln(os.Stderr, "end date is before start date")
		return subcommands.ExitUsageError
	}

	app, err := openApp()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer app.Close()

	base, err := app.sys.BaseCurrency(ctx, app.scope, app.baseOverride(c.currency))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	series, err := app.sys.History(ctx, app.scope, from, to, base)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error computing history: %v\n", err)
		return subcommands.ExitFailure
	}

	printMarkdown(renderer.RenderHistory(renderer.NewHistoryView(series, base)))
	return subcommands.ExitSuccess
}
