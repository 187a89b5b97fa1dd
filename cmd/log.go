package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"github.com/portivue/portivue"
	"github.com/portivue/portivue/date"
	"github.com/portivue/portivue/renderer"
)

type logCmd struct {
	start string
	end   string
	head  int
	tail  int
}

func (*logCmd) Name() string     { return "log" }
func (*logCmd) Synopsis() string { return "list ledger activities" }
func (*logCmd) Usage() string {
	return `pv log [-s <start_date>] [-d <end_date>] [-head <n>] [-tail <n>]

  Lists the ledger, oldest first, with options for filtering and limiting
  the output.
`
}

func (c *logCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.start, "s", "", "Only activities on or after this date.")
	f.StringVar(&c.end, "d", "", "Only activities on or before this date.")
	f.IntVar(&c.head, "head", 0, "Show only the first N activities.")
	f.IntVar(&c.tail, "tail", 0, "Show only the last N activities.")
}

func (c *logCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.head > 0 && c.tail > 0 {
		fmt.Fprintln(os.Stderr, "Error: -head and -tail flags cannot be used together.")
		return subcommands.ExitUsageError
	}

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

	app, err := openApp()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer app.Close()

	all, err := app.store.Activities(ctx, app.scope)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading ledger: %v\n", err)
		return subcommands.ExitFailure
	}

	var acts []portivue.Activity
	for _, a := range all {
		if !from.IsZero() && a.Date.Before(from) {
			continue
		}
		if !to.IsZero() && a.Date.After(to) {
			continue
		}
		acts = append(acts, a)
	}
	if c.head > 0 && len(acts) > c.head {
		acts = acts[:c.head]
	}
	if c.tail > 0 && len(acts) > c.tail {
		acts = acts[len(acts)-c.tail:]
	}

	names := map[string]string{}
	if accounts, err := app.store.Accounts(ctx, app.scope); err == nil {
		for _, acc := range accounts {
			names[acc.ID] = acc.Name
		}
	}

	printMarkdown(renderer.RenderActivities(renderer.NewActivitiesView(acts, names)))
	return subcommands.ExitSuccess
}
