package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/subcommands"
	"github.com/portivue/portivue"
	"github.com/portivue/portivue/date"
)

type rateCmd struct {
	base  string
	quote string
	day   string
	rate  string
}

func (*rateCmd) Name() string     { return "rate" }
func (*rateCmd) Synopsis() string { return "look up or record a daily FX rate" }
func (*rateCmd) Usage() string {
	return `pv rate -b <base> -q <quote> [-d <date>] [-r <rate>]

  Without -r, resolves the rate in effect on the date: the most recent
  stored snapshot at or before it, going through the major currency for
  minor units like GBp. With -r, records a snapshot for that exact day.
`
}

func (c *rateCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.base, "b", "", "Base currency code.")
	f.StringVar(&c.quote, "q", "", "Quote currency code.")
	f.StringVar(&c.day, "d", "", "Date (YYYY-MM-DD). Defaults to today.")
	f.StringVar(&c.rate, "r", "", "Rate to record: units of quote per one base.")
}

func (c *rateCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.base == "" || c.quote == "" {
		fmt.Fprintln(os.Stderr, "both -b and -q are required")
		return subcommands.ExitUsageError
	}

	day := date.Today()
	if c.day != "" {
		var err error
		if day, err = date.Parse(c.day); err != nil {
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

	if c.rate != "" {
		return c.record(ctx, app, day)
	}

	rate, ok, err := app.sys.FX.Rate(ctx, c.base, c.quote, day, nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}
	if !ok {
		fmt.Fprintf(os.Stderr, "no rate for %s/%s on or before %s\n", c.base, c.quote, day)
		return subcommands.ExitFailure
	}
	fmt.Printf("%s/%s on %s: %v\n", c.base, c.quote, day, rate)
	return subcommands.ExitSuccess
}

func (c *rateCmd) record(ctx context.Context, app *app, day date.Date) subcommands.ExitStatus {
	value, err := portivue.ParseAmount(c.rate)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing -r: %v\n", err)
		return subcommands.ExitUsageError
	}
	if value <= 0 {
		fmt.Fprintln(os.Stderr, "rate must be positive")
		return subcommands.ExitUsageError
	}
	for _, code := range []string{c.base, c.quote} {
		if err := portivue.ValidateCurrency(code); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return subcommands.ExitUsageError
		}
	}

	fx := portivue.FxRate{
		Base:  strings.ToUpper(c.base),
		Quote: strings.ToUpper(c.quote),
		Date:  day,
		Rate:  value,
	}
	if err := app.store.RecordRate(ctx, fx); err != nil {
		fmt.Fprintf(os.Stderr, "Error recording rate: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Recorded %s/%s %v on %s\n", fx.Base, fx.Quote, fx.Rate, day)
	return subcommands.ExitSuccess
}
