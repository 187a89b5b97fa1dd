package cmd

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/subcommands"
	"github.com/portivue/portivue/eodhd"
	"github.com/portivue/portivue/frankfurter"
	"github.com/portivue/portivue/refresh"
)

type updateCmd struct {
	prices bool
	rates  bool
	limit  int
	budget time.Duration
}

func (*updateCmd) Name() string     { return "update" }
func (*updateCmd) Synopsis() string { return "refresh instrument prices and FX rates" }
func (*updateCmd) Usage() string {
	return `pv update [-prices] [-rates] [-limit <n>] [-budget <duration>]

  Runs the refresh jobs: latest quotes from eodhd.com for every feed-sourced
  instrument, and daily FX snapshots from frankfurter.dev. Without flags
  both jobs run. Prices need EODHD_API_KEY (or eodhd.api_key in the config).
`
}

func (c *updateCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.prices, "prices", false, "Refresh instrument prices only.")
	f.BoolVar(&c.rates, "rates", false, "Refresh FX rates only.")
	f.IntVar(&c.limit, "limit", 0, "Refresh at most N instruments.")
	f.DurationVar(&c.budget, "budget", 0, "Soft time budget for the price job.")
}

func (c *updateCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	runPrices, runRates := c.prices, c.rates
	if !runPrices && !runRates {
		runPrices, runRates = true, true
	}

	app, err := openApp()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer app.Close()

	tracker := refresh.NewTracker()
	status := subcommands.ExitSuccess

	if runPrices {
		if app.cfg.EODHD.APIKey == "" {
			fmt.Fprintln(os.Stderr, "no EODHD API key configured, skipping prices")
			status = subcommands.ExitFailure
		} else {
			quotes := eodhd.New(app.cfg.EODHD.APIKey)
			result, err := tracker.Run("prices", func() (refresh.Result, error) {
				return refresh.Prices(ctx, app.store, quotes, refresh.Options{Limit: c.limit, Budget: c.budget})
			})
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error refreshing prices: %v\n", err)
				status = subcommands.ExitFailure
			} else {
				printResult("prices", result)
			}
		}
	}

	if runRates {
		bases, err := c.rateBases(ctx, app)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error collecting currencies: %v\n", err)
			return subcommands.ExitFailure
		}
		feed := frankfurter.New()
		result, err := tracker.Run("rates", func() (refresh.Result, error) {
			return refresh.Rates(ctx, app.store, feed, bases...)
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error refreshing rates: %v\n", err)
			status = subcommands.ExitFailure
		} else {
			printResult("rates", result)
		}
	}

	return status
}

// rateBases collects the currencies worth refreshing: the reporting currency
// plus every distinct account currency of the tenant.
func (c *updateCmd) rateBases(ctx context.Context, app *app) ([]string, error) {
	base, err := app.sys.BaseCurrency(ctx, app.scope, app.cfg.Currency.Base)
	if err != nil {
		return nil, err
	}
	seen := map[string]bool{base: true}
	bases := []string{base}

	accounts, err := app.store.Accounts(ctx, app.scope)
	if err != nil {
		return nil, err
	}
	for _, acc := range accounts {
		code := strings.ToUpper(acc.CurrencyCode)
		if code == "" || seen[code] {
			continue
		}
		seen[code] = true
		bases = append(bases, code)
	}
	return bases, nil
}

func printResult(job string, r refresh.Result) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		fmt.Printf("[%s] %+v\n", job, r)
		return
	}
	fmt.Printf("[%s] %s\n", job, data)
}
