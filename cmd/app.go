// Package cmd implements the CLI application to inspect and maintain a
// portfolio.
package cmd

import (
	"context"
	"flag"
	"fmt"

	"github.com/charmbracelet/glamour"
	"github.com/google/subcommands"
	"github.com/portivue/portivue"
	"github.com/portivue/portivue/config"
	"github.com/portivue/portivue/memstore"
	"github.com/portivue/portivue/sqlstore"
)

// Commands is the full list of subcommands.
// A main package registers each one on its Commander and executes the
// user-selected one.
var Commands = []subcommands.Command{
	&positionsCmd{},
	&balancesCmd{},
	&historyCmd{},
	&logCmd{},
	&txCmd{},
	&rateCmd{},
	&importCmd{},
	&exportCmd{},
	&updateCmd{},
	&topicCmd{},
}

// As a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var configPath = flag.String("config", "", "Path to the config file (YAML or JSON). Defaults and environment apply when empty.")

// store is the persistence surface the commands need: the read path of the
// valuation core plus the write operations the maintenance commands use.
// Both backends implement it.
type store interface {
	portivue.LedgerStore
	portivue.AccountStore
	portivue.InstrumentStore
	portivue.PriceStore
	portivue.RateStore
	portivue.SettingsStore

	// ListInstruments enumerates the shared catalog for the refresh job.
	ListInstruments(ctx context.Context) ([]portivue.Instrument, error)
}

// app bundles everything a command execution needs.
type app struct {
	sys   *portivue.System
	store store
	scope portivue.Scope
	cfg   *config.Config

	closeStore func() error
}

// openApp loads the configuration and opens the configured backend.
func openApp() (*app, error) {
	cfg, err := config.Load(*configPath)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, scope: cfg.Scope(), closeStore: func() error { return nil }}
	switch cfg.Store.Backend {
	case "sqlite":
		db, err := sqlstore.Open(cfg.Store.Path)
		if err != nil {
			return nil, fmt.Errorf("open store %q: %w", cfg.Store.Path, err)
		}
		a.store = db
		a.closeStore = db.Close
	default:
		a.store = memstore.New()
	}

	a.sys = portivue.NewSystem(a.store, a.store, a.store, a.store, a.store, a.store)
	return a, nil
}

// Close releases the backend.
func (a *app) Close() error { return a.closeStore() }

// baseOverride resolves the effective -c flag value: an explicit flag wins,
// then the configured base currency, then whatever the store settings say
// (decided inside the valuation core).
func (a *app) baseOverride(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	return a.cfg.Currency.Base
}

// printMarkdown renders markdown for the terminal. On any rendering problem
// the raw markdown is still printed, never swallowed.
func printMarkdown(md string) {
	out, err := glamour.Render(md, "auto")
	if err != nil {
		fmt.Print(md)
		return
	}
	fmt.Print(out)
}
