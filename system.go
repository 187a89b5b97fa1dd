package portivue

import (
	"context"
	"fmt"
	"strings"

	"github.com/portivue/portivue/date"
)

// System bundles the collaborator stores behind the valuation operations.
// It holds no mutable state of its own: every computation is a single
// synchronous read pass, safe to run concurrently for any mix of tenants.
type System struct {
	Ledger      LedgerStore
	Accounts    AccountStore
	Instruments InstrumentStore
	Prices      PriceStore
	Rates       RateStore
	Settings    SettingsStore

	FX *Resolver

	// Today is the clock used for current-day valuations. Tests override it;
	// nil means the wall clock.
	Today func() date.Date
}

// NewSystem wires a System over the given stores, with an FX resolver built
// on the rate store.
func NewSystem(ledger LedgerStore, accounts AccountStore, instruments InstrumentStore, prices PriceStore, rates RateStore, settings SettingsStore) *System {
	return &System{
		Ledger:      ledger,
		Accounts:    accounts,
		Instruments: instruments,
		Prices:      prices,
		Rates:       rates,
		Settings:    settings,
		FX:          NewResolver(rates),
	}
}

func (s *System) today() date.Date {
	if s.Today != nil {
		return s.Today()
	}
	return date.Today()
}

// BaseCurrency resolves the reporting currency for a tenant. Precedence:
// explicit override, then the tenant's setting, then the first defined
// currency, then DefaultBaseCurrency.
func (s *System) BaseCurrency(ctx context.Context, scope Scope, override string) (string, error) {
	if override != "" {
		if err := ValidateCurrency(override); err != nil {
			return "", fmt.Errorf("invalid base currency override: %w", err)
		}
		return strings.ToUpper(override), nil
	}
	if s.Settings != nil {
		if cur, ok, err := s.Settings.BaseCurrency(ctx, scope); err != nil {
			return "", err
		} else if ok && cur != "" {
			return strings.ToUpper(cur), nil
		}
		if cur, ok, err := s.Settings.FirstCurrency(ctx, scope); err != nil {
			return "", err
		} else if ok && cur != "" {
			return strings.ToUpper(cur), nil
		}
	}
	return DefaultBaseCurrency, nil
}
