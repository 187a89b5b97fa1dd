package portivue

import (
	"context"
	"slices"
	"strings"

	"github.com/portivue/portivue/date"
)

// Balance is one account row of the balance report.
type Balance struct {
	AccountID       string      `json:"account_id"`
	AccountName     string      `json:"account_name"`
	AccountType     AccountType `json:"account_type"`
	AccountCurrency string      `json:"account_currency"`

	Native float64 `json:"balance_ccy"`
	// Base is the balance converted to the reporting currency. An exact 0.0
	// with RateKnown false means the rate was missing: the zero is
	// deliberately visible rather than silently substituting the native
	// amount.
	Base      float64 `json:"balance_base"`
	Rate      float64 `json:"fx_rate"`
	RateKnown bool    `json:"fx_rate_known"`

	AsOf         date.Date `json:"as_of"`
	BaseCurrency string    `json:"base_currency"`
}

// Balances reports every account's cached balance in its native currency and
// converted to the reporting currency as of the given day (zero date means
// today). Rows are ordered by case-folded account name, then id.
func (s *System) Balances(ctx context.Context, scope Scope, baseOverride string, asOf date.Date) ([]Balance, error) {
	if asOf.IsZero() {
		asOf = s.today()
	}
	base, err := s.BaseCurrency(ctx, scope, baseOverride)
	if err != nil {
		return nil, err
	}

	accounts, err := s.Accounts.Accounts(ctx, scope)
	if err != nil {
		return nil, err
	}

	cache := RateCache{}
	rows := make([]Balance, 0, len(accounts))
	for _, acc := range accounts {
		row := Balance{
			AccountID:       acc.ID,
			AccountName:     acc.Name,
			AccountType:     acc.Type,
			AccountCurrency: acc.CurrencyCode,
			Native:          acc.Balance,
			AsOf:            asOf,
			BaseCurrency:    base,
		}

		// Identity (rate 1.0) and minor-unit pairs (a GBp account with a
		// GBP base) are the resolver's call; it answers both without
		// touching the store. A shortcut here on upper-cased codes would
		// wrongly treat GBp as GBP.
		rate, ok, err := s.FX.Rate(ctx, acc.CurrencyCode, base, asOf, cache)
		if err != nil {
			return nil, err
		}
		if ok {
			row.Base = acc.Balance * rate
			row.Rate = rate
			row.RateKnown = true
		}
		// Unknown rate: Base stays exactly 0.0, surfacing the gap.
		rows = append(rows, row)
	}

	slices.SortStableFunc(rows, func(a, b Balance) int {
		if c := strings.Compare(strings.ToLower(a.AccountName), strings.ToLower(b.AccountName)); c != 0 {
			return c
		}
		return strings.Compare(a.AccountID, b.AccountID)
	})
	return rows, nil
}
