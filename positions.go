package portivue

import (
	"context"
	"slices"
	"strings"
)

// positionEpsilon is the threshold under which a rolled quantity is
// considered fully closed and its accumulators are reset to exactly zero,
// so float residue cannot pile up across repeated sell/buy cycles.
const positionEpsilon = 1e-10

// Position is one (account, instrument) row of the moving-average report.
// Native-currency fields are always populated; base-currency fields are 0
// when the FX rate is unknown (the zero is the signal, nothing is raised).
type Position struct {
	AccountID   string `json:"account_id"`
	AccountName string `json:"account_name"`

	InstrumentID string `json:"instrument_id"`
	Symbol       string `json:"symbol,omitempty"`
	Name         string `json:"name,omitempty"`
	AssetClass   string `json:"asset_class,omitempty"`
	AssetSub     string `json:"asset_subclass,omitempty"`
	Currency     string `json:"instrument_currency,omitempty"`

	Quantity        float64 `json:"qty"`
	AvgCostCcy      float64 `json:"avg_cost_ccy"`
	AvgCostBase     float64 `json:"avg_cost_base"`
	LastPriceCcy    float64 `json:"last_ccy"`
	LastPriceBase   float64 `json:"last_base"`
	MarketValueCcy  float64 `json:"market_value_ccy"`
	MarketValueBase float64 `json:"market_value_base"`
	UnrealizedCcy   float64 `json:"unrealized_ccy"`
	UnrealizedBase  float64 `json:"unrealized_base"`

	BaseCurrency string `json:"base_currency"`
}

// lot is the transient accumulator for one (account, instrument) key.
// It is never persisted; positions are always recomputed from the ledger.
type lot struct {
	qty      float64
	costCcy  float64 // cost basis in transaction currency
	costBase float64 // cost basis in base currency
}

type lotKey struct{ accountID, instrumentID string }

func safeDiv(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a / b
}

// Positions rolls the tenant's full ledger into moving-average cost lots and
// values every open position at the cached latest price using today's FX.
//
// Rows are emitted only for strictly positive quantities, ordered by account
// name, then instrument name (falling back to symbol, then id).
func (s *System) Positions(ctx context.Context, scope Scope, baseOverride string) ([]Position, error) {
	base, err := s.BaseCurrency(ctx, scope, baseOverride)
	if err != nil {
		return nil, err
	}

	accounts, err := s.Accounts.Accounts(ctx, scope)
	if err != nil {
		return nil, err
	}
	if len(accounts) == 0 {
		return nil, nil
	}
	accByID := make(map[string]Account, len(accounts))
	for _, a := range accounts {
		accByID[a.ID] = a
	}

	acts, err := s.Ledger.Activities(ctx, scope)
	if err != nil {
		return nil, err
	}
	if len(acts) == 0 {
		return nil, nil
	}

	var instIDs []string
	seen := map[string]bool{}
	for _, a := range acts {
		if a.InstrumentID != "" && !seen[a.InstrumentID] {
			seen[a.InstrumentID] = true
			instIDs = append(instIDs, a.InstrumentID)
		}
	}
	instruments, err := s.Instruments.Instruments(ctx, scope, instIDs)
	if err != nil {
		return nil, err
	}

	cache := RateCache{}
	lots := map[lotKey]*lot{}
	var order []lotKey // first-touch order, for deterministic row building

	for _, a := range acts {
		if a.InstrumentID == "" || !a.Type.IsTrade() {
			continue
		}
		key := lotKey{a.AccountID, a.InstrumentID}
		l := lots[key]
		if l == nil {
			l = &lot{}
			lots[key] = l
			order = append(order, key)
		}

		tradeTotal := a.Quantity*a.UnitPrice + a.FeeAmount
		rate, ok, err := s.FX.Rate(ctx, a.CurrencyCode, base, a.Date, cache)
		if err != nil {
			return nil, err
		}
		if !ok {
			rate = 0 // unknown rate: the base leg records zero, visibly
		}
		tradeTotalBase := tradeTotal * rate

		switch a.Type {
		case Buy:
			l.qty += a.Quantity
			l.costCcy += tradeTotal
			l.costBase += tradeTotalBase
		case Sell:
			if l.qty <= 0 {
				// Oversold ledger. Let the quantity go negative with the
				// cost untouched; the data problem surfaces in the output
				// instead of aborting the whole valuation.
				l.qty -= a.Quantity
			} else {
				avgCcy := safeDiv(l.costCcy, l.qty)
				avgBase := safeDiv(l.costBase, l.qty)
				l.qty -= a.Quantity
				l.costCcy -= avgCcy * a.Quantity
				l.costBase -= avgBase * a.Quantity
			}
			if l.qty < positionEpsilon {
				l.qty = 0
				l.costCcy = 0
				l.costBase = 0
			}
		}
	}

	today := s.today()
	var rows []Position
	for _, key := range order {
		l := lots[key]
		if l.qty <= 0 {
			continue
		}

		row := Position{
			AccountID:    key.accountID,
			AccountName:  key.accountID,
			InstrumentID: key.instrumentID,
			Quantity:     l.qty,
			AvgCostCcy:   safeDiv(l.costCcy, l.qty),
			AvgCostBase:  safeDiv(l.costBase, l.qty),
			BaseCurrency: base,
		}
		if acc, ok := accByID[key.accountID]; ok {
			row.AccountName = acc.Name
		}

		inst, known := instruments[key.instrumentID]
		if !known {
			// The lot still exists and must be visible: zero valuation, the
			// sunk cost reported as unrealized loss.
			row.UnrealizedCcy = -l.costCcy
			row.UnrealizedBase = -l.costBase
			rows = append(rows, row)
			continue
		}

		row.Symbol = inst.Symbol
		row.Name = inst.Name
		row.AssetClass = inst.AssetClass
		row.AssetSub = inst.AssetSub
		row.Currency = strings.ToUpper(inst.CurrencyCode)

		// Current market value uses current FX, not historical FX.
		lastCcy := inst.LatestPrice
		fxToday, ok, err := s.FX.Rate(ctx, inst.CurrencyCode, base, today, cache)
		if err != nil {
			return nil, err
		}
		if !ok {
			fxToday = 0
		}
		row.LastPriceCcy = lastCcy
		row.LastPriceBase = lastCcy * fxToday
		row.MarketValueCcy = l.qty * lastCcy
		row.MarketValueBase = l.qty * row.LastPriceBase
		row.UnrealizedCcy = row.MarketValueCcy - l.costCcy
		row.UnrealizedBase = row.MarketValueBase - l.costBase
		rows = append(rows, row)
	}

	slices.SortStableFunc(rows, func(a, b Position) int {
		if c := strings.Compare(a.AccountName, b.AccountName); c != 0 {
			return c
		}
		if c := strings.Compare(a.sortName(), b.sortName()); c != 0 {
			return c
		}
		if c := strings.Compare(a.AccountID, b.AccountID); c != 0 {
			return c
		}
		return strings.Compare(a.InstrumentID, b.InstrumentID)
	})
	return rows, nil
}

// sortName is the display identity used for ordering: name, else symbol,
// else the raw instrument id.
func (p Position) sortName() string {
	if p.Name != "" {
		return p.Name
	}
	if p.Symbol != "" {
		return p.Symbol
	}
	return p.InstrumentID
}
