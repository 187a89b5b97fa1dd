package portivue

import (
	"context"
	"math"

	"github.com/portivue/portivue/date"
)

// HistoryPoint is one day of the reconstructed net-worth series, in the
// reporting currency, rounded to 2 decimal places.
type HistoryPoint struct {
	Date        date.Date `json:"date"`
	MarketValue float64   `json:"market_value"`
	CashBalance float64   `json:"cash_balance"`
	NetWorth    float64   `json:"net_worth"`
}

const (
	// holdingEpsilon filters closed positions out of the simulation.
	holdingEpsilon = 1e-9
	// cashEpsilon skips negligible per-currency cash dust.
	cashEpsilon = 0.01
	// balanceEpsilon skips negligible account balances in the ground truth.
	balanceEpsilon = 0.001
	// anchorEpsilon decides when the ground-truth investment total is
	// indistinguishable from zero.
	anchorEpsilon = 1e-9
	// scaleGuard is the magnitude under which the simulated final market
	// value is too close to zero to divide by: scaling is skipped entirely
	// rather than producing an extreme multiplier.
	scaleGuard = 1.0
)

func round2(x float64) float64 { return math.Round(x*100) / 100 }

// History replays the tenant's full ledger and price history day by day from
// the first activity through `to`, snapshots {market value, cash, net worth}
// from `from` onward, and calibrates the series against independently
// computed current totals.
//
// The simulation drifts over long histories with incomplete early price and
// FX data, so the closing calibration anchors the curve's level to known
// figures while keeping its shape: every day's market value is scaled by
// actual/simulated final value, and every day's cash is shifted by the
// constant final-day difference. This is a documented heuristic, not an
// exact reconstruction.
func (s *System) History(ctx context.Context, scope Scope, from, to date.Date, baseOverride string) ([]HistoryPoint, error) {
	if to.IsZero() {
		to = s.today()
	}
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

	// Ground truth for the calibration step. Cash comes from the actual
	// cached account balances converted at end-date FX; investments from the
	// lot engine's current market value. Note the fallback here is 1.0, not
	// 0: a level anchor is better served by an unconverted amount than by
	// dropping the account entirely.
	cache := RateCache{}
	var actualCash float64
	for _, acc := range accounts {
		if math.Abs(acc.Balance) <= balanceEpsilon {
			continue
		}
		rate, ok, err := s.FX.Rate(ctx, acc.CurrencyCode, base, to, cache)
		if err != nil {
			return nil, err
		}
		if !ok {
			rate = 1.0
		}
		actualCash += acc.Balance * rate
	}

	positions, err := s.Positions(ctx, scope, baseOverride)
	if err != nil {
		return nil, err
	}
	var actualInv float64
	for _, p := range positions {
		actualInv += p.MarketValueBase
	}

	// The full ledger, not a window: state at `from` depends on everything
	// before it.
	acts, err := s.Ledger.Activities(ctx, scope)
	if err != nil {
		return nil, err
	}
	n := 0
	for _, a := range acts {
		if !a.Date.After(to) {
			acts[n] = a
			n++
		}
	}
	acts = acts[:n]
	if len(acts) == 0 {
		return nil, nil
	}
	minDate := acts[0].Date

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

	prices, err := s.Prices.History(ctx, scope, instIDs, date.Range{From: minDate, To: to})
	if err != nil {
		return nil, err
	}
	pricesByDay := map[date.Date][]PricePoint{}
	for _, p := range prices {
		pricesByDay[p.Date] = append(pricesByDay[p.Date], p)
	}
	actsByDay := map[date.Date][]Activity{}
	for _, a := range acts {
		actsByDay[a.Date] = append(actsByDay[a.Date], a)
	}

	// Simulation state.
	holdings := map[string]float64{} // instrument id -> quantity
	cashByCcy := map[string]float64{}
	lastPrice := map[string]float64{} // carried forward across silent days

	var series []HistoryPoint
	for day := range (date.Range{From: minDate, To: to}).Days() {
		for _, p := range pricesByDay[day] {
			lastPrice[p.InstrumentID] = p.Close
		}

		for _, a := range actsByDay[day] {
			ccy := a.CurrencyCode
			amount := a.CashAmount()
			switch a.Type {
			case Buy:
				if a.InstrumentID != "" {
					holdings[a.InstrumentID] += a.Quantity
				}
				cashByCcy[ccy] -= amount + a.FeeAmount
			case Sell:
				if a.InstrumentID != "" {
					holdings[a.InstrumentID] -= a.Quantity
					if holdings[a.InstrumentID] < 0 {
						holdings[a.InstrumentID] = 0
					}
				}
				cashByCcy[ccy] += amount - a.FeeAmount
			case Dividend, Interest:
				cashByCcy[ccy] += amount
			case Fee:
				cashByCcy[ccy] -= amount
			}
		}

		if day.Before(from) {
			continue
		}

		var mv float64
		for instID, qty := range holdings {
			if qty <= holdingEpsilon {
				continue
			}
			price, known := lastPrice[instID]
			if !known || price == 0 {
				continue // no price seen yet, the position is invisible today
			}
			ccy := DefaultBaseCurrency
			if inst, ok := instruments[instID]; ok && inst.CurrencyCode != "" {
				ccy = inst.CurrencyCode
			}
			fx, ok, err := s.FX.Rate(ctx, ccy, base, day, cache)
			if err != nil {
				return nil, err
			}
			if !ok {
				fx = 1.0
			}
			mv += qty * price * fx
		}

		var cash float64
		for ccy, amount := range cashByCcy {
			if math.Abs(amount) < cashEpsilon {
				continue
			}
			fx, ok, err := s.FX.Rate(ctx, ccy, base, day, cache)
			if err != nil {
				return nil, err
			}
			if !ok {
				fx = 1.0
			}
			cash += amount * fx
		}

		series = append(series, HistoryPoint{
			Date:        day,
			MarketValue: round2(mv),
			CashBalance: cash, // raw until the calibration shift
		})
	}

	if len(series) == 0 {
		return nil, nil
	}

	last := series[len(series)-1]
	simInvEnd := last.MarketValue
	cashShift := actualCash - last.CashBalance

	// A vanished anchor with a materially nonzero simulation means scaling
	// would flatten the whole curve to zero; an empty series is more honest
	// than a garbage one.
	if math.Abs(actualInv) <= anchorEpsilon && math.Abs(simInvEnd) > scaleGuard {
		return nil, nil
	}

	invScale := 1.0
	if math.Abs(simInvEnd) > scaleGuard {
		invScale = actualInv / simInvEnd
	}

	for i := range series {
		p := &series[i]
		p.MarketValue = round2(p.MarketValue * invScale) // level fix, shape kept
		p.CashBalance = round2(p.CashBalance + cashShift)
		p.NetWorth = round2(p.MarketValue + p.CashBalance)
	}
	return series, nil
}
