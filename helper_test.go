package portivue_test

import (
	"context"
	"time"

	"github.com/portivue/portivue"
	"github.com/portivue/portivue/date"
	"github.com/portivue/portivue/memstore"
)

// Fixtures shared by the valuation tests. Each test builds its own system so
// nothing leaks between cases.

var (
	ctx   = context.Background()
	alice = portivue.UserScope("alice")
	bob   = portivue.UserScope("bob")

	jan = func(d int) date.Date { return date.New(2025, time.January, d) }
)

// newTestSystem returns a system over a fresh in-memory store with a fixed
// clock (2025-01-31) so current-day valuations are deterministic.
func newTestSystem() (*portivue.System, *memstore.Store) {
	st := memstore.New()
	sys := portivue.NewSystem(st, st, st, st, st, st)
	sys.Today = func() date.Date { return jan(31) }
	return sys, st
}

// rate seeds one daily FX snapshot.
func rate(st *memstore.Store, base, quote string, on date.Date, r float64) {
	if err := st.RecordRate(ctx, portivue.FxRate{Base: base, Quote: quote, Date: on, Rate: r}); err != nil {
		panic(err)
	}
}

// price seeds one public closing price.
func price(st *memstore.Store, instID string, on date.Date, close float64) {
	err := st.RecordPrice(ctx, portivue.Scope{}, portivue.PricePoint{
		InstrumentID: instID,
		Date:         on,
		Close:        close,
		Source:       portivue.SourceFeed,
	})
	if err != nil {
		panic(err)
	}
}

// buy appends a Buy to the ledger.
func buy(st *memstore.Store, scope portivue.Scope, accID, instID string, on date.Date, qty, unitPrice float64, ccy string) {
	mustAppend(st, scope, portivue.Activity{
		Type: portivue.Buy, AccountID: accID, InstrumentID: instID,
		Date: on, Quantity: qty, UnitPrice: unitPrice, CurrencyCode: ccy,
	})
}

// sell appends a Sell to the ledger.
func sell(st *memstore.Store, scope portivue.Scope, accID, instID string, on date.Date, qty, unitPrice float64, ccy string) {
	mustAppend(st, scope, portivue.Activity{
		Type: portivue.Sell, AccountID: accID, InstrumentID: instID,
		Date: on, Quantity: qty, UnitPrice: unitPrice, CurrencyCode: ccy,
	})
}

func mustAppend(st *memstore.Store, scope portivue.Scope, a portivue.Activity) portivue.Activity {
	out, err := st.Append(ctx, scope, a)
	if err != nil {
		panic(err)
	}
	return out
}

// approx reports whether two floats agree within a cent-ish tolerance.
func approx(a, b float64) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d < 1e-6
}
