package refresh_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/portivue/portivue"
	"github.com/portivue/portivue/date"
	"github.com/portivue/portivue/frankfurter"
	"github.com/portivue/portivue/memstore"
	"github.com/portivue/portivue/refresh"
)

var ctx = context.Background()

type fakeQuotes struct {
	prices map[string]float64
	calls  int
	delay  time.Duration
}

func (f *fakeQuotes) Latest(_ context.Context, ticker string) (float64, time.Time, error) {
	f.calls++
	time.Sleep(f.delay)
	px, ok := f.prices[ticker]
	if !ok {
		return 0, time.Time{}, errors.New("no quote")
	}
	return px, time.Date(2025, time.June, 6, 16, 0, 0, 0, time.UTC), nil
}

type fakeFeed struct{ snap frankfurter.Snapshot }

func (f fakeFeed) Latest(context.Context) (frankfurter.Snapshot, error) { return f.snap, nil }

func TestPrices(t *testing.T) {
	st := memstore.New()
	a := st.AddInstrument(portivue.Instrument{Symbol: "AAA.US", CurrencyCode: "USD", Source: portivue.SourceFeed})
	b := st.AddInstrument(portivue.Instrument{Symbol: "BBB.US", CurrencyCode: "USD", Source: portivue.SourceFeed})
	st.AddInstrument(portivue.Instrument{CurrencyCode: "USD", Source: portivue.SourceFeed}) // no symbol
	st.AddManualInstrument(portivue.UserScope("alice"), portivue.Instrument{Symbol: "MINE", CurrencyCode: "USD"})

	quotes := &fakeQuotes{prices: map[string]float64{"AAA.US": 10.5}}
	res, err := refresh.Prices(ctx, st, quotes, refresh.Options{})
	if err != nil {
		t.Fatalf("Prices() error = %v", err)
	}

	if res.Total != 3 || res.Updated != 1 || res.Skipped != 2 {
		t.Errorf("result = %+v, want total 3, updated 1, skipped 2", res)
	}
	if res.Partial {
		t.Error("Partial = true, want a complete run")
	}
	if len(res.Errors) != 1 {
		t.Errorf("Errors = %v, want the failed BBB.US quote", res.Errors)
	}

	got, _ := st.Instruments(ctx, portivue.UserScope("alice"), []string{a.ID, b.ID})
	if got[a.ID].LatestPrice != 10.5 {
		t.Errorf("cached price = %v, want 10.5", got[a.ID].LatestPrice)
	}
	if got[b.ID].LatestPrice != 0 {
		t.Errorf("failed quote wrote a price: %v", got[b.ID].LatestPrice)
	}
}

func TestPricesLimit(t *testing.T) {
	st := memstore.New()
	for range 5 {
		st.AddInstrument(portivue.Instrument{Symbol: "X.US", CurrencyCode: "USD", Source: portivue.SourceFeed})
	}
	quotes := &fakeQuotes{prices: map[string]float64{"X.US": 1}}
	res, err := refresh.Prices(ctx, st, quotes, refresh.Options{Limit: 2})
	if err != nil {
		t.Fatalf("Prices() error = %v", err)
	}
	if res.Total != 2 || res.Processed != 2 || quotes.calls != 2 {
		t.Errorf("result = %+v with %d calls, want the limit of 2 honored", res, quotes.calls)
	}
}

func TestPricesTimeBudget(t *testing.T) {
	st := memstore.New()
	for range 10 {
		st.AddInstrument(portivue.Instrument{Symbol: "X.US", CurrencyCode: "USD", Source: portivue.SourceFeed})
	}
	quotes := &fakeQuotes{prices: map[string]float64{"X.US": 1}, delay: 30 * time.Millisecond}
	res, err := refresh.Prices(ctx, st, quotes, refresh.Options{Budget: 50 * time.Millisecond})
	if err != nil {
		t.Fatalf("Prices() error = %v", err)
	}
	if !res.Partial {
		t.Errorf("result = %+v, want a partial run under a 50ms budget", res)
	}
	if res.Processed >= res.Total {
		t.Errorf("Processed = %d of %d, want an early stop", res.Processed, res.Total)
	}
}

func TestRates(t *testing.T) {
	st := memstore.New()
	feed := fakeFeed{snap: frankfurter.Snapshot{
		Base:  "EUR",
		Date:  date.New(2025, time.June, 6),
		Rates: map[string]float64{"USD": 1.25, "GBP": 0.80},
	}}

	res, err := refresh.Rates(ctx, st, feed, "USD")
	if err != nil {
		t.Fatalf("Rates() error = %v", err)
	}
	// 2 rows against EUR plus 2 against USD (GBP and EUR).
	if res.Updated != 4 {
		t.Errorf("Updated = %d, want 4", res.Updated)
	}

	approx := func(a, b float64) bool { d := a - b; return d < 1e-9 && d > -1e-9 }
	on := date.New(2025, time.June, 6)
	rate, ok, err := st.RateAsOf(ctx, "USD", "EUR", on)
	if err != nil || !ok || !approx(rate, 0.8) {
		t.Errorf("USD/EUR = (%v, %v, %v), want 0.8", rate, ok, err)
	}
	rate, ok, err = st.RateAsOf(ctx, "EUR", "USD", on)
	if err != nil || !ok || !approx(rate, 1.25) {
		t.Errorf("EUR/USD = (%v, %v, %v), want 1.25", rate, ok, err)
	}
}

func TestTracker(t *testing.T) {
	tr := refresh.NewTracker()
	if _, ok := tr.Last("prices"); ok {
		t.Error("Last() on a fresh tracker reported a run")
	}

	res, err := tr.Run("prices", func() (refresh.Result, error) {
		return refresh.Result{Updated: 3}, nil
	})
	if err != nil || res.Updated != 3 {
		t.Fatalf("Run() = (%+v, %v)", res, err)
	}

	s, ok := tr.Last("prices")
	if !ok || s.Result.Updated != 3 || s.Err != "" {
		t.Errorf("Last() = (%+v, %v)", s, ok)
	}
	if s.FinishedAt.Before(s.StartedAt) {
		t.Error("FinishedAt before StartedAt")
	}

	tr.Run("prices", func() (refresh.Result, error) {
		return refresh.Result{}, errors.New("feed down")
	})
	s, _ = tr.Last("prices")
	if s.Err != "feed down" {
		t.Errorf("Err = %q, want the failure recorded", s.Err)
	}
}
