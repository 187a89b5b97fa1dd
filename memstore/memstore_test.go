package memstore_test

import (
	"context"
	"testing"
	"time"

	"github.com/portivue/portivue"
	"github.com/portivue/portivue/date"
	"github.com/portivue/portivue/memstore"
)

var (
	ctx   = context.Background()
	alice = portivue.UserScope("alice")
	bob   = portivue.UserScope("bob")
)

func day(d int) date.Date { return date.New(2025, time.March, d) }

func TestActivitiesOrdering(t *testing.T) {
	st := memstore.New()
	append3 := func(on date.Date, note string) {
		_, err := st.Append(ctx, alice, portivue.Activity{
			Type: portivue.Fee, AccountID: "a1", Date: on, UnitPrice: 1,
			CurrencyCode: "USD", Note: note,
		})
		if err != nil {
			t.Fatalf("Append() error = %v", err)
		}
	}
	append3(day(5), "later")
	append3(day(1), "first")
	append3(day(5), "later-second")

	acts, err := st.Activities(ctx, alice)
	if err != nil {
		t.Fatalf("Activities() error = %v", err)
	}
	var got []string
	for _, a := range acts {
		got = append(got, a.Note)
	}
	// Date ascending, same-day rows in insertion order.
	want := []string{"first", "later", "later-second"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("ordering = %v, want %v", got, want)
		}
	}
}

func TestAppendAssignsIDAndScopes(t *testing.T) {
	st := memstore.New()
	a, err := st.Append(ctx, alice, portivue.Activity{
		Type: portivue.Interest, AccountID: "a1", Date: day(1),
		UnitPrice: 2.5, CurrencyCode: "USD",
	})
	if err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if a.ID == "" {
		t.Error("Append() left the ID empty")
	}

	other, err := st.Activities(ctx, bob)
	if err != nil {
		t.Fatalf("Activities() error = %v", err)
	}
	if len(other) != 0 {
		t.Errorf("bob sees %d of alice's activities, want 0", len(other))
	}
}

func TestAppendRejectsInvalid(t *testing.T) {
	st := memstore.New()
	_, err := st.Append(ctx, alice, portivue.Activity{Type: "bogus", AccountID: "a1", Date: day(1)})
	if err == nil {
		t.Error("Append() accepted an invalid activity")
	}
}

func TestRemove(t *testing.T) {
	st := memstore.New()
	a, _ := st.Append(ctx, alice, portivue.Activity{
		Type: portivue.Fee, AccountID: "a1", Date: day(1), UnitPrice: 1, CurrencyCode: "USD",
	})
	if err := st.Remove(ctx, alice, a.ID); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if err := st.Remove(ctx, alice, a.ID); err == nil {
		t.Error("Remove() of a deleted id succeeded, want error")
	}
}

func TestManualInstrumentVisibility(t *testing.T) {
	st := memstore.New()
	pub := st.AddInstrument(portivue.Instrument{Symbol: "PUB", CurrencyCode: "USD", Source: portivue.SourceFeed})
	own := st.AddManualInstrument(alice, portivue.Instrument{Symbol: "MINE", CurrencyCode: "USD"})

	got, err := st.Instruments(ctx, bob, []string{pub.ID, own.ID})
	if err != nil {
		t.Fatalf("Instruments() error = %v", err)
	}
	if _, ok := got[pub.ID]; !ok {
		t.Error("public instrument hidden from bob")
	}
	if _, ok := got[own.ID]; ok {
		t.Error("alice's manual instrument visible to bob")
	}

	mine, err := st.Instruments(ctx, alice, []string{own.ID})
	if err != nil {
		t.Fatalf("Instruments() error = %v", err)
	}
	if _, ok := mine[own.ID]; !ok {
		t.Error("manual instrument hidden from its owner")
	}
}

func TestSetLatestPrice(t *testing.T) {
	st := memstore.New()
	inst := st.AddInstrument(portivue.Instrument{Symbol: "ACME", CurrencyCode: "USD", Source: portivue.SourceFeed})
	at := time.Date(2025, time.March, 3, 16, 0, 0, 0, time.UTC)
	if err := st.SetLatestPrice(ctx, inst.ID, 42.5, at); err != nil {
		t.Fatalf("SetLatestPrice() error = %v", err)
	}
	got, _ := st.Instruments(ctx, alice, []string{inst.ID})
	if got[inst.ID].LatestPrice != 42.5 || !got[inst.ID].LatestPriceAt.Equal(at) {
		t.Errorf("instrument = %+v, want cached 42.5 at %v", got[inst.ID], at)
	}
	if err := st.SetLatestPrice(ctx, "nope", 1, at); err == nil {
		t.Error("SetLatestPrice() on unknown id succeeded, want error")
	}
}

func TestPriceHistoryUpsertAndRange(t *testing.T) {
	st := memstore.New()
	put := func(on date.Date, close float64) {
		err := st.RecordPrice(ctx, portivue.Scope{}, portivue.PricePoint{
			InstrumentID: "ins-1", Date: on, Close: close, Source: portivue.SourceFeed,
		})
		if err != nil {
			t.Fatalf("RecordPrice() error = %v", err)
		}
	}
	put(day(2), 10)
	put(day(1), 9)
	put(day(2), 11) // overwrite, not a duplicate
	put(day(9), 15) // outside the queried range

	got, err := st.History(ctx, alice, []string{"ins-1"}, date.Range{From: day(1), To: day(5)})
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("History() returned %d rows, want 2", len(got))
	}
	if got[0].Date != day(1) || got[0].Close != 9 {
		t.Errorf("row 0 = %+v, want day 1 at 9", got[0])
	}
	if got[1].Date != day(2) || got[1].Close != 11 {
		t.Errorf("row 1 = %+v, want the overwritten close 11", got[1])
	}
}

func TestManualPriceScoping(t *testing.T) {
	st := memstore.New()
	err := st.RecordPrice(ctx, alice, portivue.PricePoint{
		InstrumentID: "ins-1", Date: day(1), Close: 5, Source: portivue.SourceManual,
	})
	if err != nil {
		t.Fatalf("RecordPrice() error = %v", err)
	}
	r := date.Range{From: day(1), To: day(1)}
	if got, _ := st.History(ctx, bob, []string{"ins-1"}, r); len(got) != 0 {
		t.Errorf("bob sees alice's manual price: %+v", got)
	}
	if got, _ := st.History(ctx, alice, []string{"ins-1"}, r); len(got) != 1 {
		t.Errorf("alice's manual price missing: %+v", got)
	}
}

func TestRateAsOf(t *testing.T) {
	st := memstore.New()
	put := func(on date.Date, r float64) {
		if err := st.RecordRate(ctx, portivue.FxRate{Base: "EUR", Quote: "USD", Date: on, Rate: r}); err != nil {
			t.Fatalf("RecordRate() error = %v", err)
		}
	}
	put(day(10), 1.10)
	put(day(5), 1.05)
	put(day(5), 1.06) // same-day overwrite

	tests := []struct {
		on   date.Date
		want float64
		ok   bool
	}{
		{day(4), 0, false},
		{day(5), 1.06, true},
		{day(7), 1.06, true},
		{day(10), 1.10, true},
		{day(20), 1.10, true},
	}
	for _, tc := range tests {
		got, ok, err := st.RateAsOf(ctx, "EUR", "USD", tc.on)
		if err != nil {
			t.Fatalf("RateAsOf(%v) error = %v", tc.on, err)
		}
		if got != tc.want || ok != tc.ok {
			t.Errorf("RateAsOf(%v) = (%v, %v), want (%v, %v)", tc.on, got, ok, tc.want, tc.ok)
		}
	}
}

func TestBaseCurrencySettings(t *testing.T) {
	st := memstore.New()
	if _, ok, _ := st.BaseCurrency(ctx, alice); ok {
		t.Error("BaseCurrency() reported a value on an empty store")
	}
	st.SetBaseCurrency(alice, "EUR")
	cur, ok, _ := st.BaseCurrency(ctx, alice)
	if !ok || cur != "EUR" {
		t.Errorf("BaseCurrency() = (%q, %v), want (EUR, true)", cur, ok)
	}
	if _, ok, _ := st.BaseCurrency(ctx, bob); ok {
		t.Error("alice's preference leaked to bob")
	}

	if _, ok, _ := st.FirstCurrency(ctx, alice); ok {
		t.Error("FirstCurrency() reported a value with no currencies defined")
	}
	st.DefineCurrencies("CHF", "EUR", "USD")
	first, ok, _ := st.FirstCurrency(ctx, alice)
	if !ok || first != "CHF" {
		t.Errorf("FirstCurrency() = (%q, %v), want (CHF, true)", first, ok)
	}
}
