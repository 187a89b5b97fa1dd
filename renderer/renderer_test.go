package renderer

import (
	"strings"
	"testing"
	"time"

	"github.com/portivue/portivue"
	"github.com/portivue/portivue/date"
)

func TestRenderPositions(t *testing.T) {
	v := NewPositionsView([]portivue.Position{
		{
			AccountName: "Broker", Name: "Acme Corp", Currency: "USD",
			Quantity: 15, AvgCostCcy: 150, LastPriceCcy: 180,
			MarketValueCcy: 2700, MarketValueBase: 2700, UnrealizedBase: 450,
			BaseCurrency: "USD",
		},
	})
	out := RenderPositions(v)

	for _, want := range []string{
		"# Positions",
		"| Broker | Acme Corp | 15 |",
		"$2,700.00",
		"Total (USD): $2,700.00",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "error") {
		t.Errorf("template error leaked into output:\n%s", out)
	}
}

func TestRenderPositionsEmpty(t *testing.T) {
	out := RenderPositions(NewPositionsView(nil))
	if !strings.Contains(out, "No open positions.") {
		t.Errorf("output = %q, want the empty notice", out)
	}
}

func TestRenderBalances(t *testing.T) {
	asOf := date.New(2025, time.January, 31)
	v := NewBalancesView([]portivue.Balance{
		{
			AccountName: "Checking", AccountType: portivue.Current, AccountCurrency: "USD",
			Native: 1000, Base: 1000, Rate: 1, RateKnown: true,
			AsOf: asOf, BaseCurrency: "USD",
		},
		{
			AccountName: "Yen", AccountType: portivue.Savings, AccountCurrency: "JPY",
			Native: 50000, Base: 0, RateKnown: false,
			AsOf: asOf, BaseCurrency: "USD",
		},
	})
	out := RenderBalances(v)

	if !strings.Contains(out, "as of 2025-01-31") {
		t.Errorf("output missing the as-of date:\n%s", out)
	}
	if !strings.Contains(out, "| Yen | Savings") || !strings.Contains(out, "| — | ? |") {
		t.Errorf("unknown-rate row not dashed out:\n%s", out)
	}
	if !strings.Contains(out, "No FX rate was available for Yen") {
		t.Errorf("missing-rate note absent:\n%s", out)
	}
}

func TestRenderHistory(t *testing.T) {
	v := NewHistoryView([]portivue.HistoryPoint{
		{Date: date.New(2025, time.January, 2), MarketValue: 1000, CashBalance: 5000, NetWorth: 6000},
		{Date: date.New(2025, time.January, 3), MarketValue: 1100, CashBalance: 5000, NetWorth: 6100},
	}, "USD")
	out := RenderHistory(v)

	if !strings.Contains(out, "| 2025-01-02 | $1,000.00 | $5,000.00 | $6,000.00 |") {
		t.Errorf("first row malformed:\n%s", out)
	}
	if strings.Count(out, "\n| 2025-01-") != 2 {
		t.Errorf("want 2 data rows:\n%s", out)
	}
}

func TestRenderActivities(t *testing.T) {
	v := NewActivitiesView([]portivue.Activity{
		{
			Type: portivue.Buy, AccountID: "acc-1", InstrumentID: "ins-1",
			Date: date.New(2025, time.January, 2), Quantity: 10, UnitPrice: 100,
			CurrencyCode: "USD", Note: "opening",
		},
		{
			Type: portivue.Dividend, AccountID: "acc-1", InstrumentID: "ins-1",
			Date: date.New(2025, time.January, 5), UnitPrice: 75, CurrencyCode: "USD",
		},
	}, map[string]string{"acc-1": "Broker"})
	out := RenderActivities(v)

	if !strings.Contains(out, "| Buy | Broker | ins-1 | 10 × $100.00 | opening |") {
		t.Errorf("trade row malformed:\n%s", out)
	}
	if !strings.Contains(out, "| Dividend | Broker | ins-1 | $75.00 |") {
		t.Errorf("cash row malformed:\n%s", out)
	}
}
