package portivue

import (
	"fmt"

	"github.com/portivue/portivue/date"
)

// ActivityType classifies a ledger event.
type ActivityType string

const (
	Buy      ActivityType = "Buy"
	Sell     ActivityType = "Sell"
	Dividend ActivityType = "Dividend"
	Interest ActivityType = "Interest"
	Fee      ActivityType = "Fee"
)

// ParseActivityType parses a string into an ActivityType.
func ParseActivityType(s string) (ActivityType, error) {
	switch t := ActivityType(s); t {
	case Buy, Sell, Dividend, Interest, Fee:
		return t, nil
	default:
		return "", fmt.Errorf("unknown activity type: %q", s)
	}
}

// IsTrade reports whether the type moves an instrument position.
// Dividend, Interest and Fee are pure cash events.
func (t ActivityType) IsTrade() bool { return t == Buy || t == Sell }

// Activity is an immutable economic event in a tenant's ledger.
//
// Trades (Buy/Sell) carry a quantity and a per-unit price; for the cash-only
// types UnitPrice holds the total cash amount. Positions are never stored:
// they are recomputed from the full ledger, so removing an activity can never
// leave dangling lot state behind.
type Activity struct {
	ID           string       `json:"id"`
	Type         ActivityType `json:"type"`
	AccountID    string       `json:"account_id"`
	InstrumentID string       `json:"instrument_id,omitempty"` // empty for pure-cash events
	BrokerID     string       `json:"broker_id,omitempty"`
	Date         date.Date    `json:"date"`
	Quantity     float64      `json:"quantity,omitempty"`
	UnitPrice    float64      `json:"unit_price,omitempty"`
	CurrencyCode string       `json:"currency_code"` // currency of the transaction, not of the account
	FeeAmount    float64      `json:"fee,omitempty"` // same currency as the transaction
	Note         string       `json:"note,omitempty"`

	// Informational tax fields, not folded into lot cost basis.
	WithholdingTax  float64 `json:"withholding_tax,omitempty"`
	CapitalGainsTax float64 `json:"capital_gains_tax,omitempty"`
	TransactionTax  float64 `json:"transaction_tax,omitempty"`
	StampDuty       float64 `json:"stamp_duty,omitempty"`
}

// CashAmount returns the gross cash amount the activity moves, excluding
// fees, in the activity's currency. For trades that is quantity x price; for
// cash-only types it is the recorded amount (a quantity, when present, acts
// as a multiplier, e.g. per-share dividends).
func (a Activity) CashAmount() float64 {
	if a.Type.IsTrade() {
		return a.Quantity * a.UnitPrice
	}
	if a.Quantity != 0 {
		return a.Quantity * a.UnitPrice
	}
	return a.UnitPrice
}

// Validate checks the activity for structural correctness.
func (a Activity) Validate() error {
	if _, err := ParseActivityType(string(a.Type)); err != nil {
		return err
	}
	if a.AccountID == "" {
		return fmt.Errorf("activity requires an account")
	}
	if a.Date.IsZero() {
		return fmt.Errorf("activity requires a date")
	}
	if err := ValidateCurrency(a.CurrencyCode); err != nil {
		return err
	}
	if a.Type.IsTrade() {
		if a.InstrumentID == "" {
			return fmt.Errorf("%s requires an instrument", a.Type)
		}
		if a.Quantity <= 0 {
			return fmt.Errorf("%s requires a positive quantity", a.Type)
		}
		if a.UnitPrice < 0 {
			return fmt.Errorf("%s requires a non-negative unit price", a.Type)
		}
	}
	return nil
}
