package portivue

import "fmt"

// AccountType categorizes a money container.
type AccountType string

const (
	Current      AccountType = "Current"
	Savings      AccountType = "Savings"
	FixedDeposit AccountType = "Fixed Deposit"
	Investment   AccountType = "Investment"
	Broker       AccountType = "Broker"
	Other        AccountType = "Other"
)

// ParseAccountType parses a string into an AccountType.
func ParseAccountType(s string) (AccountType, error) {
	switch t := AccountType(s); t {
	case Current, Savings, FixedDeposit, Investment, Broker, Other:
		return t, nil
	default:
		return "", fmt.Errorf("unknown account type: %q", s)
	}
}

// Account is a named money container with one fixed currency.
//
// Balance is a denormalized running total maintained by the ledger-write
// path (balance-setting and transfers included), not derived solely from
// activities. The valuation core only reads it.
type Account struct {
	ID           string      `json:"id"`
	Name         string      `json:"name"`
	CurrencyCode string      `json:"currency_code"`
	Type         AccountType `json:"type"`
	Balance      float64     `json:"balance"`
}
