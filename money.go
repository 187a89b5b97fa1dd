package portivue

import (
	"fmt"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// DefaultBaseCurrency is the hardcoded last-resort reporting currency.
const DefaultBaseCurrency = "USD"

// ValidateCurrency checks that a code names a known ISO currency or a
// registered minor unit. Missing rates are a normal condition everywhere in
// the core; a malformed code is the one currency problem that is an error.
func ValidateCurrency(code string) error {
	c := strings.TrimSpace(code)
	if c == "" {
		return fmt.Errorf("empty currency code")
	}
	if _, ok := minorUnits[c]; ok {
		return nil
	}
	if money.GetCurrency(strings.ToUpper(c)) == nil {
		return fmt.Errorf("unknown currency code %q", code)
	}
	return nil
}

// FormatAmount renders a float amount in a currency's conventional notation,
// e.g. FormatAmount(1234.5, "EUR") -> "€1,234.50". Unknown codes fall back
// to a plain two-decimal rendering.
func FormatAmount(amount float64, code string) string {
	cur := money.GetCurrency(strings.ToUpper(code))
	if cur == nil {
		return fmt.Sprintf("%.2f %s", amount, code)
	}
	// Shift to minor units through decimal to avoid float truncation on the
	// way to the int64 the formatter wants.
	minor := decimal.NewFromFloat(amount).Shift(int32(cur.Fraction)).Round(0)
	return cur.Formatter().Format(minor.IntPart())
}

// ParseAmount parses a decimal string into a float64, rejecting anything
// lossy enough to matter (NaN, infinities, non-numbers). The exact decimal
// representation is kept during parsing; only the final value is float.
func ParseAmount(s string) (float64, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return d.InexactFloat64(), nil
}
