package portivue

import (
	"context"
	"strings"

	"github.com/portivue/portivue/date"
)

// MinorUnit declares a currency code to be a fixed fraction of a major
// currency, e.g. pence: 1 GBP = 100 GBp. Conversions involving a minor unit
// are derived from the major currency's rates and never hit the rate table
// under the minor code.
type MinorUnit struct {
	Major string
	Ratio float64 // minor units per major unit
}

// minorUnits is the built-in registry. GBp is the ubiquitous case: London
// listings quote in pence while GBP is the traded currency.
var minorUnits = map[string]MinorUnit{
	"GBp": {Major: "GBP", Ratio: 100},
}

// RateCache memoizes resolver lookups within one computation pass. It is
// caller-scoped: create one per request and discard it, never share it
// across requests or tenants. Misses are memoized too.
type RateCache map[rateKey]rateHit

type rateKey struct {
	base, quote string
	on          date.Date
}

type rateHit struct {
	rate float64
	ok   bool
}

// Resolver answers date-scoped currency-pair lookups on top of a RateStore.
// It is a pure read path with no side effects.
type Resolver struct {
	rates  RateStore
	minors map[string]MinorUnit
}

// NewResolver returns a resolver over the given store with the built-in
// minor-unit registry.
func NewResolver(rates RateStore) *Resolver {
	minors := make(map[string]MinorUnit, len(minorUnits))
	for code, mu := range minorUnits {
		minors[code] = mu
	}
	return &Resolver{rates: rates, minors: minors}
}

// RegisterMinorUnit declares an additional minor-unit code, e.g. ZAc for
// South African cents. The code is matched exactly, preserving its case.
func (r *Resolver) RegisterMinorUnit(code, major string, ratio float64) {
	r.minors[code] = MinorUnit{Major: strings.ToUpper(major), Ratio: ratio}
}

// canon normalizes a currency code: registered minor-unit tokens keep their
// exact spelling, everything else is upper-cased.
func (r *Resolver) canon(code string) string {
	c := strings.TrimSpace(code)
	if _, ok := r.minors[c]; ok {
		return c
	}
	return strings.ToUpper(c)
}

func (r *Resolver) validate(code string) error {
	if _, ok := r.minors[code]; ok {
		return nil
	}
	return ValidateCurrency(code)
}

// Rate returns the conversion rate base -> quote as of (<=) on.
//
// ok is false when no stored rate qualifies; callers must treat that as
// "rate unknown", not as zero. The only error condition is a malformed
// currency code. cache may be nil.
func (r *Resolver) Rate(ctx context.Context, base, quote string, on date.Date, cache RateCache) (rate float64, ok bool, err error) {
	b, q := r.canon(base), r.canon(quote)
	if err := r.validate(b); err != nil {
		return 0, false, err
	}
	if err := r.validate(q); err != nil {
		return 0, false, err
	}

	if b == q {
		return 1.0, true, nil
	}

	// Minor-unit transforms come before any store lookup.
	if mb, isMinor := r.minors[b]; isMinor {
		if mb.Major == q {
			return 1.0 / mb.Ratio, true, nil
		}
		// minor -> X = (major -> X) / ratio; a minor quote pivots through
		// both majors via the recursion.
		rate, ok, err = r.Rate(ctx, mb.Major, q, on, cache)
		if err != nil || !ok {
			return 0, false, err
		}
		return rate / mb.Ratio, true, nil
	}
	if mq, isMinor := r.minors[q]; isMinor {
		if mq.Major == b {
			return mq.Ratio, true, nil
		}
		// X -> minor = (X -> major) * ratio
		rate, ok, err = r.Rate(ctx, b, mq.Major, on, cache)
		if err != nil || !ok {
			return 0, false, err
		}
		return rate * mq.Ratio, true, nil
	}

	key := rateKey{base: b, quote: q, on: on}
	if cache != nil {
		if hit, found := cache[key]; found {
			return hit.rate, hit.ok, nil
		}
	}

	rate, ok, err = r.rates.RateAsOf(ctx, b, q, on)
	if err != nil {
		return 0, false, err
	}
	if cache != nil {
		cache[key] = rateHit{rate: rate, ok: ok}
	}
	return rate, ok, nil
}
