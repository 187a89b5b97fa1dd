package portivue

import (
	"time"

	"github.com/portivue/portivue/date"
)

// PriceSource tags where a price came from.
type PriceSource string

const (
	SourceFeed   PriceSource = "feed"   // market-data provider
	SourceManual PriceSource = "manual" // entered by the user
)

// Instrument is a tradable or trackable entity.
//
// A public instrument carries shared market data, one row per symbol across
// all tenants; a manual instrument is owned by exactly one tenant and its
// symbol (when present) is unique only within that owner.
type Instrument struct {
	ID           string      `json:"id"`
	Symbol       string      `json:"symbol,omitempty"` // empty for manual, non-listed instruments
	Name         string      `json:"name"`
	CurrencyCode string      `json:"currency_code"`
	Sector       string      `json:"sector,omitempty"`
	AssetClass   string      `json:"asset_class,omitempty"`
	AssetSub     string      `json:"asset_subclass,omitempty"`
	Country      string      `json:"country,omitempty"`
	Source       PriceSource `json:"source"`

	// Cached latest quote, written back by the refresh job.
	LatestPrice   float64   `json:"latest_price,omitempty"`
	LatestPriceAt time.Time `json:"latest_price_at,omitempty"`
}

// Public reports whether the instrument's market data is shared across
// tenants.
func (i Instrument) Public() bool { return i.Source == SourceFeed }

// PricePoint is an immutable per-day closing price for an instrument.
// At most one row exists per (instrument, day, tenant scope, source).
type PricePoint struct {
	InstrumentID string      `json:"instrument_id"`
	Date         date.Date   `json:"date"`
	Close        float64     `json:"close"`
	Source       PriceSource `json:"source"`
}

// FxRate is an immutable daily snapshot of a directional currency-pair rate,
// unique per (base, quote, day). Only fetched pairs are stored; missing pairs
// are synthesized by the resolver.
type FxRate struct {
	Base  string    `json:"base"`
	Quote string    `json:"quote"`
	Date  date.Date `json:"as_of_date"`
	Rate  float64   `json:"rate"`
}
