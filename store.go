package portivue

import (
	"context"
	"time"

	"github.com/portivue/portivue/date"
)

// The valuation core is a pure read path over a handful of collaborator
// stores. Implementations must apply the tenant Scope uniformly: a ByUser
// scope sees only that user's rows, a ByOrg scope the organization's, and
// public instrument/price data is visible to every scope.
//
// Each call is a point-in-time snapshot; concurrent ledger writes during a
// long computation are not reflected atomically.

// LedgerStore provides ordered retrieval of a tenant's activities.
type LedgerStore interface {
	// Activities returns the tenant's full ledger, sorted by date ascending
	// with insertion order as tie-break.
	Activities(ctx context.Context, scope Scope) ([]Activity, error)
	// Append records a new activity and returns it with its assigned ID.
	Append(ctx context.Context, scope Scope, a Activity) (Activity, error)
}

// AccountStore provides a tenant's money containers.
type AccountStore interface {
	Accounts(ctx context.Context, scope Scope) ([]Account, error)
}

// InstrumentStore provides the instrument catalog visible to a tenant:
// public instruments plus the tenant's own manual ones.
type InstrumentStore interface {
	// Instruments resolves a set of instrument IDs. Unknown IDs are simply
	// absent from the result, never an error.
	Instruments(ctx context.Context, scope Scope, ids []string) (map[string]Instrument, error)
	// SetLatestPrice writes back the cached latest quote for an instrument.
	SetLatestPrice(ctx context.Context, id string, price float64, at time.Time) error
}

// PriceStore provides historical closing prices.
type PriceStore interface {
	// History returns all price points for the given instruments within the
	// range, date ascending. Public rows and rows scoped to the tenant both
	// qualify.
	History(ctx context.Context, scope Scope, instrumentIDs []string, r date.Range) ([]PricePoint, error)
	// RecordPrice stores one closing price, upserting on
	// (instrument, day, tenant scope, source).
	RecordPrice(ctx context.Context, scope Scope, p PricePoint) error
}

// RateStore provides daily FX rate snapshots for the resolver.
type RateStore interface {
	// RateAsOf returns the most recent stored rate for the directional pair
	// with a day at or before on. ok is false when no row qualifies.
	RateAsOf(ctx context.Context, base, quote string, on date.Date) (rate float64, ok bool, err error)
	// RecordRate stores one daily snapshot, upserting on (base, quote, day).
	RecordRate(ctx context.Context, r FxRate) error
}

// SettingsStore provides tenant preferences.
type SettingsStore interface {
	// BaseCurrency returns the tenant's chosen reporting currency, if set.
	BaseCurrency(ctx context.Context, scope Scope) (string, bool, error)
	// FirstCurrency returns the first defined currency for the tenant, used
	// as a fallback when no preference is set.
	FirstCurrency(ctx context.Context, scope Scope) (string, bool, error)
}
