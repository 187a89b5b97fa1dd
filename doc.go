// Package portivue implements the valuation core of a multi-tenant
// investment portfolio tracker.
//
// The package rolls an immutable transaction ledger into moving-average cost
// positions, projects cached account balances into a reporting currency, and
// reconstructs a day-by-day net-worth history calibrated against the current
// totals. A date-scoped FX resolver, with support for minor currency units
// such as pence-quoted London listings, underpins all three.
//
// The core is a pure read path: it consumes ledger, catalog, price, rate and
// settings stores through the interfaces in store.go and signals missing data
// through the shape of its output (zeros, empty slices, unknown-rate
// sentinels), never through errors. Storage backends live in the memstore and
// sqlstore subpackages; the feeds that populate prices and rates live in
// eodhd, frankfurter and refresh.
package portivue
