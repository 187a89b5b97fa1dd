// Package refresh implements the market-data refresh jobs: pulling latest
// instrument quotes into the latest-price cache and daily FX snapshots into
// the rate store. Jobs run under a soft time budget and report how far they
// got; scheduling them is the caller's concern.
package refresh

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/portivue/portivue"
	"github.com/portivue/portivue/frankfurter"
)

// maxErrors caps the error list carried in a Result.
const maxErrors = 50

// Catalog is the instrument side the price job needs: enumerate the shared
// feed-sourced instruments and write back their quote cache.
type Catalog interface {
	ListInstruments(ctx context.Context) ([]portivue.Instrument, error)
	SetLatestPrice(ctx context.Context, id string, price float64, at time.Time) error
}

// QuoteSource returns the most recent traded price for a ticker.
type QuoteSource interface {
	Latest(ctx context.Context, ticker string) (float64, time.Time, error)
}

// RateFeed returns the most recent daily FX snapshot.
type RateFeed interface {
	Latest(ctx context.Context) (frankfurter.Snapshot, error)
}

// Options bounds a refresh run. Zero values mean no limit and the default
// 25 second budget.
type Options struct {
	Limit  int
	Budget time.Duration
}

func (o Options) budget() time.Duration {
	if o.Budget <= 0 {
		return 25 * time.Second
	}
	return o.Budget
}

// Result summarizes one refresh run.
type Result struct {
	Total     int           `json:"total_considered"`
	Processed int           `json:"processed"`
	Updated   int           `json:"updated"`
	Skipped   int           `json:"skipped"`
	Partial   bool          `json:"partial"`
	Elapsed   time.Duration `json:"elapsed"`
	Errors    []string      `json:"errors,omitempty"`
}

func (r *Result) addError(msg string) {
	if len(r.Errors) < maxErrors {
		r.Errors = append(r.Errors, msg)
	}
}

// Prices refreshes the latest-price cache of every feed-sourced instrument
// with a symbol, up to opts.Limit instruments or until the soft time budget
// runs out, whichever comes first. Individual quote failures are collected,
// not fatal.
func Prices(ctx context.Context, catalog Catalog, quotes QuoteSource, opts Options) (Result, error) {
	var res Result
	instruments, err := catalog.ListInstruments(ctx)
	if err != nil {
		return res, err
	}

	// Only shared feed rows carry a refreshable quote.
	n := 0
	for _, inst := range instruments {
		if inst.Source == portivue.SourceFeed {
			instruments[n] = inst
			n++
		}
	}
	instruments = instruments[:n]
	if opts.Limit > 0 && len(instruments) > opts.Limit {
		instruments = instruments[:opts.Limit]
	}
	res.Total = len(instruments)

	started := time.Now()
	log.Printf("[prices] refresh start: total=%d budget=%s", res.Total, opts.budget())

	for _, inst := range instruments {
		if time.Since(started) >= opts.budget() {
			log.Printf("[prices] stopping early due to time budget (processed=%d)", res.Processed)
			break
		}
		if err := ctx.Err(); err != nil {
			return res, err
		}
		res.Processed++

		sym := strings.TrimSpace(inst.Symbol)
		if sym == "" {
			res.Skipped++
			log.Printf("[prices] SKIPPED (no symbol) id=%s", inst.ID)
			continue
		}

		price, at, err := quotes.Latest(ctx, sym)
		if err != nil {
			res.Skipped++
			res.addError(fmt.Sprintf("%s: %v", sym, err))
			log.Printf("[prices] ERROR %s: %v", sym, err)
			continue
		}
		if err := catalog.SetLatestPrice(ctx, inst.ID, price, at); err != nil {
			res.addError(fmt.Sprintf("%s: %v", sym, err))
			continue
		}
		res.Updated++
		log.Printf("[prices] UPDATED %-10s px=%v at=%s", sym, price, at.UTC().Format(time.DateTime))
	}

	res.Partial = res.Processed < res.Total
	res.Elapsed = time.Since(started)
	return res, nil
}

// Rates pulls the feed's latest daily snapshot and records it, rebased to
// each of the requested bases so that lookups against any of them resolve
// directly. The feed's own base is always recorded.
func Rates(ctx context.Context, store portivue.RateStore, feed RateFeed, bases ...string) (Result, error) {
	var res Result
	snap, err := feed.Latest(ctx)
	if err != nil {
		return res, err
	}
	started := time.Now()

	record := func(s frankfurter.Snapshot) {
		for _, r := range s.FxRates() {
			res.Processed++
			if err := store.RecordRate(ctx, r); err != nil {
				res.addError(fmt.Sprintf("%s/%s: %v", r.Base, r.Quote, err))
				continue
			}
			res.Updated++
		}
	}

	record(snap)
	for _, base := range bases {
		rebased, err := snap.Rebase(base)
		if err != nil {
			res.addError(err.Error())
			continue
		}
		if rebased.Base == snap.Base {
			continue // feed base requested explicitly
		}
		record(rebased)
	}

	res.Total = res.Processed
	res.Elapsed = time.Since(started)
	log.Printf("[rates] refreshed %d pairs as of %s", res.Updated, snap.Date)
	return res, nil
}
