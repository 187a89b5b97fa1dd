// Package memstore is an in-memory implementation of the portivue store
// interfaces. It backs the test suites and the CLI's ephemeral mode; the
// durable backend lives in sqlstore.
package memstore

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/portivue/portivue"
	"github.com/portivue/portivue/date"
)

// Store holds every tenant's data in process memory. All methods are safe
// for concurrent use.
type Store struct {
	mu  sync.RWMutex
	seq int

	activities map[portivue.Scope][]portivue.Activity // insertion order
	accounts   map[portivue.Scope][]portivue.Account

	instruments map[string]portivue.Instrument
	owners      map[string]portivue.Scope // manual instruments only

	prices []pricePoint
	rates  map[string]*date.Series[float64]

	baseCurrency map[portivue.Scope]string
	currencies   []string
}

type pricePoint struct {
	portivue.PricePoint
	owner *portivue.Scope // nil = public row
}

// New returns an empty store.
func New() *Store {
	return &Store{
		activities:   map[portivue.Scope][]portivue.Activity{},
		accounts:     map[portivue.Scope][]portivue.Account{},
		instruments:  map[string]portivue.Instrument{},
		owners:       map[string]portivue.Scope{},
		rates:        map[string]*date.Series[float64]{},
		baseCurrency: map[portivue.Scope]string{},
	}
}

func (s *Store) nextID(prefix string) string {
	s.seq++
	return fmt.Sprintf("%s-%04d", prefix, s.seq)
}

// --- LedgerStore ---

// Activities returns the tenant's ledger sorted by date ascending; the
// stable sort preserves insertion order between same-day rows.
func (s *Store) Activities(_ context.Context, scope portivue.Scope) ([]portivue.Activity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := slices.Clone(s.activities[scope])
	slices.SortStableFunc(out, func(a, b portivue.Activity) int {
		return a.Date.Compare(b.Date)
	})
	return out, nil
}

// Append validates and records an activity, assigning its ID.
func (s *Store) Append(_ context.Context, scope portivue.Scope, a portivue.Activity) (portivue.Activity, error) {
	if err := a.Validate(); err != nil {
		return portivue.Activity{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if a.ID == "" {
		a.ID = s.nextID("act")
	}
	s.activities[scope] = append(s.activities[scope], a)
	return a, nil
}

// Remove deletes an activity by ID. Lots are always recomputed from the full
// ledger, so no derived state needs fixing up.
func (s *Store) Remove(_ context.Context, scope portivue.Scope, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	acts := s.activities[scope]
	for i, a := range acts {
		if a.ID == id {
			s.activities[scope] = slices.Delete(acts, i, i+1)
			return nil
		}
	}
	return fmt.Errorf("activity %q not found", id)
}

// --- AccountStore ---

func (s *Store) Accounts(_ context.Context, scope portivue.Scope) ([]portivue.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.accounts[scope]), nil
}

// AddAccount registers an account for a tenant, assigning its ID when empty.
func (s *Store) AddAccount(scope portivue.Scope, a portivue.Account) portivue.Account {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a.ID == "" {
		a.ID = s.nextID("acc")
	}
	s.accounts[scope] = append(s.accounts[scope], a)
	return a
}

// SetBalance overwrites an account's cached balance.
func (s *Store) SetBalance(scope portivue.Scope, accountID string, balance float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.accounts[scope] {
		if s.accounts[scope][i].ID == accountID {
			s.accounts[scope][i].Balance = balance
			return
		}
	}
}

// --- InstrumentStore ---

// Instruments resolves ids to instruments visible to the scope: public rows
// plus the tenant's own manual ones.
func (s *Store) Instruments(_ context.Context, scope portivue.Scope, ids []string) (map[string]portivue.Instrument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]portivue.Instrument, len(ids))
	for _, id := range ids {
		inst, ok := s.instruments[id]
		if !ok {
			continue
		}
		if owner, manual := s.owners[id]; manual && owner != scope {
			continue
		}
		out[id] = inst
	}
	return out, nil
}

func (s *Store) SetLatestPrice(_ context.Context, id string, price float64, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	inst, ok := s.instruments[id]
	if !ok {
		return fmt.Errorf("instrument %q not found", id)
	}
	inst.LatestPrice = price
	inst.LatestPriceAt = at
	s.instruments[id] = inst
	return nil
}

// AddInstrument registers a public instrument shared by all tenants.
func (s *Store) AddInstrument(inst portivue.Instrument) portivue.Instrument {
	s.mu.Lock()
	defer s.mu.Unlock()
	if inst.ID == "" {
		inst.ID = s.nextID("ins")
	}
	s.instruments[inst.ID] = inst
	return inst
}

// AddManualInstrument registers an instrument owned by exactly one tenant.
func (s *Store) AddManualInstrument(scope portivue.Scope, inst portivue.Instrument) portivue.Instrument {
	inst.Source = portivue.SourceManual
	inst = s.AddInstrument(inst)
	s.mu.Lock()
	s.owners[inst.ID] = scope
	s.mu.Unlock()
	return inst
}

// ListInstruments returns every public instrument, for the refresh job.
func (s *Store) ListInstruments(_ context.Context) ([]portivue.Instrument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []portivue.Instrument
	for id, inst := range s.instruments {
		if _, manual := s.owners[id]; manual {
			continue
		}
		out = append(out, inst)
	}
	slices.SortFunc(out, func(a, b portivue.Instrument) int {
		return strings.Compare(a.ID, b.ID)
	})
	return out, nil
}

// --- PriceStore ---

func (s *Store) History(_ context.Context, scope portivue.Scope, instrumentIDs []string, r date.Range) ([]portivue.PricePoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	want := make(map[string]bool, len(instrumentIDs))
	for _, id := range instrumentIDs {
		want[id] = true
	}
	var out []portivue.PricePoint
	for _, p := range s.prices {
		if !want[p.InstrumentID] || !r.Contains(p.Date) {
			continue
		}
		if p.owner != nil && *p.owner != scope {
			continue
		}
		out = append(out, p.PricePoint)
	}
	slices.SortStableFunc(out, func(a, b portivue.PricePoint) int {
		return a.Date.Compare(b.Date)
	})
	return out, nil
}

// RecordPrice upserts one closing price. A zero-value scope stores a public
// row.
func (s *Store) RecordPrice(_ context.Context, scope portivue.Scope, p portivue.PricePoint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var owner *portivue.Scope
	if scope != (portivue.Scope{}) && p.Source == portivue.SourceManual {
		owner = &scope
	}
	for i, old := range s.prices {
		sameOwner := (old.owner == nil) == (owner == nil) && (owner == nil || *old.owner == *owner)
		if old.InstrumentID == p.InstrumentID && old.Date == p.Date && old.Source == p.Source && sameOwner {
			s.prices[i] = pricePoint{PricePoint: p, owner: owner}
			return nil
		}
	}
	s.prices = append(s.prices, pricePoint{PricePoint: p, owner: owner})
	return nil
}

// --- RateStore ---

func pair(base, quote string) string { return base + "/" + quote }

func (s *Store) RateAsOf(_ context.Context, base, quote string, on date.Date) (float64, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	series, ok := s.rates[pair(base, quote)]
	if !ok {
		return 0, false, nil
	}
	rate, ok := series.AsOf(on)
	return rate, ok, nil
}

// RecordRate upserts one daily rate snapshot.
func (s *Store) RecordRate(_ context.Context, r portivue.FxRate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := pair(r.Base, r.Quote)
	series, ok := s.rates[key]
	if !ok {
		series = &date.Series[float64]{}
		s.rates[key] = series
	}
	series.Append(r.Date, r.Rate)
	return nil
}

// --- SettingsStore ---

func (s *Store) BaseCurrency(_ context.Context, scope portivue.Scope) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cur, ok := s.baseCurrency[scope]
	return cur, ok, nil
}

func (s *Store) FirstCurrency(_ context.Context, _ portivue.Scope) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.currencies) == 0 {
		return "", false, nil
	}
	return s.currencies[0], true, nil
}

// SetBaseCurrency stores a tenant's reporting-currency preference.
func (s *Store) SetBaseCurrency(scope portivue.Scope, code string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.baseCurrency[scope] = code
}

// DefineCurrencies sets the ordered list of defined currencies; the first is
// the fallback base when no preference is set.
func (s *Store) DefineCurrencies(codes ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currencies = slices.Clone(codes)
}

var (
	_ portivue.LedgerStore     = (*Store)(nil)
	_ portivue.AccountStore    = (*Store)(nil)
	_ portivue.InstrumentStore = (*Store)(nil)
	_ portivue.PriceStore      = (*Store)(nil)
	_ portivue.RateStore       = (*Store)(nil)
	_ portivue.SettingsStore   = (*Store)(nil)
)
