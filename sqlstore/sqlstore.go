// Package sqlstore is the durable SQLite implementation of the portivue
// store interfaces.
package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/portivue/portivue"
	"github.com/portivue/portivue/date"
	"github.com/portivue/portivue/id"
)

type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and applies the
// schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// --- LedgerStore ---

const activityColumns = `id, type, account_id, instrument_id, broker_id, day,
	quantity, unit_price, currency_code, fee, note,
	withholding_tax, capital_gains_tax, transaction_tax, stamp_duty`

func scanActivity(rows *sql.Rows) (portivue.Activity, error) {
	var a portivue.Activity
	err := rows.Scan(
		&a.ID, &a.Type, &a.AccountID, &a.InstrumentID, &a.BrokerID, &a.Date,
		&a.Quantity, &a.UnitPrice, &a.CurrencyCode, &a.FeeAmount, &a.Note,
		&a.WithholdingTax, &a.CapitalGainsTax, &a.TransactionTax, &a.StampDuty,
	)
	return a, err
}

// Activities returns the tenant's ledger ordered by day, then id. IDs are
// time-sortable, so same-day rows come back in insertion order.
func (s *Store) Activities(ctx context.Context, scope portivue.Scope) ([]portivue.Activity, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+activityColumns+`
		FROM activities
		WHERE scope_strategy = ? AND tenant_id = ?
		ORDER BY day ASC, id ASC`,
		scope.Strategy, scope.TenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []portivue.Activity
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// Append validates and inserts an activity, assigning a ULID when it carries
// no id.
func (s *Store) Append(ctx context.Context, scope portivue.Scope, a portivue.Activity) (portivue.Activity, error) {
	if err := a.Validate(); err != nil {
		return portivue.Activity{}, err
	}
	if a.ID == "" {
		a.ID = id.New()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO activities
		(id, scope_strategy, tenant_id, type, account_id, instrument_id, broker_id, day,
		 quantity, unit_price, currency_code, fee, note,
		 withholding_tax, capital_gains_tax, transaction_tax, stamp_duty)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, scope.Strategy, scope.TenantID, a.Type, a.AccountID, a.InstrumentID, a.BrokerID, a.Date,
		a.Quantity, a.UnitPrice, a.CurrencyCode, a.FeeAmount, a.Note,
		a.WithholdingTax, a.CapitalGainsTax, a.TransactionTax, a.StampDuty,
	)
	if err != nil {
		return portivue.Activity{}, err
	}
	return a, nil
}

// Remove deletes one activity. Positions are recomputed from the ledger, so
// nothing derived needs fixing up.
func (s *Store) Remove(ctx context.Context, scope portivue.Scope, actID string) error {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM activities
		WHERE id = ? AND scope_strategy = ? AND tenant_id = ?`,
		actID, scope.Strategy, scope.TenantID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("activity %q not found", actID)
	}
	return nil
}

// --- AccountStore ---

func (s *Store) Accounts(ctx context.Context, scope portivue.Scope) ([]portivue.Account, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, currency_code, type, balance
		FROM accounts
		WHERE scope_strategy = ? AND tenant_id = ?
		ORDER BY id ASC`,
		scope.Strategy, scope.TenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []portivue.Account
	for rows.Next() {
		var a portivue.Account
		if err := rows.Scan(&a.ID, &a.Name, &a.CurrencyCode, &a.Type, &a.Balance); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// AddAccount inserts an account for a tenant, assigning a ULID when needed.
func (s *Store) AddAccount(ctx context.Context, scope portivue.Scope, a portivue.Account) (portivue.Account, error) {
	if a.ID == "" {
		a.ID = id.New()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO accounts (id, scope_strategy, tenant_id, name, currency_code, type, balance)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		a.ID, scope.Strategy, scope.TenantID, a.Name, a.CurrencyCode, a.Type, a.Balance)
	if err != nil {
		return portivue.Account{}, err
	}
	return a, nil
}

// SetBalance overwrites an account's cached balance.
func (s *Store) SetBalance(ctx context.Context, scope portivue.Scope, accountID string, balance float64) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE accounts SET balance = ?
		WHERE id = ? AND scope_strategy = ? AND tenant_id = ?`,
		balance, accountID, scope.Strategy, scope.TenantID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("account %q not found", accountID)
	}
	return nil
}

// --- InstrumentStore ---

const instrumentColumns = `id, symbol, name, currency_code, sector,
	asset_class, asset_subclass, country, source, latest_price, latest_price_at`

func scanInstrument(rows *sql.Rows) (portivue.Instrument, error) {
	var inst portivue.Instrument
	var at sql.NullTime
	err := rows.Scan(
		&inst.ID, &inst.Symbol, &inst.Name, &inst.CurrencyCode, &inst.Sector,
		&inst.AssetClass, &inst.AssetSub, &inst.Country, &inst.Source,
		&inst.LatestPrice, &at,
	)
	if at.Valid {
		inst.LatestPriceAt = at.Time
	}
	return inst, err
}

// Instruments resolves ids to instruments visible to the scope: public rows
// plus the tenant's own manual ones.
func (s *Store) Instruments(ctx context.Context, scope portivue.Scope, ids []string) (map[string]portivue.Instrument, error) {
	out := map[string]portivue.Instrument{}
	if len(ids) == 0 {
		return out, nil
	}
	args := make([]any, 0, len(ids)+2)
	for _, instID := range ids {
		args = append(args, instID)
	}
	args = append(args, scope.Strategy, scope.TenantID)

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+instrumentColumns+`
		FROM instruments
		WHERE id IN (?`+strings.Repeat(",?", len(ids)-1)+`)
		  AND (owner_strategy = '' OR (owner_strategy = ? AND owner_tenant = ?))`,
		args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		inst, err := scanInstrument(rows)
		if err != nil {
			return nil, err
		}
		out[inst.ID] = inst
	}
	return out, rows.Err()
}

func (s *Store) SetLatestPrice(ctx context.Context, instID string, price float64, at time.Time) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE instruments SET latest_price = ?, latest_price_at = ? WHERE id = ?`,
		price, at, instID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("instrument %q not found", instID)
	}
	return nil
}

// AddInstrument inserts a public instrument shared by all tenants.
func (s *Store) AddInstrument(ctx context.Context, inst portivue.Instrument) (portivue.Instrument, error) {
	return s.addInstrument(ctx, portivue.Scope{}, inst)
}

// AddManualInstrument inserts an instrument owned by exactly one tenant.
func (s *Store) AddManualInstrument(ctx context.Context, scope portivue.Scope, inst portivue.Instrument) (portivue.Instrument, error) {
	inst.Source = portivue.SourceManual
	return s.addInstrument(ctx, scope, inst)
}

func (s *Store) addInstrument(ctx context.Context, owner portivue.Scope, inst portivue.Instrument) (portivue.Instrument, error) {
	if inst.ID == "" {
		inst.ID = id.New()
	}
	var at any
	if !inst.LatestPriceAt.IsZero() {
		at = inst.LatestPriceAt
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO instruments
		(id, symbol, name, currency_code, sector, asset_class, asset_subclass, country,
		 source, latest_price, latest_price_at, owner_strategy, owner_tenant)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		inst.ID, inst.Symbol, inst.Name, inst.CurrencyCode, inst.Sector,
		inst.AssetClass, inst.AssetSub, inst.Country,
		inst.Source, inst.LatestPrice, at, owner.Strategy, owner.TenantID)
	if err != nil {
		return portivue.Instrument{}, err
	}
	return inst, nil
}

// ListInstruments returns every public instrument, for the refresh job.
func (s *Store) ListInstruments(ctx context.Context) ([]portivue.Instrument, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+instrumentColumns+`
		FROM instruments
		WHERE owner_strategy = ''
		ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []portivue.Instrument
	for rows.Next() {
		inst, err := scanInstrument(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, inst)
	}
	return out, rows.Err()
}

// --- PriceStore ---

func (s *Store) History(ctx context.Context, scope portivue.Scope, instrumentIDs []string, r date.Range) ([]portivue.PricePoint, error) {
	if len(instrumentIDs) == 0 {
		return nil, nil
	}
	args := make([]any, 0, len(instrumentIDs)+4)
	for _, instID := range instrumentIDs {
		args = append(args, instID)
	}
	args = append(args, r.From, r.To, scope.Strategy, scope.TenantID)

	rows, err := s.db.QueryContext(ctx, `
		SELECT instrument_id, day, close, source
		FROM prices
		WHERE instrument_id IN (?`+strings.Repeat(",?", len(instrumentIDs)-1)+`)
		  AND day >= ? AND day <= ?
		  AND (owner_strategy = '' OR (owner_strategy = ? AND owner_tenant = ?))
		ORDER BY day ASC`,
		args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []portivue.PricePoint
	for rows.Next() {
		var p portivue.PricePoint
		if err := rows.Scan(&p.InstrumentID, &p.Date, &p.Close, &p.Source); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// RecordPrice upserts one closing price. A manual price written under a
// non-zero scope is visible only to that tenant.
func (s *Store) RecordPrice(ctx context.Context, scope portivue.Scope, p portivue.PricePoint) error {
	owner := portivue.Scope{}
	if scope != (portivue.Scope{}) && p.Source == portivue.SourceManual {
		owner = scope
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO prices (instrument_id, day, close, source, owner_strategy, owner_tenant)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (instrument_id, day, source, owner_strategy, owner_tenant)
		DO UPDATE SET close = excluded.close`,
		p.InstrumentID, p.Date, p.Close, p.Source, owner.Strategy, owner.TenantID)
	return err
}

// --- RateStore ---

// RateAsOf returns the latest stored rate on or before the given day.
func (s *Store) RateAsOf(ctx context.Context, base, quote string, on date.Date) (float64, bool, error) {
	var rate float64
	err := s.db.QueryRowContext(ctx, `
		SELECT rate FROM fx_rates
		WHERE base = ? AND quote = ? AND day <= ?
		ORDER BY day DESC LIMIT 1`,
		base, quote, on).Scan(&rate)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return rate, true, nil
}

// RecordRate upserts one daily rate snapshot.
func (s *Store) RecordRate(ctx context.Context, r portivue.FxRate) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO fx_rates (base, quote, day, rate)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (base, quote, day) DO UPDATE SET rate = excluded.rate`,
		r.Base, r.Quote, r.Date, r.Rate)
	return err
}

// --- SettingsStore ---

const baseCurrencyKey = "base_currency"

func (s *Store) BaseCurrency(ctx context.Context, scope portivue.Scope) (string, bool, error) {
	var code string
	err := s.db.QueryRowContext(ctx, `
		SELECT value FROM settings
		WHERE scope_strategy = ? AND tenant_id = ? AND key = ?`,
		scope.Strategy, scope.TenantID, baseCurrencyKey).Scan(&code)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return code, true, nil
}

func (s *Store) FirstCurrency(ctx context.Context, _ portivue.Scope) (string, bool, error) {
	var code string
	err := s.db.QueryRowContext(ctx, `
		SELECT code FROM currencies ORDER BY position ASC LIMIT 1`).Scan(&code)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return code, true, nil
}

// SetBaseCurrency stores a tenant's reporting-currency preference.
func (s *Store) SetBaseCurrency(ctx context.Context, scope portivue.Scope, code string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO settings (scope_strategy, tenant_id, key, value)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (scope_strategy, tenant_id, key) DO UPDATE SET value = excluded.value`,
		scope.Strategy, scope.TenantID, baseCurrencyKey, code)
	return err
}

// DefineCurrencies replaces the ordered list of defined currencies; the
// first is the fallback base when no preference is set.
func (s *Store) DefineCurrencies(ctx context.Context, codes ...string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if _, err := tx.ExecContext(ctx, `DELETE FROM currencies`); err != nil {
		return err
	}
	for i, code := range codes {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO currencies (position, code) VALUES (?, ?)`, i, code); err != nil {
			return err
		}
	}
	return tx.Commit()
}

var (
	_ portivue.LedgerStore     = (*Store)(nil)
	_ portivue.AccountStore    = (*Store)(nil)
	_ portivue.InstrumentStore = (*Store)(nil)
	_ portivue.PriceStore      = (*Store)(nil)
	_ portivue.RateStore       = (*Store)(nil)
	_ portivue.SettingsStore   = (*Store)(nil)
)
