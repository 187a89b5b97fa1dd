package sqlstore

// Schema is applied on every Open; all statements are idempotent.
//
// Tenancy is a (scope_strategy, tenant_id) pair on every tenant-owned table.
// Dates are stored as ISO-8601 text so lexicographic order is day order, and
// same-day ledger rows fall back to the time-sortable id.
const Schema = `
CREATE TABLE IF NOT EXISTS accounts (
	id             TEXT PRIMARY KEY,
	scope_strategy TEXT NOT NULL,
	tenant_id      TEXT NOT NULL,
	name           TEXT NOT NULL,
	currency_code  TEXT NOT NULL,
	type           TEXT NOT NULL DEFAULT '',
	balance        REAL NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS accounts_tenant ON accounts (scope_strategy, tenant_id);

CREATE TABLE IF NOT EXISTS activities (
	id                TEXT PRIMARY KEY,
	scope_strategy    TEXT NOT NULL,
	tenant_id         TEXT NOT NULL,
	type              TEXT NOT NULL,
	account_id        TEXT NOT NULL,
	instrument_id     TEXT NOT NULL DEFAULT '',
	broker_id         TEXT NOT NULL DEFAULT '',
	day               TEXT NOT NULL,
	quantity          REAL NOT NULL DEFAULT 0,
	unit_price        REAL NOT NULL DEFAULT 0,
	currency_code     TEXT NOT NULL,
	fee               REAL NOT NULL DEFAULT 0,
	note              TEXT NOT NULL DEFAULT '',
	withholding_tax   REAL NOT NULL DEFAULT 0,
	capital_gains_tax REAL NOT NULL DEFAULT 0,
	transaction_tax   REAL NOT NULL DEFAULT 0,
	stamp_duty        REAL NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS activities_tenant_day ON activities (scope_strategy, tenant_id, day, id);

CREATE TABLE IF NOT EXISTS instruments (
	id              TEXT PRIMARY KEY,
	symbol          TEXT NOT NULL DEFAULT '',
	name            TEXT NOT NULL DEFAULT '',
	currency_code   TEXT NOT NULL,
	sector          TEXT NOT NULL DEFAULT '',
	asset_class     TEXT NOT NULL DEFAULT '',
	asset_subclass  TEXT NOT NULL DEFAULT '',
	country         TEXT NOT NULL DEFAULT '',
	source          TEXT NOT NULL,
	latest_price    REAL NOT NULL DEFAULT 0,
	latest_price_at TIMESTAMP,
	owner_strategy  TEXT NOT NULL DEFAULT '',
	owner_tenant    TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS prices (
	instrument_id  TEXT NOT NULL,
	day            TEXT NOT NULL,
	close          REAL NOT NULL,
	source         TEXT NOT NULL,
	owner_strategy TEXT NOT NULL DEFAULT '',
	owner_tenant   TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (instrument_id, day, source, owner_strategy, owner_tenant)
);

CREATE TABLE IF NOT EXISTS fx_rates (
	base  TEXT NOT NULL,
	quote TEXT NOT NULL,
	day   TEXT NOT NULL,
	rate  REAL NOT NULL,
	PRIMARY KEY (base, quote, day)
);

CREATE TABLE IF NOT EXISTS settings (
	scope_strategy TEXT NOT NULL,
	tenant_id      TEXT NOT NULL,
	key            TEXT NOT NULL,
	value          TEXT NOT NULL,
	PRIMARY KEY (scope_strategy, tenant_id, key)
);

CREATE TABLE IF NOT EXISTS currencies (
	position INTEGER PRIMARY KEY,
	code     TEXT NOT NULL UNIQUE
);
`
