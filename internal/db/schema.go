package db

// SchemaSQL is the complete client schema: the local key/value store the
// mutation log lives in.
//
// This is the single source of truth for the client database. Tests load it
// through GetSchemaSQL() instead of declaring their own tables, so a column
// referenced by an adapter but missing here fails immediately with
// "no such column".
const SchemaSQL = `
-- Durable key/value items (one row per key, values replaced wholesale)
CREATE TABLE IF NOT EXISTS kv_store (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);
`

// BackendSchemaSQL is the schema of the development backend, mirroring the
// hosted store's tables.
const BackendSchemaSQL = `
CREATE TABLE IF NOT EXISTS debts (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	title TEXT NOT NULL,
	creditor TEXT NOT NULL,
	amount TEXT NOT NULL,
	currency TEXT NOT NULL CHECK(currency IN ('USD', 'TRY', 'EUR', 'GBP', 'JPY', 'CAD', 'AUD')) DEFAULT 'USD',
	due_date TEXT,
	status TEXT NOT NULL CHECK(status IN ('pending', 'paid')) DEFAULT 'pending',
	type TEXT NOT NULL CHECK(type IN ('short', 'long')) DEFAULT 'short',
	created_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_debts_user ON debts(user_id);

CREATE TABLE IF NOT EXISTS debt_amount_history (
	id TEXT PRIMARY KEY,
	debt_id TEXT NOT NULL,
	user_id TEXT NOT NULL,
	amount TEXT NOT NULL,
	note TEXT NOT NULL DEFAULT '',
	logged_at TEXT NOT NULL,
	FOREIGN KEY (debt_id) REFERENCES debts(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_debt_history_debt ON debt_amount_history(debt_id);

CREATE TABLE IF NOT EXISTS assets (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	name TEXT NOT NULL,
	type TEXT NOT NULL CHECK(type IN ('gold', 'silver', 'crypto')),
	amount TEXT NOT NULL,
	created_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_assets_user ON assets(user_id);

CREATE TABLE IF NOT EXISTS asset_amount_history (
	id TEXT PRIMARY KEY,
	asset_id TEXT NOT NULL,
	user_id TEXT NOT NULL,
	amount TEXT NOT NULL,
	note TEXT NOT NULL DEFAULT '',
	logged_at TEXT NOT NULL,
	FOREIGN KEY (asset_id) REFERENCES assets(id) ON DELETE CASCADE
);
`

// GetSchemaSQL returns the authoritative client schema for use by tests.
func GetSchemaSQL() string {
	return SchemaSQL
}
