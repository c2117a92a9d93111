package sqlite

import "database/sql"

// schema contains the SQL statements to set up the database schema.
// These run on startup to ensure tables exist.
// Money is stored as TEXT decimals ("3.80") to keep exact cents.
const schema = `
CREATE TABLE IF NOT EXISTS participants (
    name TEXT PRIMARY KEY,
    contact TEXT NOT NULL DEFAULT '',
    opted_in INTEGER NOT NULL DEFAULT 1,
    role TEXT NOT NULL DEFAULT 'member',
    color TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS transactions (
    seq INTEGER PRIMARY KEY AUTOINCREMENT,
    id TEXT NOT NULL UNIQUE,
    date TEXT NOT NULL,
    time_range TEXT NOT NULL,
    giver TEXT NOT NULL DEFAULT '',
    claimant TEXT NOT NULL DEFAULT '',
    status TEXT NOT NULL,
    swap_requested INTEGER NOT NULL DEFAULT 0,
    settled INTEGER NOT NULL DEFAULT 0,
    created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS batches (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    period_start TEXT NOT NULL,
    period_end TEXT NOT NULL,
    status TEXT NOT NULL,
    created_by TEXT NOT NULL DEFAULT '',
    created_at INTEGER NOT NULL,
    generated_at INTEGER,
    settled_at INTEGER
);

CREATE TABLE IF NOT EXISTS batch_transactions (
    batch_id TEXT NOT NULL,
    transaction_id TEXT NOT NULL,
    PRIMARY KEY (batch_id, transaction_id),
    FOREIGN KEY (batch_id) REFERENCES batches(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS pairings (
    id TEXT PRIMARY KEY,
    batch_id TEXT NOT NULL,
    position INTEGER NOT NULL,
    creditor TEXT NOT NULL,
    debtor TEXT NOT NULL,
    amount TEXT NOT NULL,
    status TEXT NOT NULL,
    completed_by TEXT,
    created_at INTEGER NOT NULL,
    completed_at INTEGER,
    FOREIGN KEY (batch_id) REFERENCES batches(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS users (
    id TEXT PRIMARY KEY,
    email TEXT NOT NULL UNIQUE,
    display_name TEXT NOT NULL,
    participant TEXT NOT NULL DEFAULT '',
    role TEXT NOT NULL DEFAULT 'member',
    password_hash TEXT NOT NULL,
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_pairings_batch_id ON pairings(batch_id);
CREATE INDEX IF NOT EXISTS idx_batch_transactions_batch_id ON batch_transactions(batch_id);
CREATE INDEX IF NOT EXISTS idx_users_email ON users(email);
CREATE UNIQUE INDEX IF NOT EXISTS idx_users_participant ON users(participant) WHERE participant != '';
`

// runMigrations executes the schema setup.
func runMigrations(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
