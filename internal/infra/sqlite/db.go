package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS bank_accounts (
	id             TEXT PRIMARY KEY,
	user_id        TEXT NOT NULL,
	account_number TEXT NOT NULL,
	balance        REAL NOT NULL,
	company        TEXT NOT NULL,
	UNIQUE (user_id, account_number)
);

CREATE TABLE IF NOT EXISTS credit_cards (
	id          TEXT PRIMARY KEY,
	user_id     TEXT NOT NULL,
	card_number TEXT NOT NULL,
	company     TEXT NOT NULL,
	UNIQUE (user_id, card_number)
);

CREATE TABLE IF NOT EXISTS transactions (
	id                TEXT PRIMARY KEY,
	user_id           TEXT NOT NULL,
	description       TEXT NOT NULL,
	timestamp         TEXT NOT NULL,
	status            TEXT NOT NULL,
	original_amount   REAL NOT NULL,
	original_currency TEXT NOT NULL,
	charged_amount    REAL NOT NULL,
	charged_currency  TEXT NOT NULL,
	source            TEXT NOT NULL,
	bank_account_id   TEXT REFERENCES bank_accounts (id),
	credit_card_id    TEXT REFERENCES credit_cards (id),
	identifier        TEXT NOT NULL UNIQUE
);

CREATE INDEX IF NOT EXISTS idx_transactions_user ON transactions (user_id, timestamp);
`

// Store is a SQLite-backed implementation of storage.Repository. The database
// enforces natural-key uniqueness itself, so no in-process locking is needed
// for concurrent writers; connections come from the shared database/sql pool.
type Store struct {
	db *sql.DB
}

// Open opens (creating if necessary) the database at path and initializes the
// schema. Pass a file path, or a "file:..." DSN for in-memory test databases.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("Open: opening database: %w", err)
	}

	// busy_timeout makes concurrent per-account commits queue instead of
	// failing with SQLITE_BUSY.
	pragmas := []string{
		"PRAGMA journal_mode = WAL;",
		"PRAGMA busy_timeout = 5000;",
		"PRAGMA foreign_keys = ON;",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("Open: applying %q: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("Open: initializing schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping verifies the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
