package subscription

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// KeyedStore is the durable backing of the registry: the full mapping is
// read once at construction and rewritten whole on every mutation. No
// incremental persistence, no concurrent writers.
type KeyedStore interface {
	Load(ctx context.Context) (map[string][]byte, error)
	Save(ctx context.Context, entries map[string][]byte) error
	Close() error
}

// SQLStore keeps the registry in a single-table SQLite database.
type SQLStore struct {
	db *sql.DB
}

func OpenSQLStore(path string) (*SQLStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS subscriptions (
		email TEXT PRIMARY KEY,
		meta  TEXT NOT NULL
	)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create subscriptions table: %w", err)
	}
	return &SQLStore{db: db}, nil
}

func (s *SQLStore) Load(ctx context.Context) (map[string][]byte, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT email, meta FROM subscriptions`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make(map[string][]byte)
	for rows.Next() {
		var email, meta string
		if err := rows.Scan(&email, &meta); err != nil {
			return nil, err
		}
		entries[email] = []byte(meta)
	}
	return entries, rows.Err()
}

// Save rewrites the whole table in one transaction.
func (s *SQLStore) Save(ctx context.Context, entries map[string][]byte) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM subscriptions`); err != nil {
		return err
	}
	for email, meta := range entries {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO subscriptions (email, meta) VALUES (?, ?)`, email, string(meta)); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *SQLStore) Close() error { return s.db.Close() }
