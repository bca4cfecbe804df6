package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// PostgresSlot stores the document as one row of a key-value table.
type PostgresSlot struct {
	db  *sqlx.DB
	key string
}

// NewPostgresSlot connects to Postgres, ensures the slot table exists and
// returns a slot bound to key.
func NewPostgresSlot(dsn, key string) (*PostgresSlot, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS kv_slots (
        key TEXT PRIMARY KEY,
        value BYTEA NOT NULL,
        updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
    );`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure kv_slots table: %w", err)
	}

	return &PostgresSlot{db: db, key: key}, nil
}

// Load fetches the slot row. A missing row is an empty slot.
func (s *PostgresSlot) Load(ctx context.Context) ([]byte, error) {
	var data []byte
	err := s.db.GetContext(ctx, &data, `SELECT value FROM kv_slots WHERE key=$1`, s.key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select slot %s: %w", s.key, err)
	}
	return data, nil
}

// Store upserts the slot row.
func (s *PostgresSlot) Store(ctx context.Context, data []byte) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO kv_slots (key, value, updated_at)
        VALUES ($1, $2, NOW())
        ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`, s.key, data)
	if err != nil {
		return fmt.Errorf("upsert slot %s: %w", s.key, err)
	}
	return nil
}

// Close releases the database connection.
func (s *PostgresSlot) Close() error {
	return s.db.Close()
}
