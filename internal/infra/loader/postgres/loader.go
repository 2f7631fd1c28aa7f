// Package postgres provides a loader backed by PostgreSQL through the pgx
// database/sql driver. It mirrors the sqlite loader's table shape with a
// JSONB payload column so unique-property lookups can filter in SQL.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"hydrate/internal/session"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver
)

var _ session.Loader = (*Loader)(nil)

const (
	defaultDriver = "pgx"
	defaultDSN    = "postgres://localhost/hydrate?sslmode=disable"
)

var (
	sqlOpen = sql.Open
	openMu  sync.Mutex
)

// Loader reads entity rows from PostgreSQL.
type Loader struct {
	db *sql.DB
}

// NewLoader opens a connection using the provided DSN (falls back to
// defaultDSN) and ensures the entity_state table exists.
func NewLoader(dsn string) (*Loader, error) {
	if dsn == "" {
		dsn = defaultDSN
	}
	openMu.Lock()
	db, err := sqlOpen(defaultDriver, dsn)
	openMu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	ctx := context.Background()
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS entity_state (
		entity TEXT NOT NULL,
		id TEXT NOT NULL,
		payload JSONB NOT NULL,
		PRIMARY KEY (entity, id)
	)`); err != nil {
		return nil, fmt.Errorf("ensure entity_state table: %w", err)
	}
	return &Loader{db: db}, nil
}

// Seed upserts one entity row. Identifiers are stored in their string form.
func (l *Loader) Seed(ctx context.Context, entity string, id any, row map[string]any) error {
	payload, err := json.Marshal(row)
	if err != nil {
		return fmt.Errorf("encode %s#%v: %w", entity, id, err)
	}
	if _, err := l.db.ExecContext(ctx, `INSERT INTO entity_state(entity,id,payload) VALUES($1,$2,$3) ON CONFLICT(entity,id) DO UPDATE SET payload=EXCLUDED.payload`, entity, fmt.Sprint(id), payload); err != nil {
		return fmt.Errorf("upsert %s#%v: %w", entity, id, err)
	}
	return nil
}

// LoadRow implements session.Loader.
func (l *Loader) LoadRow(ctx context.Context, entity string, id any) (map[string]any, error) {
	var payload []byte
	err := l.db.QueryRowContext(ctx, `SELECT payload FROM entity_state WHERE entity=$1 AND id=$2`, entity, fmt.Sprint(id)).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select %s#%v: %w", entity, id, err)
	}
	return decodeRow(entity, payload)
}

// LoadRowByProperty implements session.Loader using a JSONB text filter.
func (l *Loader) LoadRowByProperty(ctx context.Context, entity, property string, value any) (map[string]any, error) {
	var payload []byte
	err := l.db.QueryRowContext(ctx, `SELECT payload FROM entity_state WHERE entity=$1 AND payload->>$2=$3 LIMIT 1`, entity, property, fmt.Sprint(value)).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select %s by %s: %w", entity, property, err)
	}
	return decodeRow(entity, payload)
}

// DB exposes the underlying sql.DB for integration testing hooks.
func (l *Loader) DB() *sql.DB { return l.db }

// Close releases the database handle.
func (l *Loader) Close() error { return l.db.Close() }

func decodeRow(entity string, payload []byte) (map[string]any, error) {
	var row map[string]any
	if err := json.Unmarshal(payload, &row); err != nil {
		return nil, fmt.Errorf("decode %s: %w", entity, err)
	}
	return row, nil
}

// OverrideSQLOpen swaps the sqlOpen function for tests and returns a restore
// function.
func OverrideSQLOpen(fn func(driverName, dataSourceName string) (*sql.DB, error)) func() {
	openMu.Lock()
	defer openMu.Unlock()
	prev := sqlOpen
	sqlOpen = fn
	return func() {
		openMu.Lock()
		defer openMu.Unlock()
		sqlOpen = prev
	}
}
