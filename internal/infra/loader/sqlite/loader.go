// Package sqlite provides a loader backed by an embedded SQLite file. Entity
// state lives in a single table as JSON payloads keyed by entity and id.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"hydrate/internal/session"

	_ "modernc.org/sqlite" // pure go sqlite driver
)

var _ session.Loader = (*Loader)(nil)

// Loader reads entity rows from a SQLite database.
type Loader struct {
	db   *sql.DB
	path string
}

// NewLoader opens (and initializes) the database at path, defaulting to
// ./hydrate.db.
func NewLoader(path string) (*Loader, error) {
	if path == "" {
		path = "hydrate.db"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("create dirs: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS entity_state (
		entity TEXT NOT NULL,
		id TEXT NOT NULL,
		payload BLOB NOT NULL,
		PRIMARY KEY (entity, id)
	)`); err != nil {
		return nil, fmt.Errorf("create entity_state table: %w", err)
	}
	return &Loader{db: db, path: path}, nil
}

// Seed upserts one entity row. Identifiers are stored in their string form.
func (l *Loader) Seed(ctx context.Context, entity string, id any, row map[string]any) error {
	payload, err := json.Marshal(row)
	if err != nil {
		return fmt.Errorf("encode %s#%v: %w", entity, id, err)
	}
	if _, err := l.db.ExecContext(ctx, `INSERT INTO entity_state(entity,id,payload) VALUES(?,?,?) ON CONFLICT(entity,id) DO UPDATE SET payload=excluded.payload`, entity, fmt.Sprint(id), payload); err != nil {
		return fmt.Errorf("upsert %s#%v: %w", entity, id, err)
	}
	return nil
}

// LoadRow implements session.Loader.
func (l *Loader) LoadRow(ctx context.Context, entity string, id any) (map[string]any, error) {
	var payload []byte
	err := l.db.QueryRowContext(ctx, `SELECT payload FROM entity_state WHERE entity=? AND id=?`, entity, fmt.Sprint(id)).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select %s#%v: %w", entity, id, err)
	}
	return decodeRow(entity, payload)
}

// LoadRowByProperty implements session.Loader. Payloads are JSON, so the
// property filter runs over decoded rows rather than in SQL.
func (l *Loader) LoadRowByProperty(ctx context.Context, entity, property string, value any) (map[string]any, error) {
	rows, err := l.db.QueryContext(ctx, `SELECT payload FROM entity_state WHERE entity=?`, entity)
	if err != nil {
		return nil, fmt.Errorf("select %s: %w", entity, err)
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan %s: %w", entity, err)
		}
		row, err := decodeRow(entity, payload)
		if err != nil {
			return nil, err
		}
		if row[property] == value {
			return row, nil
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", entity, err)
	}
	return nil, nil
}

// DB exposes the underlying sql.DB for integration testing hooks.
func (l *Loader) DB() *sql.DB { return l.db }

// Path returns the configured database path.
func (l *Loader) Path() string { return l.path }

// Close releases the database handle.
func (l *Loader) Close() error { return l.db.Close() }

func decodeRow(entity string, payload []byte) (map[string]any, error) {
	var row map[string]any
	if err := json.Unmarshal(payload, &row); err != nil {
		return nil, fmt.Errorf("decode %s: %w", entity, err)
	}
	return row, nil
}
