// Package memory provides a fixture-backed loader for tests and ephemeral
// use. Rows are registered up front and served as defensive copies.
package memory

import (
	"context"
	"fmt"
	"sync"

	"hydrate/internal/session"
)

var _ session.Loader = (*Loader)(nil)

// Loader serves entity rows from an in-memory fixture set.
type Loader struct {
	mu      sync.RWMutex
	idProps map[string]string
	rows    map[string][]map[string]any
}

// NewLoader constructs an empty fixture loader.
func NewLoader() *Loader {
	return &Loader{
		idProps: make(map[string]string),
		rows:    make(map[string][]map[string]any),
	}
}

// Add registers fixture rows for an entity keyed by idProperty.
func (l *Loader) Add(entity, idProperty string, rows ...map[string]any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.idProps[entity] = idProperty
	l.rows[entity] = append(l.rows[entity], rows...)
}

// LoadRow implements session.Loader.
func (l *Loader) LoadRow(_ context.Context, entity string, id any) (map[string]any, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	idProp, ok := l.idProps[entity]
	if !ok {
		return nil, fmt.Errorf("entity %s has no fixtures", entity)
	}
	for _, row := range l.rows[entity] {
		if row[idProp] == id {
			return cloneRow(row), nil
		}
	}
	return nil, nil
}

// LoadRowByProperty implements session.Loader.
func (l *Loader) LoadRowByProperty(_ context.Context, entity, property string, value any) (map[string]any, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if _, ok := l.idProps[entity]; !ok {
		return nil, fmt.Errorf("entity %s has no fixtures", entity)
	}
	for _, row := range l.rows[entity] {
		if row[property] == value {
			return cloneRow(row), nil
		}
	}
	return nil, nil
}

func cloneRow(row map[string]any) map[string]any {
	cpy := make(map[string]any, len(row))
	for k, v := range row {
		cpy[k] = v
	}
	return cpy
}
