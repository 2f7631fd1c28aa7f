package session

import "context"

// Loader supplies raw entity rows to the session load layer. Implementations
// live under internal/infra/loader; the session never interprets rows itself,
// it hands them to the entity descriptor for hydration.
type Loader interface {
	// LoadRow returns the column map for the entity row with the given
	// primary identifier, or nil when no such row exists.
	LoadRow(ctx context.Context, entity string, id any) (map[string]any, error)
	// LoadRowByProperty returns the column map for the entity row whose
	// named property equals value, or nil when no such row exists.
	LoadRowByProperty(ctx context.Context, entity, property string, value any) (map[string]any, error)
}
