package engine

import "hydrate/internal/session"

// RowOptions carries query-level options that affect row processing.
type RowOptions struct {
	// ResultCaching is set when the outer query populates a result cache,
	// forcing identifier state resolution even on paths that would not
	// otherwise need the value.
	ResultCaching bool
}

// RowState is the mutable per-row processing state shared by the initializer
// graph of one result plan. It is owned by a single unit of work and advanced
// row by row; initializers read values positionally through assemblers.
type RowState struct {
	sess     *session.Session
	opts     RowOptions
	values   []any
	cacheHit bool
}

// NewRowState binds row processing to a session.
func NewRowState(sess *session.Session, opts RowOptions) *RowState {
	return &RowState{sess: sess, opts: opts}
}

// Session returns the owning unit of work.
func (r *RowState) Session() *session.Session { return r.sess }

// NextRow installs the raw values of the next result row. cacheHit marks rows
// replayed from the query cache rather than read from the database.
func (r *RowState) NextRow(values []any, cacheHit bool) {
	r.values = values
	r.cacheHit = cacheHit
}

// Value returns the raw row value at pos, or nil when out of range.
func (r *RowState) Value(pos int) any {
	if pos < 0 || pos >= len(r.values) {
		return nil
	}
	return r.values[pos]
}

// QueryCacheHit reports whether the current row came from the query cache.
func (r *RowState) QueryCacheHit() bool { return r.cacheHit }

// ResultCachingEnabled reports whether the outer query caches results.
func (r *RowState) ResultCachingEnabled() bool { return r.opts.ResultCaching }
