// Package session implements the unit of work: the persistence context
// (identity map) that guarantees a single in-memory representation per
// (entity, identifier) pair, lazy proxies, and the load paths the
// materialization layer delegates to. A session is owned by one logical
// thread of control and must not be shared across goroutines.
package session

import (
	"context"
	"fmt"
	"time"

	"hydrate/internal/cache"
	"hydrate/internal/observability"
	"hydrate/internal/persister"
)

// EntityNotFoundError reports a synchronous load that found no row for a
// non-nullable reference.
type EntityNotFoundError struct {
	Entity string
	ID     any
}

func (e EntityNotFoundError) Error() string {
	return fmt.Sprintf("entity %s#%v not found", e.Entity, e.ID)
}

// Session coordinates one unit of work: it owns the persistence context,
// resolves descriptors, and performs loads through the configured loader with
// the second-level cache region consulted first.
type Session struct {
	pc       *Context
	registry *persister.Registry
	loader   Loader
	region   *cache.Region
	log      observability.Logger
	tracer   observability.Tracer
	metrics  observability.MetricsRecorder
}

// Option configures a session at construction time.
type Option func(*Session)

// WithSecondLevelCache attaches a cache region consulted before the loader.
func WithSecondLevelCache(region *cache.Region) Option {
	return func(s *Session) { s.region = region }
}

// WithLogger attaches a logger.
func WithLogger(log observability.Logger) Option {
	return func(s *Session) {
		if log != nil {
			s.log = log
		}
	}
}

// WithTracer attaches a tracer wrapped around load operations.
func WithTracer(tracer observability.Tracer) Option {
	return func(s *Session) {
		if tracer != nil {
			s.tracer = tracer
		}
	}
}

// WithMetrics attaches a metrics recorder.
func WithMetrics(metrics observability.MetricsRecorder) Option {
	return func(s *Session) {
		if metrics != nil {
			s.metrics = metrics
		}
	}
}

// New constructs a session over the given descriptor registry and loader.
func New(registry *persister.Registry, loader Loader, opts ...Option) *Session {
	s := &Session{
		pc:       NewContext(),
		registry: registry,
		loader:   loader,
		log:      observability.NopLogger{},
		tracer:   observability.NopTracer{},
		metrics:  observability.NopMetrics{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// PersistenceContext returns the session's identity map.
func (s *Session) PersistenceContext() *Context { return s.pc }

// Metrics returns the session's metrics recorder.
func (s *Session) Metrics() observability.MetricsRecorder { return s.metrics }

// Descriptor resolves the descriptor for an entity name.
func (s *Session) Descriptor(entity string) (*persister.Descriptor, error) {
	d, ok := s.registry.Descriptor(entity)
	if !ok {
		return nil, fmt.Errorf("entity %s is not mapped", entity)
	}
	return d, nil
}

// ResolveConcrete resolves the concrete descriptor for a base entity given a
// discriminator value; nil when the value selects no mapped subtype.
func (s *Session) ResolveConcrete(base *persister.Descriptor, discriminator any) (*persister.Descriptor, error) {
	return s.registry.ResolveConcrete(base, discriminator)
}

// InternalLoad resolves an entity reference for the unit of work. The
// identity map is always consulted first. When eager is false and the entity
// maps proxies, an uninitialized proxy is returned without touching the
// loader. Otherwise the load is synchronous; a missing row is an
// EntityNotFoundError unless nullable is set.
func (s *Session) InternalLoad(ctx context.Context, entity string, id any, eager, nullable bool) (any, error) {
	d, err := s.Descriptor(entity)
	if err != nil {
		return nil, err
	}
	key := EntityKey{Entity: entity, ID: id}
	if h := s.pc.EntityHolder(key); h != nil && (h.Entity() != nil || h.Proxy() != nil) {
		s.metrics.Count(observability.EventIdentityMapHit)
		return s.pc.ProxyForHolder(h), nil
	}
	s.metrics.Count(observability.EventIdentityMapMiss)

	if !eager && d.Proxies() {
		p := NewProxy(key, func(c context.Context) (any, error) {
			instance, err := s.loadEntity(c, d, id)
			if err != nil {
				return nil, err
			}
			if instance == nil {
				return nil, EntityNotFoundError{Entity: entity, ID: id}
			}
			return instance, nil
		})
		s.log.Debug("registered proxy", "entity", entity, "id", id)
		return s.pc.AddProxy(key, p), nil
	}

	instance, err := s.loadEntity(ctx, d, id)
	if err != nil {
		return nil, err
	}
	if instance == nil {
		if nullable {
			return nil, nil
		}
		return nil, EntityNotFoundError{Entity: entity, ID: id}
	}
	return instance, nil
}

// LoadByUniqueKey loads an entity through an alternate unique property. The
// loaded instance is registered in the identity map under its primary key;
// nil is returned when no row matches.
func (s *Session) LoadByUniqueKey(ctx context.Context, entity, property string, value any) (instance any, err error) {
	d, err := s.Descriptor(entity)
	if err != nil {
		return nil, err
	}
	ctx, span := s.tracer.Start(ctx, "session.load_by_unique_key")
	started := time.Now()
	defer func() {
		span.End(err)
		s.metrics.Observe(ctx, "session.load_by_unique_key", err == nil, time.Since(started))
	}()

	row, err := s.loader.LoadRowByProperty(ctx, entity, property, value)
	if err != nil {
		return nil, fmt.Errorf("load %s by %s: %w", entity, property, err)
	}
	if row == nil {
		return nil, nil
	}
	instance, err = d.Hydrate(row)
	if err != nil {
		return nil, fmt.Errorf("hydrate %s: %w", entity, err)
	}
	key := EntityKey{Entity: entity, ID: d.IdentifierOf(instance)}
	s.pc.AddEntity(key, instance)
	if s.region != nil {
		s.region.Put(cache.Key(key), row)
	}
	return instance, nil
}

// loadEntity performs the synchronous load path: second-level cache first,
// then the loader. Loaded state is hydrated, cached under the read-only
// strategy, and registered in the identity map. A nil return means no row.
func (s *Session) loadEntity(ctx context.Context, d *persister.Descriptor, id any) (instance any, err error) {
	ctx, span := s.tracer.Start(ctx, "session.load")
	started := time.Now()
	defer func() {
		span.End(err)
		s.metrics.Observe(ctx, "session.load", err == nil, time.Since(started))
	}()

	key := EntityKey{Entity: d.Name(), ID: id}
	var row map[string]any
	if s.region != nil {
		if state, ok := s.region.Get(cache.Key(key)); ok {
			s.metrics.Count(observability.EventCacheHit)
			row = state
		} else {
			s.metrics.Count(observability.EventCacheMiss)
		}
	}
	if row == nil {
		row, err = s.loader.LoadRow(ctx, d.Name(), id)
		if err != nil {
			return nil, fmt.Errorf("load %s#%v: %w", d.Name(), id, err)
		}
		if row == nil {
			return nil, nil
		}
		if s.region != nil {
			s.region.Put(cache.Key(key), row)
		}
	}
	instance, err = d.Hydrate(row)
	if err != nil {
		return nil, fmt.Errorf("hydrate %s#%v: %w", d.Name(), id, err)
	}
	s.pc.AddEntity(key, instance)
	return instance, nil
}
