package engine

import (
	"context"
	"fmt"

	"hydrate/internal/persister"
	"hydrate/internal/session"
	"hydrate/pkg/mapping"
)

// FetchNotFoundError reports a non-optional association whose discriminator
// selected no mapped concrete type for the given identifier.
type FetchNotFoundError struct {
	Entity string
	ID     any
}

func (e FetchNotFoundError) Error() string {
	return fmt.Sprintf("no row with the given identifier exists: %s#%v", e.Entity, e.ID)
}

// DelayedFetch resolves a single-valued lazy association: it assembles the
// foreign-key value from the current row and produces a reference to the
// target without materializing its state, honoring the identity map and the
// mapping's laziness and proxy contracts. The target representation is never
// initialized here; DelayedFetch is always a leaf of the initialization pass.
type DelayedFetch struct {
	parent        Initializer
	path          mapping.NavigablePath
	partOfKey     bool
	toOne         mapping.ToOne
	target        *persister.Descriptor
	idAssembler   Assembler
	discAssembler Assembler

	// per-row state
	state      State
	identifier any
	ref        Reference
}

// NewDelayedFetch constructs the initializer for one to-one association.
// target is the mapped target's descriptor; idAssembler assembles the
// foreign-key value and discAssembler, when non-nil, the discriminator.
// A dangling-key policy other than none requires a target whose proxies
// resolve the concrete subtype; anything else is a mapping bug surfaced here
// rather than at row time.
func NewDelayedFetch(parent Initializer, path mapping.NavigablePath, toOne mapping.ToOne, target *persister.Descriptor, idAssembler, discAssembler Assembler) (*DelayedFetch, error) {
	if target == nil {
		return nil, fmt.Errorf("delayed fetch %s requires a target descriptor", path)
	}
	if idAssembler == nil {
		return nil, fmt.Errorf("delayed fetch %s requires an identifier assembler", path)
	}
	if toOne.NotFound != mapping.NotFoundNone && !target.ConcreteProxy() {
		return nil, fmt.Errorf("delayed fetch %s: not-found action %s requires concrete proxies on %s", path, toOne.NotFound, target.Name())
	}
	return &DelayedFetch{
		parent:        parent,
		path:          path,
		partOfKey:     path.PointsToIdentifier(),
		toOne:         toOne,
		target:        target,
		idAssembler:   idAssembler,
		discAssembler: discAssembler,
	}, nil
}

// NavigablePath implements Initializer.
func (d *DelayedFetch) NavigablePath() mapping.NavigablePath { return d.path }

// Parent returns the owning initializer, or nil at the root.
func (d *DelayedFetch) Parent() Initializer { return d.parent }

// State returns the per-row lifecycle state.
func (d *DelayedFetch) State() State { return d.state }

// Identifier returns the assembled foreign-key value; only meaningful in the
// resolved state.
func (d *DelayedFetch) Identifier() any { return d.identifier }

// EntityReference returns the resolved association slot representation.
func (d *DelayedFetch) EntityReference() Reference { return d.ref }

// EntityInstance returns the materialized value for the slot: the instance or
// proxy when one exists, nil for absent and deferred slots.
func (d *DelayedFetch) EntityInstance() any { return d.ref.Instance() }

// Initialized always reports false: a delayed fetch never materializes the
// target's state, only a reference to it.
func (d *DelayedFetch) Initialized() bool { return false }

// OwnedEntityKey implements the key accessor contract for leaf initializers.
func (d *DelayedFetch) OwnedEntityKey() (session.EntityKey, error) {
	return session.EntityKey{}, ErrNoChildInitializers
}

// ParentKey implements the key accessor contract for leaf initializers.
func (d *DelayedFetch) ParentKey() (session.EntityKey, error) {
	return session.EntityKey{}, ErrNoChildInitializers
}

// ResolveKey implements Initializer. The foreign key lives in the owning row,
// so key resolution only advances the state machine.
func (d *DelayedFetch) ResolveKey(_ *RowState) error {
	if d.state != StateUninitialized {
		return nil
	}
	d.state = StateKeyResolved
	return nil
}

// ResolveInstance implements Initializer: it assembles the identifier and
// resolves the slot representation for the current row. Calls in any state
// other than key-resolved are no-ops, which makes repeated resolution of the
// same row idempotent.
func (d *DelayedFetch) ResolveInstance(ctx context.Context, row *RowState) error {
	if d.state != StateKeyResolved {
		return nil
	}

	id, err := d.idAssembler.Assemble(row)
	if err != nil {
		return fmt.Errorf("assemble %s identifier: %w", d.path, err)
	}
	if id == nil {
		d.missing()
		return nil
	}
	d.state = StateResolved
	d.identifier = id

	concrete, err := d.concreteDescriptor(row)
	if err != nil {
		return err
	}
	if concrete == nil {
		if d.toOne.Optional {
			d.missing()
			return nil
		}
		return FetchNotFoundError{Entity: d.target.Name(), ID: id}
	}

	if d.toOne.SelectByUniqueKey() {
		return d.resolveByUniqueKey(ctx, row, concrete)
	}
	return d.resolveByPrimaryKey(ctx, row, concrete)
}

// ResolveInstanceValue implements Initializer: resolution with an instance
// supplied by the owner, bypassing identifier assembly. A nil instance means
// the association is absent for this row.
func (d *DelayedFetch) ResolveInstanceValue(ctx context.Context, row *RowState, instance any) error {
	if d.state != StateKeyResolved {
		return nil
	}
	if instance == nil {
		d.missing()
		return nil
	}
	d.state = StateResolved
	d.ref = asReference(instance)

	if p, ok := instance.(*session.Proxy); ok {
		d.identifier = p.Key().ID
	} else {
		d.identifier = d.target.IdentifierOf(instance)
	}

	if sub := d.idAssembler.Initializer(); sub != nil {
		return sub.ResolveInstanceValue(ctx, row, d.identifier)
	}
	if !row.QueryCacheHit() && row.ResultCachingEnabled() {
		d.idAssembler.ResolveState(row)
	}
	return nil
}

// InitializeInstance implements Initializer. Delayed fetches never populate
// target state.
func (d *DelayedFetch) InitializeInstance(_ context.Context, _ *RowState) error {
	return nil
}

// Reset implements Initializer.
func (d *DelayedFetch) Reset() {
	d.state = StateUninitialized
	d.identifier = nil
	d.ref = Absent()
}

// EachSubInitializer implements Initializer: the only possible child is the
// identifier assembler's initializer.
func (d *DelayedFetch) EachSubInitializer(fn func(Initializer) error) error {
	if sub := d.idAssembler.Initializer(); sub != nil {
		return fn(sub)
	}
	return nil
}

func (d *DelayedFetch) String() string {
	return fmt.Sprintf("DelayedFetch(%s -> %s)", d.path, d.target.Name())
}

// concreteDescriptor resolves the row's concrete target descriptor. Without a
// discriminator assembler the mapped target is concrete already; the
// discriminator column is never read in that case.
func (d *DelayedFetch) concreteDescriptor(row *RowState) (*persister.Descriptor, error) {
	if d.discAssembler == nil {
		return d.target, nil
	}
	disc, err := d.discAssembler.Assemble(row)
	if err != nil {
		return nil, fmt.Errorf("assemble %s discriminator: %w", d.path, err)
	}
	concrete, err := row.Session().ResolveConcrete(d.target, disc)
	if err != nil {
		return nil, fmt.Errorf("resolve %s concrete type: %w", d.path, err)
	}
	return concrete, nil
}

// resolveByUniqueKey resolves the association through an alternate unique
// property of the target.
func (d *DelayedFetch) resolveByUniqueKey(ctx context.Context, row *RowState, concrete *persister.Descriptor) error {
	sess := row.Session()
	pc := sess.PersistenceContext()
	uk := session.UniqueKey{Entity: concrete.Name(), Property: d.toOne.ReferencedProperty, Value: d.identifier}

	instance := pc.EntityByUniqueKey(uk)
	if instance == nil {
		if d.toOne.Lazy {
			d.ref = Deferred()
			return nil
		}
		loaded, err := sess.LoadByUniqueKey(ctx, concrete.Name(), d.toOne.ReferencedProperty, d.identifier)
		if err != nil {
			return err
		}
		pc.AddEntityByUniqueKey(uk, loaded)
		instance = loaded
	}
	if instance == nil {
		d.ref = Absent()
		return nil
	}
	key := session.EntityKey{Entity: concrete.Name(), ID: concrete.IdentifierOf(instance)}
	d.ref = asReference(pc.ProxyFor(key, instance))
	return nil
}

// resolveByPrimaryKey resolves the association through the target primary
// key: canonical identity-map representation first, then the lazy placeholder
// for optional lazy slots, then a proxy-or-load through the session.
func (d *DelayedFetch) resolveByPrimaryKey(ctx context.Context, row *RowState, concrete *persister.Descriptor) error {
	sess := row.Session()
	pc := sess.PersistenceContext()
	key := session.EntityKey{Entity: concrete.Name(), ID: d.identifier}

	if h := pc.EntityHolder(key); h != nil && (h.Entity() != nil || h.Proxy() != nil) {
		d.ref = asReference(pc.ProxyForHolder(h))
		return nil
	}

	if d.toOne.Optional && d.toOne.Lazy {
		d.ref = Deferred()
		return nil
	}

	instance, err := sess.InternalLoad(ctx, concrete.Name(), d.identifier, false, false)
	if err != nil {
		return err
	}
	d.ref = asReference(instance)
	if p := d.ref.Proxy(); p != nil {
		p.SetUnwrap(d.toOne.UnwrapProxy && concrete.Instrumented)
	}
	return nil
}

func (d *DelayedFetch) missing() {
	d.state = StateMissing
	d.identifier = nil
	d.ref = Absent()
}

var _ Initializer = (*DelayedFetch)(nil)
