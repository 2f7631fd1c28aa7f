package engine

import (
	"fmt"

	"hydrate/internal/session"
)

// RefKind discriminates the representations an association slot can take.
type RefKind int

const (
	// RefAbsent means the association has no target for this row.
	RefAbsent RefKind = iota
	// RefDeferred is the lazy placeholder: no value is materialized and no
	// proxy exists; the attribute loads on first explicit access.
	RefDeferred
	// RefProxy holds an uninitialized (or later initialized) lazy proxy.
	RefProxy
	// RefLoaded holds a real entity instance.
	RefLoaded
)

func (k RefKind) String() string {
	switch k {
	case RefAbsent:
		return "absent"
	case RefDeferred:
		return "deferred"
	case RefProxy:
		return "proxy"
	case RefLoaded:
		return "loaded"
	default:
		return fmt.Sprintf("RefKind(%d)", int(k))
	}
}

// Reference is the tagged representation of a resolved association slot:
// absent, deferred placeholder, proxy, or loaded instance. The zero value is
// absent.
type Reference struct {
	kind  RefKind
	value any
}

// Absent returns the absent reference.
func Absent() Reference { return Reference{} }

// Deferred returns the lazy placeholder reference.
func Deferred() Reference { return Reference{kind: RefDeferred} }

// ProxyRef wraps a session proxy.
func ProxyRef(p *session.Proxy) Reference {
	if p == nil {
		return Absent()
	}
	return Reference{kind: RefProxy, value: p}
}

// Loaded wraps a real entity instance.
func Loaded(instance any) Reference {
	if instance == nil {
		return Absent()
	}
	return Reference{kind: RefLoaded, value: instance}
}

// asReference classifies a canonical representation produced by the
// persistence context.
func asReference(v any) Reference {
	switch t := v.(type) {
	case nil:
		return Absent()
	case *session.Proxy:
		return ProxyRef(t)
	default:
		return Loaded(t)
	}
}

// Kind returns the representation tag.
func (r Reference) Kind() RefKind { return r.kind }

// IsAbsent reports whether the association has no target.
func (r Reference) IsAbsent() bool { return r.kind == RefAbsent }

// IsDeferred reports whether the slot holds the lazy placeholder.
func (r Reference) IsDeferred() bool { return r.kind == RefDeferred }

// Proxy returns the held proxy, or nil for other kinds.
func (r Reference) Proxy() *session.Proxy {
	if r.kind != RefProxy {
		return nil
	}
	return r.value.(*session.Proxy)
}

// Instance returns the materialized value for loaded or proxy references and
// nil otherwise. Callers needing to distinguish absent from deferred must
// inspect Kind.
func (r Reference) Instance() any {
	switch r.kind {
	case RefLoaded, RefProxy:
		return r.value
	default:
		return nil
	}
}

func (r Reference) String() string {
	switch r.kind {
	case RefAbsent, RefDeferred:
		return r.kind.String()
	default:
		return fmt.Sprintf("%s(%v)", r.kind, r.value)
	}
}
