package session

import (
	"context"
	"fmt"
)

// Proxy is a lazy stand-in for an entity. It carries the target key and a
// fetch hook that performs the real load on first substantive access. Proxies
// belong to a single unit of work and are not goroutine-safe.
type Proxy struct {
	key     EntityKey
	unwrap  bool
	fetched bool
	target  any
	fetch   func(ctx context.Context) (any, error)
}

// NewProxy constructs an uninitialized proxy for key backed by fetch.
func NewProxy(key EntityKey, fetch func(ctx context.Context) (any, error)) *Proxy {
	return &Proxy{key: key, fetch: fetch}
}

// Key returns the entity key the proxy stands in for.
func (p *Proxy) Key() EntityKey { return p.key }

// Unwrap reports whether the proxy should transparently deserialize into the
// real instance on first access.
func (p *Proxy) Unwrap() bool { return p.unwrap }

// SetUnwrap toggles transparent unwrapping.
func (p *Proxy) SetUnwrap(v bool) { p.unwrap = v }

// Initialized reports whether the target has been fetched.
func (p *Proxy) Initialized() bool { return p.fetched }

// Get returns the target instance, triggering the load exactly once.
func (p *Proxy) Get(ctx context.Context) (any, error) {
	if p.fetched {
		return p.target, nil
	}
	if p.fetch == nil {
		return nil, fmt.Errorf("proxy %s has no fetch hook", p.key)
	}
	target, err := p.fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("initialize proxy %s: %w", p.key, err)
	}
	p.attach(target)
	return p.target, nil
}

// attach records an already-loaded target without invoking the fetch hook.
func (p *Proxy) attach(target any) {
	p.target = target
	p.fetched = true
}

func (p *Proxy) String() string {
	state := "uninitialized"
	if p.fetched {
		state = "initialized"
	}
	return fmt.Sprintf("Proxy(%s, %s)", p.key, state)
}
