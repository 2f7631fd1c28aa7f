package session

import (
	"context"
	"testing"
)

func TestContextAddEntityIsCanonical(t *testing.T) {
	pc := NewContext()
	key := EntityKey{Entity: "Company", ID: "c-1"}

	entity := map[string]any{"id": "c-1"}
	h := pc.AddEntity(key, entity)
	if h == nil || h.Entity() == nil {
		t.Fatalf("holder should carry the instance")
	}
	if got := pc.EntityHolder(key); got != h {
		t.Fatalf("holder lookup should return the same entry")
	}
	if got := pc.ProxyForHolder(h); got == nil {
		t.Fatalf("canonical representation missing")
	}
}

func TestContextProxyIsPreserved(t *testing.T) {
	pc := NewContext()
	key := EntityKey{Entity: "Company", ID: "c-1"}

	first := NewProxy(key, nil)
	if got := pc.AddProxy(key, first); got != first {
		t.Fatalf("first proxy should be registered")
	}
	second := NewProxy(key, nil)
	if got := pc.AddProxy(key, second); got != first {
		t.Fatalf("existing proxy must remain canonical")
	}

	// Registering the real instance keeps the proxy as the canonical
	// representation and attaches the instance to it.
	entity := map[string]any{"id": "c-1"}
	h := pc.AddEntity(key, entity)
	if got := pc.ProxyForHolder(h); got != first {
		t.Fatalf("canonical representation should stay the proxy")
	}
	if !first.Initialized() {
		t.Fatalf("proxy should be attached to the registered instance")
	}
	target, err := first.Get(context.Background())
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if target == nil {
		t.Fatalf("attached proxy should expose the instance")
	}
}

func TestContextProxyFor(t *testing.T) {
	pc := NewContext()
	key := EntityKey{Entity: "Company", ID: "c-1"}
	entity := map[string]any{"id": "c-1"}

	if got := pc.ProxyFor(key, entity); got == nil {
		t.Fatalf("without a proxy the instance itself is canonical")
	}
	p := NewProxy(key, nil)
	pc.AddProxy(key, p)
	if got := pc.ProxyFor(key, entity); got != p {
		t.Fatalf("with a proxy registered the proxy is canonical")
	}
}

func TestContextUniqueKeyIndex(t *testing.T) {
	pc := NewContext()
	uk := UniqueKey{Entity: "Company", Property: "taxID", Value: "T-9"}

	if got := pc.EntityByUniqueKey(uk); got != nil {
		t.Fatalf("unexpected unique-key hit")
	}
	pc.AddEntityByUniqueKey(uk, nil)
	if got := pc.EntityByUniqueKey(uk); got != nil {
		t.Fatalf("nil instances must not be indexed")
	}
	entity := map[string]any{"taxID": "T-9"}
	pc.AddEntityByUniqueKey(uk, entity)
	if got := pc.EntityByUniqueKey(uk); got == nil {
		t.Fatalf("unique-key lookup should hit after registration")
	}
}

func TestKeyStrings(t *testing.T) {
	ek := EntityKey{Entity: "Company", ID: 7}
	if got := ek.String(); got != "Company#7" {
		t.Fatalf("unexpected entity key string: %s", got)
	}
	uk := UniqueKey{Entity: "Company", Property: "taxID", Value: "T-9"}
	if got := uk.String(); got != "Company.taxID=T-9" {
		t.Fatalf("unexpected unique key string: %s", got)
	}
}
