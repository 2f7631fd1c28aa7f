package session

import (
	"context"
	"errors"
	"testing"

	"hydrate/internal/cache"
	"hydrate/internal/persister"
	"hydrate/pkg/mapping"
)

// stubLoader serves canned rows and counts accesses.
type stubLoader struct {
	rows     map[string]map[string]map[string]any // entity -> id -> row
	loads    int
	byProp   int
	failWith error
}

func newStubLoader() *stubLoader {
	return &stubLoader{rows: make(map[string]map[string]map[string]any)}
}

func (l *stubLoader) add(entity, id string, row map[string]any) {
	if l.rows[entity] == nil {
		l.rows[entity] = make(map[string]map[string]any)
	}
	l.rows[entity][id] = row
}

func (l *stubLoader) LoadRow(_ context.Context, entity string, id any) (map[string]any, error) {
	l.loads++
	if l.failWith != nil {
		return nil, l.failWith
	}
	key, _ := id.(string)
	row, ok := l.rows[entity][key]
	if !ok {
		return nil, nil
	}
	return row, nil
}

func (l *stubLoader) LoadRowByProperty(_ context.Context, entity, property string, value any) (map[string]any, error) {
	l.byProp++
	if l.failWith != nil {
		return nil, l.failWith
	}
	for _, row := range l.rows[entity] {
		if row[property] == value {
			return row, nil
		}
	}
	return nil, nil
}

func companyRegistry(t *testing.T, proxies bool) *persister.Registry {
	t.Helper()
	reg := persister.NewRegistry()
	err := reg.Register(&persister.Descriptor{
		Meta: mapping.Entity{Name: "Company", IdentifierProperty: "id", Proxies: proxies},
		Hydrate: func(row map[string]any) (any, error) {
			cpy := make(map[string]any, len(row))
			for k, v := range row {
				cpy[k] = v
			}
			return cpy, nil
		},
		IdentifierOf: func(instance any) any { return instance.(map[string]any)["id"] },
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	return reg
}

func TestInternalLoadReturnsProxyWhenLazy(t *testing.T) {
	loader := newStubLoader()
	loader.add("Company", "c-1", map[string]any{"id": "c-1", "name": "Initech"})
	sess := New(companyRegistry(t, true), loader)

	got, err := sess.InternalLoad(context.Background(), "Company", "c-1", false, false)
	if err != nil {
		t.Fatalf("internal load: %v", err)
	}
	p, ok := got.(*Proxy)
	if !ok {
		t.Fatalf("expected a proxy, got %T", got)
	}
	if loader.loads != 0 {
		t.Fatalf("proxy creation must not touch the loader")
	}

	target, err := p.Get(context.Background())
	if err != nil {
		t.Fatalf("proxy get: %v", err)
	}
	if target.(map[string]any)["name"] != "Initech" {
		t.Fatalf("unexpected target: %v", target)
	}
	if loader.loads != 1 {
		t.Fatalf("proxy access should load exactly once, got %d", loader.loads)
	}

	// The same key resolves to the same canonical proxy.
	again, err := sess.InternalLoad(context.Background(), "Company", "c-1", false, false)
	if err != nil {
		t.Fatalf("second internal load: %v", err)
	}
	if again != got {
		t.Fatalf("identity map must return the canonical representation")
	}
}

func TestInternalLoadEager(t *testing.T) {
	loader := newStubLoader()
	loader.add("Company", "c-1", map[string]any{"id": "c-1", "name": "Initech"})
	sess := New(companyRegistry(t, true), loader)

	got, err := sess.InternalLoad(context.Background(), "Company", "c-1", true, false)
	if err != nil {
		t.Fatalf("internal load: %v", err)
	}
	if _, ok := got.(*Proxy); ok {
		t.Fatalf("eager load must not return a proxy")
	}
	if loader.loads != 1 {
		t.Fatalf("expected one load, got %d", loader.loads)
	}
	h := sess.PersistenceContext().EntityHolder(EntityKey{Entity: "Company", ID: "c-1"})
	if h == nil || h.Entity() == nil {
		t.Fatalf("loaded entity must be registered in the identity map")
	}
}

func TestInternalLoadMissingRow(t *testing.T) {
	loader := newStubLoader()
	sess := New(companyRegistry(t, false), loader)

	_, err := sess.InternalLoad(context.Background(), "Company", "c-404", false, false)
	var notFound EntityNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected EntityNotFoundError, got %v", err)
	}
	if notFound.Entity != "Company" || notFound.ID != "c-404" {
		t.Fatalf("error should carry entity and id: %+v", notFound)
	}

	got, err := sess.InternalLoad(context.Background(), "Company", "c-404", false, true)
	if err != nil || got != nil {
		t.Fatalf("nullable load of a missing row should be (nil, nil), got (%v, %v)", got, err)
	}
}

func TestInternalLoadUnmappedEntity(t *testing.T) {
	sess := New(persister.NewRegistry(), newStubLoader())
	if _, err := sess.InternalLoad(context.Background(), "Ghost", "g-1", false, false); err == nil {
		t.Fatalf("unmapped entity should error")
	}
}

func TestSecondLevelCacheShortCircuitsLoader(t *testing.T) {
	region, err := cache.NewRegion("entities", 16)
	if err != nil {
		t.Fatalf("new region: %v", err)
	}
	loader := newStubLoader()
	loader.add("Company", "c-1", map[string]any{"id": "c-1", "name": "Initech"})
	reg := companyRegistry(t, false)

	first := New(reg, loader, WithSecondLevelCache(region))
	if _, err := first.InternalLoad(context.Background(), "Company", "c-1", true, false); err != nil {
		t.Fatalf("first load: %v", err)
	}
	if loader.loads != 1 {
		t.Fatalf("expected one loader access, got %d", loader.loads)
	}

	// A second unit of work hydrates from cached state without a load.
	second := New(reg, loader, WithSecondLevelCache(region))
	got, err := second.InternalLoad(context.Background(), "Company", "c-1", true, false)
	if err != nil {
		t.Fatalf("second load: %v", err)
	}
	if loader.loads != 1 {
		t.Fatalf("cache hit must not touch the loader, loads=%d", loader.loads)
	}
	if got.(map[string]any)["name"] != "Initech" {
		t.Fatalf("unexpected instance: %v", got)
	}
}

func TestLoadByUniqueKey(t *testing.T) {
	loader := newStubLoader()
	loader.add("Company", "c-1", map[string]any{"id": "c-1", "taxID": "T-9"})
	sess := New(companyRegistry(t, false), loader)

	got, err := sess.LoadByUniqueKey(context.Background(), "Company", "taxID", "T-9")
	if err != nil {
		t.Fatalf("load by unique key: %v", err)
	}
	if got == nil {
		t.Fatalf("expected an instance")
	}
	h := sess.PersistenceContext().EntityHolder(EntityKey{Entity: "Company", ID: "c-1"})
	if h == nil || h.Entity() == nil {
		t.Fatalf("unique-key load must register under the primary key")
	}

	missing, err := sess.LoadByUniqueKey(context.Background(), "Company", "taxID", "T-0")
	if err != nil || missing != nil {
		t.Fatalf("missing unique key should be (nil, nil), got (%v, %v)", missing, err)
	}
}

func TestLoadErrorsAreWrapped(t *testing.T) {
	loader := newStubLoader()
	loader.failWith = errors.New("connection reset")
	sess := New(companyRegistry(t, false), loader)

	if _, err := sess.InternalLoad(context.Background(), "Company", "c-1", true, false); err == nil {
		t.Fatalf("loader failure should propagate")
	}
	if _, err := sess.LoadByUniqueKey(context.Background(), "Company", "taxID", "T-9"); err == nil {
		t.Fatalf("loader failure should propagate on unique-key path")
	}
}
