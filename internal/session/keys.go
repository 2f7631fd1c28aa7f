package session

import "fmt"

// EntityKey identifies one entity within a unit of work by entity name and
// primary identifier. Identifier values must be comparable.
type EntityKey struct {
	Entity string
	ID     any
}

func (k EntityKey) String() string {
	return fmt.Sprintf("%s#%v", k.Entity, k.ID)
}

// UniqueKey identifies one entity by an alternate unique property value.
type UniqueKey struct {
	Entity   string
	Property string
	Value    any
}

func (k UniqueKey) String() string {
	return fmt.Sprintf("%s.%s=%v", k.Entity, k.Property, k.Value)
}

// Holder is the identity-map entry for one entity key. It may carry a managed
// instance, a registered proxy, or both once a proxy has been initialized.
type Holder struct {
	key    EntityKey
	entity any
	proxy  *Proxy
}

// Key returns the entity key the holder is registered under.
func (h *Holder) Key() EntityKey { return h.key }

// Entity returns the managed instance, or nil while only a proxy exists.
func (h *Holder) Entity() any { return h.entity }

// Proxy returns the registered proxy, or nil when none was created.
func (h *Holder) Proxy() *Proxy { return h.proxy }
