package persister

import "fmt"

// Registry indexes descriptors by entity name. It is populated once at
// bootstrap and read-only afterwards; lookups are not synchronized.
type Registry struct {
	byName map[string]*Descriptor
}

// NewRegistry constructs an empty descriptor registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]*Descriptor)}
}

// Register adds a descriptor. Duplicate entity names are rejected.
func (r *Registry) Register(d *Descriptor) error {
	if d == nil {
		return fmt.Errorf("descriptor cannot be nil")
	}
	if err := d.validate(); err != nil {
		return err
	}
	if _, ok := r.byName[d.Meta.Name]; ok {
		return fmt.Errorf("descriptor %s already registered", d.Meta.Name)
	}
	r.byName[d.Meta.Name] = d
	return nil
}

// Descriptor looks up a descriptor by entity name.
func (r *Registry) Descriptor(name string) (*Descriptor, bool) {
	d, ok := r.byName[name]
	return d, ok
}

// ResolveConcrete resolves the concrete descriptor for a base entity given a
// discriminator value. It returns nil when the discriminator selects no mapped
// subtype; a discriminator selecting an unregistered subtype is an error since
// it indicates an inconsistent mapping model.
func (r *Registry) ResolveConcrete(base *Descriptor, discriminator any) (*Descriptor, error) {
	name := base.SubtypeFor(discriminator)
	if name == "" {
		return nil, nil
	}
	concrete, ok := r.byName[name]
	if !ok {
		return nil, fmt.Errorf("subtype %s of %s is not registered", name, base.Name())
	}
	return concrete, nil
}
