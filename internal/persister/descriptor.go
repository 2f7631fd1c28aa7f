// Package persister provides the runtime companions of entity mappings: the
// descriptors that know how to identify, hydrate, and polymorphically resolve
// entity instances, and the registry that indexes them by entity name.
package persister

import (
	"fmt"

	"hydrate/pkg/mapping"
)

// Descriptor binds an entity mapping to the runtime behavior the
// materialization layer needs. Descriptors are immutable after registration
// and shared across sessions.
type Descriptor struct {
	// Meta is the static mapping metadata for the entity.
	Meta mapping.Entity
	// Hydrate materializes an entity instance from a raw column map.
	Hydrate func(row map[string]any) (any, error)
	// IdentifierOf extracts the primary identifier from an instance.
	IdentifierOf func(instance any) any
	// Instrumented reports whether instances carry interception hooks that
	// make transparent proxy unwrapping safe.
	Instrumented bool
}

// Name returns the mapped entity name.
func (d *Descriptor) Name() string { return d.Meta.Name }

// Proxies reports whether the entity may be represented by a lazy proxy.
func (d *Descriptor) Proxies() bool { return d.Meta.Proxies }

// ConcreteProxy reports whether proxies resolve the concrete subtype.
func (d *Descriptor) ConcreteProxy() bool { return d.Meta.ConcreteProxy }

// SubtypeFor resolves a discriminator value to a concrete entity name, or ""
// when the value selects no mapped subtype.
func (d *Descriptor) SubtypeFor(discriminator any) string {
	if discriminator == nil {
		return ""
	}
	return d.Meta.SubtypesByDiscriminator[discriminator]
}

func (d *Descriptor) validate() error {
	if d.Meta.Name == "" {
		return fmt.Errorf("descriptor requires an entity name")
	}
	if d.Hydrate == nil {
		return fmt.Errorf("descriptor %s requires a Hydrate func", d.Meta.Name)
	}
	if d.IdentifierOf == nil {
		return fmt.Errorf("descriptor %s requires an IdentifierOf func", d.Meta.Name)
	}
	return nil
}
