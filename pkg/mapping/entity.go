package mapping

// Entity describes entity-level mapping metadata: naming, identifier shape,
// polymorphism, and proxy capabilities. Identifier values must be comparable
// since they key the session identity map.
type Entity struct {
	// Name is the logical entity name, unique within a registry.
	Name string
	// IdentifierProperty is the property holding the primary identifier.
	IdentifierProperty string
	// DiscriminatorColumn names the row value selecting a concrete subtype,
	// empty for non-polymorphic entities.
	DiscriminatorColumn string
	// SubtypesByDiscriminator maps discriminator values to concrete entity
	// names. A discriminator value absent from the map resolves no subtype.
	SubtypesByDiscriminator map[any]string
	// Proxies reports whether the entity may be represented by a lazy proxy.
	Proxies bool
	// ConcreteProxy reports whether proxies for this entity resolve the
	// concrete subtype before materialization.
	ConcreteProxy bool
}

// Polymorphic reports whether the entity maps concrete subtypes by
// discriminator value.
func (e Entity) Polymorphic() bool {
	return len(e.SubtypesByDiscriminator) > 0
}
