package mapping

import "fmt"

// NotFoundAction controls how a dangling foreign key is treated when the
// association target row does not exist.
type NotFoundAction int

const (
	// NotFoundNone applies no special handling; dangling keys surface as
	// load failures at access time.
	NotFoundNone NotFoundAction = iota
	// NotFoundIgnore treats a dangling key as an absent association.
	NotFoundIgnore
	// NotFoundException fails the load when the target row is missing.
	NotFoundException
)

func (a NotFoundAction) String() string {
	switch a {
	case NotFoundNone:
		return "none"
	case NotFoundIgnore:
		return "ignore"
	case NotFoundException:
		return "exception"
	default:
		return fmt.Sprintf("NotFoundAction(%d)", int(a))
	}
}

// ToOne describes a single-valued association from an owning entity to a
// target entity. Instances are built once per mapping model and shared.
type ToOne struct {
	// Path locates the association relative to the query root.
	Path NavigablePath
	// Target is the mapped target entity name.
	Target string
	// Optional marks the association as nullable on the owning side.
	Optional bool
	// Lazy defers materialization of the target until first access.
	Lazy bool
	// ReferencedProperty names the target property the foreign key refers
	// to. Empty means the association resolves by primary key.
	ReferencedProperty string
	// UnwrapProxy requests that proxies transparently deserialize into the
	// real instance on first access.
	UnwrapProxy bool
	// NotFound is the dangling-key policy for this association.
	NotFound NotFoundAction
}

// SelectByUniqueKey reports whether the association resolves through an
// alternate unique key rather than the target primary key.
func (m ToOne) SelectByUniqueKey() bool {
	return m.ReferencedProperty != ""
}
