// Package mapping holds the static metadata describing entities and their
// single-valued associations. Values in this package are built once at plan
// time and shared read-only across rows and sessions.
package mapping

import "strings"

// IdentifierLocalName marks a path segment that navigates into an entity
// identifier. Paths containing it participate in key resolution.
const IdentifierLocalName = "{id}"

// NavigablePath identifies the logical route from a query root to an
// association, e.g. "root.manager". It is immutable; Append returns a new path.
type NavigablePath string

// RootPath constructs a path anchored at the named query root.
func RootPath(name string) NavigablePath {
	return NavigablePath(name)
}

// Append extends the path by one segment.
func (p NavigablePath) Append(part string) NavigablePath {
	if p == "" {
		return NavigablePath(part)
	}
	return NavigablePath(string(p) + "." + part)
}

// Parent returns the path without its final segment, or "" at the root.
func (p NavigablePath) Parent() NavigablePath {
	idx := strings.LastIndexByte(string(p), '.')
	if idx < 0 {
		return ""
	}
	return p[:idx]
}

// Local returns the final segment of the path.
func (p NavigablePath) Local() string {
	idx := strings.LastIndexByte(string(p), '.')
	return string(p[idx+1:])
}

// PointsToIdentifier reports whether any segment of the path navigates into an
// entity identifier, meaning values fetched along it belong to a key.
func (p NavigablePath) PointsToIdentifier() bool {
	for _, seg := range strings.Split(string(p), ".") {
		if seg == IdentifierLocalName {
			return true
		}
	}
	return false
}

func (p NavigablePath) String() string { return string(p) }
