// Package engine implements the result-materialization core: per-row
// initializers that turn assembled row values into entity references while
// honoring lazy-loading contracts and the session identity map. Initializer
// instances are bound to one navigable path of a result plan and own their
// per-row state exclusively for the duration of a row pass.
package engine

import "fmt"

// State is the per-row lifecycle of an initializer. Transitions are
// Uninitialized -> KeyResolved -> Resolved, with Missing terminal from
// KeyResolved. Identifier and reference fields are only meaningful in
// Resolved and are cleared in Missing.
type State int

const (
	StateUninitialized State = iota
	StateKeyResolved
	StateResolved
	StateMissing
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateKeyResolved:
		return "key-resolved"
	case StateResolved:
		return "resolved"
	case StateMissing:
		return "missing"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}
