package engine

import (
	"context"
	"errors"

	"hydrate/pkg/mapping"
)

// ErrNoChildInitializers is returned by key accessors on leaf initializers.
// Hitting it indicates a caller bug in graph traversal, not a data error.
var ErrNoChildInitializers = errors.New("initializer has no child initializers")

// Initializer is the per-row state machine contract for one navigable path of
// a result plan. A whole-row pass drives every initializer through key
// resolution, instance resolution, and instance initialization, then resets
// it for the next row.
type Initializer interface {
	// NavigablePath locates the initializer within the result plan.
	NavigablePath() mapping.NavigablePath
	// ResolveKey completes the key-resolution phase for the current row.
	ResolveKey(row *RowState) error
	// ResolveInstance resolves the target representation for the current
	// row. Only meaningful after ResolveKey; redundant calls are no-ops.
	ResolveInstance(ctx context.Context, row *RowState) error
	// ResolveInstanceValue short-circuits resolution with a pre-supplied
	// instance, e.g. propagated from a cache hit or the owning side.
	ResolveInstanceValue(ctx context.Context, row *RowState, instance any) error
	// InitializeInstance populates the resolved target's state where the
	// initializer is responsible for it.
	InitializeInstance(ctx context.Context, row *RowState) error
	// Reset clears per-row state ahead of the next row.
	Reset()
	// EachSubInitializer visits nested initializers; traversal stops on the
	// first error.
	EachSubInitializer(fn func(Initializer) error) error
}

// RowReader drives a set of root initializers through whole-row passes.
type RowReader struct {
	inits []Initializer
}

// NewRowReader constructs a reader over the plan's root initializers.
func NewRowReader(inits ...Initializer) *RowReader {
	return &RowReader{inits: inits}
}

// ReadRow runs one full pass over the current row: key resolution for every
// initializer and its children, then instance resolution, then instance
// initialization.
func (r *RowReader) ReadRow(ctx context.Context, row *RowState) error {
	for _, ini := range r.inits {
		if err := resolveKeyDeep(ini, row); err != nil {
			return err
		}
	}
	for _, ini := range r.inits {
		if err := ini.ResolveInstance(ctx, row); err != nil {
			return err
		}
	}
	for _, ini := range r.inits {
		if err := ini.InitializeInstance(ctx, row); err != nil {
			return err
		}
	}
	return nil
}

// FinishRow resets every initializer, including nested ones, for the next row.
func (r *RowReader) FinishRow() {
	for _, ini := range r.inits {
		resetDeep(ini)
	}
}

func resolveKeyDeep(ini Initializer, row *RowState) error {
	if err := ini.ResolveKey(row); err != nil {
		return err
	}
	return ini.EachSubInitializer(func(sub Initializer) error {
		return resolveKeyDeep(sub, row)
	})
}

func resetDeep(ini Initializer) {
	ini.Reset()
	_ = ini.EachSubInitializer(func(sub Initializer) error {
		resetDeep(sub)
		return nil
	})
}
