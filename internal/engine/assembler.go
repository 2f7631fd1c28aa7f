package engine

// Assembler produces one value per row for a position in the result plan.
// Assemblers are static plan nodes; all per-row data flows through RowState.
type Assembler interface {
	// Assemble returns the current row's value for this plan position.
	Assemble(row *RowState) (any, error)
	// Initializer returns the nested initializer backing this assembler,
	// or nil for plain value assemblers.
	Initializer() Initializer
	// ResolveState forces resolution of the assembler's underlying row
	// state so the value is available for cache-entry construction.
	ResolveState(row *RowState)
}

// BasicAssembler reads a raw row value at a fixed position. It is the
// assembler form used for identifier and discriminator columns.
type BasicAssembler struct {
	pos int
}

// NewBasicAssembler constructs an assembler for the given row position.
func NewBasicAssembler(pos int) *BasicAssembler {
	return &BasicAssembler{pos: pos}
}

// Assemble implements Assembler.
func (a *BasicAssembler) Assemble(row *RowState) (any, error) {
	return row.Value(a.pos), nil
}

// Initializer implements Assembler; basic assemblers have none.
func (a *BasicAssembler) Initializer() Initializer { return nil }

// ResolveState implements Assembler. Reading the position is sufficient; the
// value lives in the row state already.
func (a *BasicAssembler) ResolveState(row *RowState) {
	_ = row.Value(a.pos)
}
