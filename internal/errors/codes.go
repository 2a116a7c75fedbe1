// Package errors defines mumei's error code taxonomy and the
// structured Report every compiler phase returns.
package errors

// Error code constants organized by phase.
const (
	// ============================================================
	// Parser Errors (PAR###)
	// ============================================================

	// PAR001 indicates an unexpected token was encountered.
	PAR001 = "PAR001"
	// PAR002 indicates a missing closing delimiter.
	PAR002 = "PAR002"
	// PAR003 indicates invalid atom declaration syntax.
	PAR003 = "PAR003"
	// PAR004 indicates invalid type definition syntax.
	PAR004 = "PAR004"
	// PAR005 indicates invalid struct definition syntax.
	PAR005 = "PAR005"
	// PAR006 indicates invalid import statement syntax.
	PAR006 = "PAR006"

	// ============================================================
	// Import/Resolver Errors (IMP###)
	// ============================================================

	// IMP001 indicates an imported module could not be found or read.
	IMP001 = "IMP001"
	// IMP002 indicates a circular import was detected.
	IMP002 = "IMP002"
	// IMP003 indicates a duplicate non-FQN registration.
	IMP003 = "IMP003"

	// ============================================================
	// Type Registry Errors (TYP###)
	// ============================================================

	// TYP001 indicates a reference to an unknown type name.
	TYP001 = "TYP001"
	// TYP002 indicates the refined-type base-type chain exceeded the
	// resolution depth bound.
	TYP002 = "TYP002"

	// ============================================================
	// Verification Errors (VER###)
	// ============================================================

	// VER001 indicates an obligation was refuted (Sat on its negation).
	VER001 = "VER001"
	// VER002 indicates an unbounded while loop has no invariant.
	VER002 = "VER002"
	// VER003 indicates the solver returned Unknown (timeout or
	// incompleteness) and the generator fails conservatively.
	VER003 = "VER003"
	// VER004 indicates an IfThenElse's two branches disagree on kind
	// (integer, float, or boolean).
	VER004 = "VER004"
	// VER005 indicates a While's invariant expression is not
	// boolean-typed.
	VER005 = "VER005"

	// ============================================================
	// Codegen Errors (COD###)
	// ============================================================

	// COD001 indicates a variable reference with no SSA binding.
	COD001 = "COD001"
	// COD002 indicates an expression shape the IR backend cannot lower.
	COD002 = "COD002"

	// ============================================================
	// I/O Errors (IO###)
	// ============================================================

	// IO001 indicates a source read, IR write, or report write failure.
	IO001 = "IO001"
)
