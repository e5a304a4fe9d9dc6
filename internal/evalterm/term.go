// Package evalterm is the expression-evaluator collaborator: it reduces a
// token stream into a vector of ExpressionTerm-equivalent records the way
// NASM's eval.c reduces an expr down to a term-kind/coefficient vector —
// grounded on the design note in spec section 9 that replaces the
// original's "tagged union plus zero-kind sentinel" convention with a
// proper Go sum type carried in a plain slice (no sentinel terminator
// needed once the container carries its own length).
package evalterm

import "github.com/kstmt/x86line/internal/registers"

// Kind identifies what a Term actually represents.
type Kind int

const (
	// Register identifies a CPU register; Term.Reg names which one and
	// Term.Value carries its coefficient (1 for a base, the scale factor
	// for an index).
	Register Kind = iota

	// Unknown marks a forward reference that hasn't resolved yet on a
	// non-critical pass.
	Unknown

	// Simple is a plain numeric/constant contribution, already folded
	// (label value + displacement + ... ), accumulated by addition.
	Simple

	// Wrt marks a "WRT <target>" relocation qualifier.
	Wrt

	// SegBase marks a segment-base contribution: Term.Seg names the
	// segment, Term.Value is +1 (assign) or -1 (self-relative check
	// against the current location segment).
	SegBase

	// RdSae marks a standalone rounding/SAE decorator term appearing in
	// operand position rather than trailing an operand expression —
	// Term.Value carries the encoded rounding mode.
	RdSae
)

// Term is one reduced element of an evaluated expression.
type Term struct {
	Kind  Kind
	Reg   registers.ID
	Seg   int32
	Value int64
}

// NewSegBase returns a SegBase term assigning segment seg with
// coefficient coeff (+1 to assign, -1 for the self-relative check).
func NewSegBase(seg int32, coeff int64) Term {
	return Term{Kind: SegBase, Seg: seg, Value: coeff}
}
