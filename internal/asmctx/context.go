// Package asmctx groups the process-wide mutable state the parser reads
// (§5/§9 of the spec) into a single, line-local, pass-by-reference value.
// Grouping these fields here — rather than letting the parser reach for
// package-level globals the way the C original does — is the one
// deliberate structural deviation the spec's design notes call for: it
// makes future per-line parallelism and property-based testing possible
// without the parser itself changing shape.
package asmctx

// Pass identifies which assembler pass is currently running.
type Pass int

const (
	// PassFirst is the initial pass: forward references are tolerated,
	// non-critical evaluation failures are not fatal.
	PassFirst Pass = iota
	// PassStable is any pass after the first where label values are no
	// longer expected to change, but is not yet guaranteed final.
	PassStable
	// PassFinal is the last pass: every expression must resolve.
	PassFinal
)

// SegOff is a (segment, offset) pair identifying a position in the
// program being assembled.
type SegOff struct {
	Segment int32
	Offset  int64
}

// NoSeg is the sentinel segment id meaning "no segment" (NASM's NO_SEG).
const NoSeg int32 = -1

// Context is the immutable-per-line bundle of global assembler state the
// parser and the evaluator read (the scanner and the diagnostics sink do
// not take it). A
// driver constructs one Context per source line (or reuses one and only
// mutates it between lines, never during a parse) and passes it by
// reference into ParseLine.
type Context struct {
	// Bits is the current segment's operand/address width: 16, 32 or 64.
	Bits int

	// GlobalRel is the assembler-wide default for whether a bare
	// [disp] memory operand with no base/index should be encoded
	// IP-relative (true) or as an absolute MEM_OFFS (false) on 64-bit
	// targets.
	GlobalRel bool

	// OptimizeLevel mirrors optimizing.level: negative disables the
	// optimistic immediate-size narrowing in imm_flags.
	OptimizeLevel int

	// TASMCompatible switches size-override-inside-brackets semantics,
	// per process_size_override (§4.3).
	TASMCompatible bool

	// Pass is the current assembler pass.
	Pass Pass

	// Location is the current assembly position: segment and offset.
	Location SegOff

	// InAbsolute and Absolute implement the quirk spec.md §9 calls out
	// explicitly: label definitions inside an ABSOLUTE section use
	// Absolute.Segment instead of Location.Segment.
	InAbsolute bool
	Absolute   SegOff
}

// Critical reports whether expression evaluation in the current pass must
// fail hard on an unresolved symbol rather than tolerate a forward
// reference — true on the final pass, always overridden to true for
// INCBIN regardless of pass by the caller.
func (c *Context) Critical() bool { return c.Pass == PassFinal }

// LabelSegment returns the segment a freshly defined label should be
// recorded against, honouring the ABSOLUTE-section quirk.
func (c *Context) LabelSegment() int32 {
	if c.InAbsolute {
		return c.Absolute.Segment
	}
	return c.Location.Segment
}
