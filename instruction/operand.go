package instruction

import "github.com/kstmt/x86line/internal/registers"

// Type is the operand type bitset: size bits, kind bits, vector-memory
// class refinements, and a regset-size sub-field, all packed into one
// value the way NASM's opflags_t does, reshaped with named Go constants
// instead of the C preprocessor's OP_* macro soup.
type Type uint64

const (
	Bits8 Type = 1 << iota
	Bits16
	Bits32
	Bits64
	Bits80
	Bits128
	Bits256
	Bits512

	KindRegister
	KindMemory
	KindIPRelative
	KindMemOffs
	KindImmediate
	KindFar
	KindNear
	KindShort
	KindTo
	KindStrict
	KindColon

	// ClassXMem, ClassYMem, ClassZMem refine KindMemory: set when the
	// index register driving the memory reference is itself a vector
	// register, per mref_set_optype (§4.3).
	ClassXMem
	ClassYMem
	ClassZMem

	// ImmUnity and the ImmS*/ImmU* bits classify how narrowly an
	// immediate's numeric value fits, set by imm_flags (§4.3) so an
	// encoder can pick the shortest legal form.
	ImmUnity
	ImmSByteDword
	ImmSByteWord
	ImmUDword
	ImmSDword

	// regsetShift is the bit position where the regset-size sub-field
	// (a power-of-two element count, stored as its log2 plus one so that
	// zero means unset) begins. Reserve 4 bits: sizes up to log2==14
	// (16384-wide) easily cover every AVX-512 mask width in use.
	regsetShift = iota
)

const regsetMask Type = 0xf << regsetShift

// SizeMask is every size bit OR'd together, used to clear/test the size
// sub-field independent of kind bits.
const SizeMask = Bits8 | Bits16 | Bits32 | Bits64 | Bits80 | Bits128 | Bits256 | Bits512

// RegsetSize returns the decoded regset-size sub-field (a power of two),
// or 0 if unset.
func (t Type) RegsetSize() int {
	log2 := (t & regsetMask) >> regsetShift
	if log2 == 0 {
		return 0
	}
	return 1 << (log2 - 1)
}

// WithRegsetSize returns t with the regset-size sub-field set to size,
// which must already be a power of two.
func (t Type) WithRegsetSize(size int) Type {
	log2 := Type(0)
	for size > 1 {
		size >>= 1
		log2++
	}
	t &^= regsetMask
	return t | ((log2 + 1) << regsetShift)
}

// IsRegister, IsMemory, IsImmediate report the operand's primary kind.
// After parsing exactly one of these three is true — invariant enforced
// by OperandParser's classification step.
func (t Type) IsRegister() bool  { return t&KindRegister != 0 }
func (t Type) IsMemory() bool    { return t&KindMemory != 0 }
func (t Type) IsImmediate() bool { return t&KindImmediate != 0 }

// EAFlags are effective-address modifiers recorded on a memory operand.
type EAFlags uint8

const (
	EAAbs EAFlags = 1 << iota
	EARel
	EAFsGs
	EATimesTwo
	EAByteOffs
	EAWordOffs
)

// DecoFlags are the EVEX decorator bits recorded on any operand — opmask
// register index, zeroing, broadcast (with its encoded N), SAE and ER.
type DecoFlags uint32

const decoOpmaskMask DecoFlags = 0x7 // k0-k7 fit in 3 bits

const (
	DecoZ DecoFlags = 1 << (3 + iota)
	DecoBroadcast
	DecoSAE
	DecoER
)

const decoBroadcastShift = 7
const decoBroadcastMask DecoFlags = 0x7 << decoBroadcastShift

// Opmask returns the opmask register index (0 meaning k0, i.e. "no mask").
func (d DecoFlags) Opmask() int { return int(d & decoOpmaskMask) }

// HasBroadcast, HasSAE, HasER report whether the corresponding decorator
// bit is set.
func (d DecoFlags) HasBroadcast() bool { return d&DecoBroadcast != 0 }
func (d DecoFlags) HasSAE() bool       { return d&DecoSAE != 0 }
func (d DecoFlags) HasER() bool        { return d&DecoER != 0 }

// WithOpmask returns d with its opmask sub-field set to k (0-7).
func (d DecoFlags) WithOpmask(k int) DecoFlags {
	return (d &^ decoOpmaskMask) | DecoFlags(k)&decoOpmaskMask
}

// BroadcastNumber returns the encoded {1toN} broadcast count's log2, or 0
// if DecoBroadcast is unset.
func (d DecoFlags) BroadcastNumber() int { return int((d & decoBroadcastMask) >> decoBroadcastShift) }

// WithBroadcastNumber returns d with DecoBroadcast set and its N sub-field
// set to n (already log2-encoded, e.g. 1to16 -> 4).
func (d DecoFlags) WithBroadcastNumber(n int) DecoFlags {
	d = (d &^ decoBroadcastMask) | (DecoFlags(n)<<decoBroadcastShift)&decoBroadcastMask
	return d | DecoBroadcast
}

// OpFlags are evaluator-derived facts about an operand's value that
// outlive the Type bitset: whether the value is as-yet unknown (a forward
// reference that hasn't resolved this pass), whether it is specifically a
// forward reference, and whether it denotes a self-relative (RIP==value)
// computation.
type OpFlags uint8

const (
	OpUnknown OpFlags = 1 << iota
	OpForward
	OpRelative
)

// Operand is one parsed operand slot.
type Operand struct {
	Type      Type
	OpFlags   OpFlags
	EAFlags   EAFlags
	DecoFlags DecoFlags

	// DispSize is the size in bits of an explicit displacement override
	// inside a memory reference: 0, 8, 16, 32 or 64.
	DispSize int

	BaseReg  registers.ID
	IndexReg registers.ID
	Scale    int64

	Offset int64

	Segment int32
	Wrt     int32

	// HintBase and HintType record a preferred-base encoding hint, used
	// by the encoder to disambiguate equivalent ModRM encodings (e.g.
	// [eax+ebx] vs [ebx+eax]) without affecting semantics.
	HintBase int
	HintType int

	// Iflag carries the secondary integer payload of a braced-constant
	// operand (e.g. `{3}` used as a rounding-mode literal).
	Iflag int64
}

// NoSeg is the sentinel segment id meaning "no segment". Mirrors
// asmctx.NoSeg; operand.go keeps its own copy rather than importing
// asmctx, because a freestanding Operand value should not depend on the
// parser's process-wide context type.
const NoSeg int32 = -1

// NewOperand returns a zero operand with every register/segment field set
// to its sentinel — the "absent" state a fresh operand slot starts in.
func NewOperand() Operand {
	return Operand{
		BaseReg:  registers.NoReg,
		IndexReg: registers.NoReg,
		Segment:  NoSeg,
		Wrt:      NoSeg,
	}
}
