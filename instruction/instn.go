package instruction

// MaxOperands bounds the operand array LineParser fills — four is enough
// for every real x86 form including AVX-512 four-operand FMA encodings.
const MaxOperands = 4

// PrefixSlot identifies one of the fixed prefix slots add_prefix writes
// into. Two tokens targeting the same slot on one line are a
// redundant/conflict case the parser must diagnose rather than silently
// overwrite.
type PrefixSlot int

const (
	SlotLockRep PrefixSlot = iota
	SlotSegment
	SlotOpSize
	SlotAddrSize
	SlotRex
	SlotVex
	numPrefixSlots
)

// Instruction is the fully parsed statement record LineParser publishes.
type Instruction struct {
	// Label is the identifier recognised at the start of the line, if
	// any, without its trailing colon.
	Label string

	Opcode Opcode

	// Times is the replication count from a leading TIMES token: 1 when
	// absent, 0 when the evaluated count was negative (after the
	// diagnostic has already fired).
	Times int64

	Operands    [MaxOperands]Operand
	OperandCount int

	// Prefixes maps a fixed prefix slot to the token-id occupying it;
	// zero means the slot is empty.
	Prefixes [numPrefixSlots]int64

	// Eops holds the data-declaration element list; populated only when
	// Opcode is a DB-family pseudo-op or INCBIN.
	Eops []*Extop

	// ForwRef is set when any operand involved an unresolved forward
	// reference during this pass.
	ForwRef bool

	// EvexBrerop is the index of the operand carrying a
	// broadcast/SAE/ER decorator, or -1 if none does.
	EvexBrerop int

	// EvexRm is the rounding/SAE mode id, valid only when EvexBrerop >= 0.
	EvexRm int
}

// New returns a zero Instruction ready for LineParser to fill: opcode
// None, times 1, no operands, every prefix slot empty, EvexBrerop -1.
func New() *Instruction {
	return &Instruction{
		Opcode:     None,
		Times:      1,
		EvexBrerop: -1,
	}
}

// AddOperand appends op as the next operand, returning its index. Panics
// if the instruction already holds MaxOperands operands — LineParser
// enforces the MAX_OPERANDS limit itself before calling this.
func (in *Instruction) AddOperand(op Operand) int {
	idx := in.OperandCount
	in.Operands[idx] = op
	in.OperandCount++
	return idx
}

// Ok reports whether parsing produced a usable instruction (a non-None
// opcode, or a deliberately synthesised prefix-only RESB 0).
func (in *Instruction) Ok() bool { return in.Opcode != None }
