// Package registers is the register table the scanner, evaluator and
// parser all share — grounded on the teacher's architecture/x86_64
// register table, reshaped into a data-driven lookup (one spec slice plus
// a lookup map) instead of one package-level var block per register
// class, and extended with the opmask (k0-k7) register class the EVEX
// decorator grammar needs.
package registers

import "strings"

// Class is a bitset describing what a register can be used as. A single
// register only ever belongs to one size/kind, but the bitset shape lets
// callers ask "is this a GPR" or "is this a vector register" without a
// switch over every individual class.
type Class uint32

const (
	GPR8 Class = 1 << iota
	GPR16
	GPR32
	GPR64
	MMX
	XMM
	YMM
	ZMM
	Segment
	Control
	Debug
	Opmask
	FPU
	RIP
)

// IsGPR reports whether the class is one of the general-purpose register
// sizes.
func (c Class) IsGPR() bool { return c&(GPR8|GPR16|GPR32|GPR64) != 0 }

// IsVector reports whether the class is an XMM/YMM/ZMM SIMD register.
// (mref_set_optype, §4.3, switches on the individual XMM/YMM/ZMM classes
// itself to pick XMEM/YMEM/ZMEM.)
func (c Class) IsVector() bool { return c&(XMM|YMM|ZMM) != 0 }

// Bits returns the operand width implied by a GPR class, or 0 if the
// class carries no implicit width (vector/segment/control/debug/opmask
// registers all report their own explicit Register.Bits instead).
func (c Class) Bits() int {
	switch {
	case c&GPR8 != 0:
		return 8
	case c&GPR16 != 0:
		return 16
	case c&GPR32 != 0:
		return 32
	case c&GPR64 != 0:
		return 64
	default:
		return 0
	}
}

// ID identifies a single register uniquely across every class.
type ID int

// NoReg is the sentinel meaning "no register" — used for Operand.BaseReg /
// Operand.IndexReg per the spec's data model.
const NoReg ID = -1

// Register is one entry of the table.
type Register struct {
	ID       ID
	Name     string
	Class    Class
	Bits     int
	Encoding byte
}

type spec struct {
	name     string
	class    Class
	bits     int
	encoding byte
}

// table and byName are built once from specs below.
var (
	table  []Register
	byName map[string]Register
)

func add(specs []spec) {
	for _, s := range specs {
		r := Register{ID: ID(len(table)), Name: s.name, Class: s.class, Bits: s.bits, Encoding: s.encoding}
		table = append(table, r)
		byName[s.name] = r
	}
}

func init() {
	byName = make(map[string]Register)

	gpr64 := []string{"rax", "rcx", "rdx", "rbx", "rsp", "rbp", "rsi", "rdi",
		"r8", "r9", "r10", "r11", "r12", "r13", "r14", "r15"}
	gpr32 := []string{"eax", "ecx", "edx", "ebx", "esp", "ebp", "esi", "edi",
		"r8d", "r9d", "r10d", "r11d", "r12d", "r13d", "r14d", "r15d"}
	gpr16 := []string{"ax", "cx", "dx", "bx", "sp", "bp", "si", "di",
		"r8w", "r9w", "r10w", "r11w", "r12w", "r13w", "r14w", "r15w"}
	gpr8 := []string{"al", "cl", "dl", "bl", "spl", "bpl", "sil", "dil",
		"r8b", "r9b", "r10b", "r11b", "r12b", "r13b", "r14b", "r15b"}
	gpr8hi := []string{"ah", "ch", "dh", "bh"}

	addClass := func(names []string, class Class, bits, encBase int) {
		specs := make([]spec, len(names))
		for i, n := range names {
			specs[i] = spec{name: n, class: class, bits: bits, encoding: byte(encBase + i)}
		}
		add(specs)
	}

	addClass(gpr64, GPR64, 64, 0)
	addClass(gpr32, GPR32, 32, 0)
	addClass(gpr16, GPR16, 16, 0)
	addClass(gpr8, GPR8, 8, 0)
	// ah/ch/dh/bh are the legacy high-byte registers, only reachable
	// without a REX prefix; they share the 4-7 encoding slot with
	// spl/bpl/sil/dil, disambiguated at encode time by REX presence.
	addClass(gpr8hi, GPR8, 8, 4)

	add([]spec{
		{"es", Segment, 16, 0}, {"cs", Segment, 16, 1}, {"ss", Segment, 16, 2},
		{"ds", Segment, 16, 3}, {"fs", Segment, 16, 4}, {"gs", Segment, 16, 5},
	})

	add([]spec{{"rip", RIP, 64, 0}, {"eip", RIP, 32, 0}})

	ctrl := make([]spec, 9)
	for i := range ctrl {
		ctrl[i] = spec{name: "cr" + itoa(i), class: Control, bits: 64, encoding: byte(i)}
	}
	add(ctrl)

	dbg := make([]spec, 8)
	for i := range dbg {
		dbg[i] = spec{name: "dr" + itoa(i), class: Debug, bits: 64, encoding: byte(i)}
	}
	add(dbg)

	mmx := make([]spec, 8)
	for i := range mmx {
		mmx[i] = spec{name: "mm" + itoa(i), class: MMX, bits: 64, encoding: byte(i)}
	}
	add(mmx)

	vec := func(prefix string, class Class, bits, count int) []spec {
		specs := make([]spec, count)
		for i := 0; i < count; i++ {
			specs[i] = spec{name: prefix + itoa(i), class: class, bits: bits, encoding: byte(i)}
		}
		return specs
	}
	add(vec("xmm", XMM, 128, 16))
	add(vec("ymm", YMM, 256, 16))
	add(vec("zmm", ZMM, 512, 32))

	opmask := make([]spec, 8)
	for i := range opmask {
		opmask[i] = spec{name: "k" + itoa(i), class: Opmask, bits: 64, encoding: byte(i)}
	}
	add(opmask)
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var buf [4]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[i:])
}

// ByName looks up a register by its assembly name, in any letter case.
func ByName(name string) (Register, bool) {
	r, ok := byName[strings.ToLower(name)]
	return r, ok
}

// ByID looks up a register by its table ID. Panics if id is out of range —
// callers only ever pass an ID previously returned by this package.
func ByID(id ID) Register {
	return table[id]
}

// IsSegmentRegister reports whether name is one of the six segment
// register names. (add_prefix, §4.1 step 2, checks the Segment class of
// a Register token directly rather than calling this.)
func IsSegmentRegister(name string) bool {
	r, ok := ByName(name)
	return ok && r.Class == Segment
}

// IsFsGs reports whether id names the FS or GS segment register — used by
// OperandParser step 9 to decide whether to set the FsGs effective-address
// flag on a segment override.
func IsFsGs(id ID) bool {
	r := ByID(id)
	return r.Class == Segment && (r.Name == "fs" || r.Name == "gs")
}
