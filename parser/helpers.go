package parser

import (
	"fmt"

	"github.com/kstmt/x86line/instruction"
	"github.com/kstmt/x86line/internal/asmctx"
	"github.com/kstmt/x86line/internal/registers"
	"github.com/kstmt/x86line/internal/scanner"
	"github.com/kstmt/x86line/internal/token"
)

// describeToken renders tok the way diagnostics quote the offending
// token — grounded on NASM's tokstr helper, used by parse_eops/parse_mref
// error messages ("comma expected after operand, got %s").
func describeToken(tok token.Token) string {
	switch tok.Kind {
	case token.Identifier, token.Instruction, token.Register, token.StrFunc:
		return fmt.Sprintf("%q", tok.Text)
	case token.Number:
		return fmt.Sprintf("%d", tok.Int)
	case token.EndOfStatement:
		return "end of line"
	default:
		return tok.Kind.String()
	}
}

// processSizeOverride applies a size/modifier token found inside a memory
// reference to op, honouring the TASM-compat branch named in spec §4.3 —
// grounded on process_size_override. Returns false on an unrecognised
// combination; it reports nothing itself, reporting is left to the caller.
func processSizeOverride(op *instruction.Operand, tok token.Token, ctx *asmctx.Context) bool {
	switch tok.Kind {
	case token.Size:
		bits := sizeBitsFor(tok.Int)
		if ctx.TASMCompatible {
			// TASM compat: the override changes the operand's own
			// size rather than the displacement's, and YWORD/ZWORD
			// are rejected. NOSPLIT/REL/ABS (the Special case below)
			// are handled the same way in either mode.
			if bits == Bits256 || bits == Bits512 {
				return false
			}
			op.Type = (op.Type &^ instruction.SizeMask) | bits
		} else {
			op.DispSize = int(tok.Int) * 8
			switch tok.Int {
			case 1:
				op.EAFlags |= instruction.EAByteOffs
			case 2:
				op.EAFlags |= instruction.EAWordOffs
			}
		}
		return true

	case token.Special:
		switch tok.Int {
		case scanner.SpecialRel:
			op.EAFlags |= instruction.EARel
		case scanner.SpecialAbs:
			op.EAFlags |= instruction.EAAbs
		case scanner.SpecialNosplit:
			// recognised, no representable effect in this model
		case scanner.SpecialA16, scanner.SpecialA32, scanner.SpecialA64:
			// Address-size override inside a bracket: recognised but
			// carries no further effect on Operand in this model —
			// the instruction-level address-size prefix slot (set by
			// add_prefix before the operand loop) is authoritative.
		default:
			return false
		}
		return true

	default:
		return false
	}
}

// Bits256/Bits512 aliased locally purely for readability in the switch
// above; instruction.Type already defines them.
const (
	Bits256 = instruction.Bits256
	Bits512 = instruction.Bits512
)

func sizeBitsFor(byteSize int64) instruction.Type {
	switch byteSize {
	case 1:
		return instruction.Bits8
	case 2:
		return instruction.Bits16
	case 4:
		return instruction.Bits32
	case 8:
		return instruction.Bits64
	case 10:
		return instruction.Bits80
	case 16:
		return instruction.Bits128
	case 32:
		return instruction.Bits256
	case 64:
		return instruction.Bits512
	default:
		return 0
	}
}

// mrefSetOptype finalises a reduced memory operand's Type bits — grounded
// on mref_set_optype (spec §4.3). Call after reduceMemRef.
func mrefSetOptype(op *instruction.Operand, ctx *asmctx.Context, fsGs bool) {
	op.Type |= instruction.KindMemory

	if op.BaseReg == registers.NoReg && op.IndexReg == registers.NoReg {
		wantsRel := op.EAFlags&instruction.EARel != 0
		wantsAbs := op.EAFlags&instruction.EAAbs != 0
		if ctx.Bits == 64 && !wantsAbs && (wantsRel || (ctx.GlobalRel && !fsGs)) {
			op.Type |= instruction.KindIPRelative
		} else {
			op.Type |= instruction.KindMemOffs
		}
	}

	if op.IndexReg != registers.NoReg {
		reg := registers.ByID(op.IndexReg)
		switch reg.Class {
		case registers.XMM:
			op.Type |= instruction.ClassXMem
		case registers.YMM:
			op.Type |= instruction.ClassYMem
		case registers.ZMM:
			op.Type |= instruction.ClassZMem
		}
	}
}

// immFlags classifies how narrowly the constant value n fits, following
// imm_flags (spec §4.3): UNITY for n==1, and — outside STRICT and with
// optimisation enabled — the narrowest sign/zero-extension bits n fits.
func immFlags(n int64, ty instruction.Type, ctx *asmctx.Context) instruction.Type {
	if n == 1 {
		ty |= instruction.ImmUnity
	}
	if ctx.OptimizeLevel < 0 || ty&instruction.KindStrict != 0 {
		return ty
	}
	if n >= -128 && n <= 127 {
		ty |= instruction.ImmSByteDword | instruction.ImmSByteWord
	}
	if n >= 0 && n <= 0xffffffff {
		ty |= instruction.ImmUDword
	}
	if n >= -2147483648 && n <= 2147483647 {
		ty |= instruction.ImmSDword
	}
	return ty
}
