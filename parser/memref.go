package parser

import (
	"github.com/kstmt/x86line/instruction"
	"github.com/kstmt/x86line/internal/asmctx"
	"github.com/kstmt/x86line/internal/diag"
	"github.com/kstmt/x86line/internal/evalterm"
	"github.com/kstmt/x86line/internal/registers"
)

// reduceMemRef folds an evaluated term vector into an Operand's
// base/index/scale/offset/segment/wrt/relative fields — grounded on
// parse_mref (spec §4.4). It mutates op in place and returns false if any
// term could not be reconciled (a diagnostic has already been fired).
func reduceMemRef(op *instruction.Operand, terms []evalterm.Term, ctx *asmctx.Context, sink diag.Sink, loc diag.Location) bool {
	ok := true
	for _, term := range terms {
		switch term.Kind {
		case evalterm.Register:
			reg := registers.ByID(term.Reg)
			switch {
			case term.Value == 1 && reg.Class.IsGPR() && op.BaseReg == registers.NoReg:
				op.BaseReg = term.Reg
			case op.IndexReg == registers.NoReg:
				op.IndexReg = term.Reg
				op.Scale = term.Value
			case op.BaseReg == registers.NoReg:
				sink.NonFatal(loc, "too many registers in effective address")
				ok = false
			default:
				sink.NonFatal(loc, "two index registers in effective address")
				ok = false
			}

		case evalterm.Unknown:
			op.OpFlags |= instruction.OpUnknown

		case evalterm.Simple:
			op.Offset += term.Value

		case evalterm.Wrt:
			op.Wrt = int32(term.Reg)

		case evalterm.SegBase:
			switch {
			case term.Value == 1:
				if op.Segment != instruction.NoSeg {
					sink.NonFatal(loc, "multiple base segments")
					ok = false
				} else {
					op.Segment = term.Seg
				}
			case term.Value == -1:
				if term.Seg == ctx.Location.Segment {
					op.OpFlags |= instruction.OpRelative
				}
			default:
				sink.NonFatal(loc, "impossible segment base multiplier")
				ok = false
			}

		default:
			sink.NonFatal(loc, "bad subexpression type")
			ok = false
		}
	}
	return ok
}

// mergeMIB folds a MIB compound's second reduced sub-expression (second)
// into the first (first), grounded on parse_mref's MIB merge step
// (spec §4.2 step 10). It rejects a shape that doesn't collapse into
// exactly one base and one (optionally scaled) index register, and
// copies the resulting base register into HintBase with HintType set to
// hintTypeMIB, marking the base as coming from an explicit MIB compound.
// [rax, rbx] gives base rax, index rbx; [rbx, rax] gives the reverse.
func mergeMIB(first, second *instruction.Operand, sink diag.Sink, loc diag.Location) bool {
	ok := true
	first.Offset += second.Offset

	place := func(reg registers.ID, scale int64) {
		switch {
		case first.BaseReg == registers.NoReg && first.IndexReg == registers.NoReg:
			first.BaseReg = reg
		case first.IndexReg == registers.NoReg:
			first.IndexReg = reg
			first.Scale = scale
		default:
			sink.NonFatal(loc, "invalid MIB shape: too many registers")
			ok = false
		}
	}

	if second.BaseReg != registers.NoReg {
		place(second.BaseReg, 1)
	}
	if second.IndexReg != registers.NoReg {
		place(second.IndexReg, second.Scale)
	}

	if first.BaseReg != registers.NoReg {
		first.HintBase = int(first.BaseReg)
		first.HintType = hintTypeMIB
	}
	return ok
}

// hintTypeMIB marks an operand's HintBase as coming from an explicit MIB
// compound, not inferred by the usual base/index assignment in
// reduceMemRef.
const hintTypeMIB = 1
