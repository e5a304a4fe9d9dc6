package parser

import (
	"github.com/kstmt/x86line/instruction"
	"github.com/kstmt/x86line/internal/asmctx"
	"github.com/kstmt/x86line/internal/diag"
	"github.com/kstmt/x86line/internal/evalterm"
	"github.com/kstmt/x86line/internal/registers"
	"github.com/kstmt/x86line/internal/scanner"
	"github.com/kstmt/x86line/internal/token"
)

// parseOperand parses a single operand slot — grounded on the 14-step
// walk described in spec §4.2. It reports:
//   - hasOperand: false when the slot was genuinely empty (end of
//     statement reached with nothing consumed).
//   - more: true when a trailing comma means another operand follows.
//   - isRdSae: true when the expression resolved to a standalone
//     rounding/SAE decorator term that belongs on the *previous* operand
//     rather than this one (spec §4.2 step 14) — the caller applies
//     rdMode to instn.Operands[idx-1] and does not commit op.
//   - ok: false on a structural failure a diagnostic has already
//     reported.
func (p *Parser) parseOperand(ctx *asmctx.Context, s *scanner.Scanner, critical, farJumpOk bool) (op instruction.Operand, hasOperand, more, isRdSae bool, rdMode int, ok bool) {
	op = instruction.NewOperand()
	ok = true

	tok := s.Next()
	if tok.Kind == token.EndOfStatement {
		return op, false, false, false, 0, true
	}

	if tok.Kind == token.BracedConst {
		op.Type |= instruction.KindImmediate
		op.Offset = tok.Int
		op.Iflag = tok.Int2
		sep := s.Next()
		if sep.Kind == token.Comma {
			return op, true, true, false, 0, true
		}
		s.Pushback(sep)
		return op, true, false, false, 0, true
	}

	// Step 5: accumulate size/modifier prefixes ahead of the expression.
	for {
		consumed := true
		switch tok.Kind {
		case token.Size:
			if op.Type&instruction.SizeMask == 0 {
				op.Type |= sizeBitsFor(tok.Int)
			}
		case token.Special:
			switch tok.Int {
			case scanner.SpecialTo:
				op.Type |= instruction.KindTo
			case scanner.SpecialStrict:
				op.Type |= instruction.KindStrict
			case scanner.SpecialFar:
				op.Type |= instruction.KindFar
			case scanner.SpecialNear:
				op.Type |= instruction.KindNear
			case scanner.SpecialShort:
				op.Type |= instruction.KindShort
			case scanner.SpecialRel:
				op.EAFlags |= instruction.EARel
			case scanner.SpecialAbs:
				op.EAFlags |= instruction.EAAbs
			default:
				consumed = false
			}
		case token.MasmPtr, token.MasmFlat:
			// MASM-style noise words ("byte ptr [eax]", "flat:foo") carry
			// no semantic weight of their own once the size keyword or
			// colon beside them has already been seen.
		default:
			consumed = false
		}
		if !consumed {
			break
		}
		tok = s.Next()
	}

	// Step 6: memory-reference opener.
	inMref := false
	if tok.Kind == token.LBracket {
		inMref = true
		tok = s.Next()
		for tok.Kind == token.Size || tok.Kind == token.Special {
			if !processSizeOverride(&op, tok, ctx) {
				p.Sink.NonFatal(tokLoc(tok), "invalid size or modifier inside memory reference")
				ok = false
			}
			tok = s.Next()
		}
	}

	terms, evFlags, _, stop, evOK := p.Eval.Evaluate(s, tok, ctx, critical)
	op.OpFlags |= evFlags
	if !evOK {
		p.Sink.NonFatal(tokLoc(stop), "invalid or unresolved expression")
		ok = false
	}

	// Step 8: late mref detection — the evaluator ran clean off a bare
	// displacement straight into '[' with no opener seen yet, e.g.
	// `mov eax, foo[ebx]`. Commit what's been reduced so far and re-enter
	// the mref opener exactly as step 6 would have.
	if !inMref && stop.Kind == token.LBracket {
		if !reduceMemRef(&op, terms, ctx, p.Sink, tokLoc(stop)) {
			ok = false
		}
		inMref = true
		next := s.Next()
		for next.Kind == token.Size || next.Kind == token.Special {
			if !processSizeOverride(&op, next, ctx) {
				p.Sink.NonFatal(tokLoc(next), "invalid size or modifier inside memory reference")
				ok = false
			}
			next = s.Next()
		}
		terms, evFlags, _, stop, evOK = p.Eval.Evaluate(s, next, ctx, critical)
		op.OpFlags |= evFlags
		if !evOK {
			p.Sink.NonFatal(tokLoc(stop), "invalid or unresolved expression")
			ok = false
		}
	}

	// Step 9: segment override, or the far-jump colon-immediate form.
	if stop.Kind == token.Colon {
		if len(terms) == 1 && terms[0].Kind == evalterm.Register && registers.ByID(terms[0].Reg).Class == registers.Segment {
			segReg := terms[0].Reg
			op.Segment = int32(segReg)
			if registers.IsFsGs(segReg) {
				op.EAFlags |= instruction.EAFsGs
			}
			inMref = true
			next := s.Next()
			for next.Kind == token.Size || next.Kind == token.Special {
				processSizeOverride(&op, next, ctx)
				next = s.Next()
			}
			terms, evFlags, _, stop, evOK = p.Eval.Evaluate(s, next, ctx, critical)
			op.OpFlags |= evFlags
			if !evOK {
				p.Sink.NonFatal(tokLoc(stop), "invalid or unresolved expression")
				ok = false
			}
		} else if farJumpOk && !inMref {
			off, _, _, _, vok := valueToExtop(terms, ctx, p.Sink, tokLoc(stop))
			if !vok {
				ok = false
			}
			op.Segment = int32(off)
			op.Type |= instruction.KindColon
			next := s.Next()
			terms, evFlags, _, stop, evOK = p.Eval.Evaluate(s, next, ctx, critical)
			op.OpFlags |= evFlags
			if !evOK {
				p.Sink.NonFatal(tokLoc(stop), "invalid or unresolved expression")
				ok = false
			}
		} else {
			s.Pushback(stop)
		}
	}

	// Step 10: MIB compound — a second, comma-separated sub-expression
	// inside the same bracket pair, e.g. BNDLDX/BNDSTX's `[rax, rbx]`.
	// Reduce what's been seen so far, then reduce and merge the second
	// half, validating the two halves collide into exactly one base and
	// one index register.
	if inMref && stop.Kind == token.Comma {
		if !reduceMemRef(&op, terms, ctx, p.Sink, tokLoc(stop)) {
			ok = false
		}
		terms = nil

		second := instruction.NewOperand()
		next := s.Next()
		secondTerms, secondFlags, _, secondStop, secondOK := p.Eval.Evaluate(s, next, ctx, critical)
		op.OpFlags |= secondFlags
		if !secondOK {
			p.Sink.NonFatal(tokLoc(secondStop), "invalid or unresolved MIB sub-expression")
			ok = false
		}
		if !reduceMemRef(&second, secondTerms, ctx, p.Sink, tokLoc(secondStop)) {
			ok = false
		}
		if !mergeMIB(&op, &second, p.Sink, tokLoc(secondStop)) {
			ok = false
		}
		stop = secondStop
	}

	// Step 12: trailing decorators.
	if stop.Kind == token.Opmask || stop.Kind == token.Decorator {
		var deco instruction.DecoFlags
		var decOK bool
		deco, stop, decOK = parseDecorators(s, stop, p.Sink, tokLoc(stop))
		op.DecoFlags |= deco
		if !decOK {
			ok = false
		}
	}

	// Step 11: bracket closing.
	if inMref {
		if stop.Kind == token.RBracket {
			after := s.Next()
			if after.Kind == token.Opmask || after.Kind == token.Decorator {
				var deco instruction.DecoFlags
				var decOK bool
				deco, after, decOK = parseDecorators(s, after, p.Sink, tokLoc(after))
				op.DecoFlags |= deco
				if !decOK {
					ok = false
				}
			}
			stop = after
		} else {
			p.Sink.NonFatal(tokLoc(stop), "expected ']', got %s", describeToken(stop))
			ok = false
		}
	}

	// Step 13: terminator.
	switch stop.Kind {
	case token.Comma:
		more = true
	case token.EndOfStatement:
		more = false
	default:
		p.Sink.NonFatal(tokLoc(stop), "unexpected token in operand, got %s", describeToken(stop))
		ok = false
		more = recoverToSeparator(s)
	}

	// Step 14: classification.
	if inMref {
		if !reduceMemRef(&op, terms, ctx, p.Sink, tokLoc(stop)) {
			ok = false
		}
		mrefSetOptype(&op, ctx, op.EAFlags&instruction.EAFsGs != 0)
		return op, true, more, false, 0, ok
	}

	if op.Type&instruction.KindFar != 0 && !farJumpOk {
		p.Sink.NonFatal(tokLoc(stop), "FAR operand is only valid for JMP/CALL")
		ok = false
	}

	switch classifyTerms(terms) {
	case termsUnknown:
		op.Type |= instruction.KindImmediate
		if op.Type&instruction.KindStrict == 0 {
			op.Type |= instruction.SizeMask
		}

	case termsRegister:
		reg := terms[0].Reg
		regsetSize := 0
		if len(terms) == 2 && terms[1].Kind == evalterm.Simple {
			regsetSize = int(terms[1].Value) + 1
		}
		rinfo := registers.ByID(reg)
		preserveTo := op.Type & instruction.KindTo
		if op.Type&instruction.SizeMask != 0 && sizeBitsFor(int64(rinfo.Bits/8))&op.Type == 0 {
			p.Sink.Warn(tokLoc(stop), diag.WarnRegSize, "register size does not match operand-size override")
		}
		op.Type = (op.Type &^ instruction.SizeMask) | preserveTo
		op.Type |= instruction.KindRegister | sizeBitsFor(int64(rinfo.Bits/8))
		if regsetSize != 0 {
			withSet := op.Type.WithRegsetSize(regsetSize)
			if regsetSize < 0 || regsetSize&(regsetSize-1) != 0 || withSet.RegsetSize() != regsetSize {
				p.Sink.NonFatalPass(tokLoc(stop), diag.PassTwo, "invalid register set size %d", regsetSize)
			} else {
				op.Type = withSet
			}
		}
		op.BaseReg = reg

	case termsRdSae:
		return op, false, more, true, int(terms[0].Value), ok

	case termsImmediate:
		if op.Type&instruction.KindColon != 0 {
			off, _, wrt, rel, vok := valueToExtop(terms, ctx, p.Sink, tokLoc(stop))
			if !vok {
				ok = false
			}
			op.Type |= instruction.KindImmediate
			op.Offset = off
			op.Wrt = wrt
			if rel {
				op.OpFlags |= instruction.OpRelative
			}
		} else {
			off, seg, wrt, rel, vok := valueToExtop(terms, ctx, p.Sink, tokLoc(stop))
			if !vok {
				ok = false
			}
			op.Type |= instruction.KindImmediate
			op.Offset = off
			op.Segment = seg
			op.Wrt = wrt
			if rel {
				op.OpFlags |= instruction.OpRelative
			}
			if len(terms) == 1 && terms[0].Kind == evalterm.Simple {
				op.Type = immFlags(off, op.Type, ctx)
			}
		}

	default:
		p.Sink.NonFatal(tokLoc(stop), "bad operand type")
		ok = false
	}

	return op, true, more, false, 0, ok
}

type termShape int

const (
	termsImmediate termShape = iota
	termsUnknown
	termsRegister
	termsRdSae
)

// classifyTerms inspects a reduced expression's term vector to decide
// which branch of step 14 applies.
func classifyTerms(terms []evalterm.Term) termShape {
	if len(terms) == 1 && terms[0].Kind == evalterm.Unknown {
		return termsUnknown
	}
	if len(terms) == 1 && terms[0].Kind == evalterm.RdSae {
		return termsRdSae
	}
	if len(terms) > 0 && terms[0].Kind == evalterm.Register {
		return termsRegister
	}
	return termsImmediate
}

// recoverToSeparator skips tokens until a comma or end-of-statement,
// implementing the §4.8 recovery routine. Returns whether a comma was
// found (i.e. whether the caller should keep parsing operands).
func recoverToSeparator(s *scanner.Scanner) bool {
	for {
		tok := s.Next()
		switch tok.Kind {
		case token.Comma:
			return true
		case token.EndOfStatement:
			return false
		}
	}
}
