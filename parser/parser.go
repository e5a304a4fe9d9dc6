// Package parser is the per-line statement parser: given one
// preprocessed source line it produces a structured Instruction record,
// driving a hand-written recursive descent over the scanner's token
// stream and the expression evaluator — grounded on the teacher's
// v0/kasm statement-parsing loop, generalised to the full x86 operand
// grammar (memory references, segment overrides, EVEX decorators, MIB,
// data-declaration replication) described by this module's design notes.
package parser

import (
	"github.com/kstmt/x86line/instruction"
	"github.com/kstmt/x86line/internal/asmctx"
	"github.com/kstmt/x86line/internal/diag"
	"github.com/kstmt/x86line/internal/evalterm"
	"github.com/kstmt/x86line/internal/registers"
	"github.com/kstmt/x86line/internal/scanner"
	"github.com/kstmt/x86line/internal/symtab"
	"github.com/kstmt/x86line/internal/token"
)

// Parser holds the collaborators a line parse needs: a diagnostics sink
// and the shared expression evaluator (itself wrapping the symbol
// table). It carries no per-line state of its own — ParseLine creates a
// fresh Scanner and Instruction for every call, so one Parser is safe to
// reuse (and to share) across an entire source file.
type Parser struct {
	Sink    diag.Sink
	Symbols *symtab.Table
	Eval    *evalterm.Evaluator
}

// New returns a Parser backed by sink and symbols.
func New(sink diag.Sink, symbols *symtab.Table) *Parser {
	return &Parser{Sink: sink, Symbols: symbols, Eval: evalterm.New(symbols)}
}

// tokLoc renders a token's source coordinates as a diagnostics Location.
func tokLoc(tok token.Token) diag.Location { return diag.Loc(tok.Line, tok.Column) }

// ParseLine parses one preprocessed source line — the entry point
// grounded on parse_line (spec §4.1).
func (p *Parser) ParseLine(ctx *asmctx.Context, line string) *instruction.Instruction {
	s := scanner.New()
	s.Reset(line)
	instr := instruction.New()

	tok := s.Next()
	if label, has, next := p.tryLabel(s, tok); has {
		instr.Label = label
		if next.Kind == token.EndOfStatement {
			p.Sink.Warn(tokLoc(tok), diag.WarnLabelOrphan, "label %q is alone on its line", label)
			p.maybeDefineLabel(ctx, label, next)
			return instr
		}
		p.maybeDefineLabel(ctx, label, next)
		tok = next
	}

	for {
		if tok.Kind == token.TimesKeyword {
			tok = p.parseTimes(ctx, s, instr)
			continue
		}
		if addPrefix(instr, tok, p.Sink, tokLoc(tok)) {
			tok = s.Next()
			continue
		}
		break
	}

	if tok.Kind != token.Instruction {
		if tok.Kind == token.EndOfStatement {
			if hasAnyPrefix(instr) {
				instr.Opcode = instruction.RESB
				instr.AddOperand(zeroImmediateOperand())
				return instr
			}
			if instr.Label == "" {
				p.Sink.NonFatal(tokLoc(tok), "label or instruction expected")
			}
			return instr
		}
		p.Sink.NonFatal(tokLoc(tok), "instruction expected, got %s", describeToken(tok))
		return instr
	}

	opcode := instruction.Opcode(tok.Int)
	instr.Opcode = opcode
	critical := ctx.Critical() || opcode == instruction.INCBIN

	if opcode == instruction.INCBIN {
		p.parseIncbin(ctx, s, instr, critical)
		return instr
	}
	if instruction.IsDataDecl(opcode) {
		p.parseDataDecl(ctx, s, instr, opcode, critical)
		return instr
	}

	farJumpOk := instruction.FarJumpOK(opcode)
	for instr.OperandCount < instruction.MaxOperands {
		op, hasOperand, more, isRdSae, rdMode, opOK := p.parseOperand(ctx, s, critical, farJumpOk)
		if !opOK {
			instr.Opcode = instruction.None
		}

		if isRdSae {
			if instr.OperandCount == 0 {
				p.Sink.NonFatal(tokLoc(tok), "rounding decorator with no preceding operand")
				instr.Opcode = instruction.None
			} else {
				idx := instr.OperandCount - 1
				instr.Operands[idx].DecoFlags |= instruction.DecoSAE
				instr.EvexBrerop = idx
				instr.EvexRm = rdMode
			}
			if !more {
				break
			}
			continue
		}

		if !hasOperand {
			break
		}
		idx := instr.AddOperand(op)
		if op.OpFlags&instruction.OpForward != 0 {
			instr.ForwRef = true
		}
		if op.DecoFlags.HasBroadcast() || op.DecoFlags.HasSAE() || op.DecoFlags.HasER() {
			instr.EvexBrerop = idx
		}
		if !more {
			break
		}
	}

	return instr
}

// tryLabel implements spec §4.1 step 1. A leading Identifier is always a
// label. A leading Instruction token immediately followed by ':' is the
// restart case: a word that collided with a mnemonic spelling but was
// actually meant as a label.
func (p *Parser) tryLabel(s *scanner.Scanner, tok token.Token) (label string, has bool, next token.Token) {
	if tok.Kind != token.Identifier && tok.Kind != token.Instruction {
		return "", false, tok
	}
	save := s.Save()
	after := s.Next()
	if after.Kind == token.Colon {
		return tok.Text, true, s.Next()
	}
	if tok.Kind == token.Identifier {
		return tok.Text, true, after
	}
	s.Restore(save)
	return "", false, tok
}

func (p *Parser) maybeDefineLabel(ctx *asmctx.Context, label string, next token.Token) {
	if next.Kind == token.Instruction && instruction.Opcode(next.Int) == instruction.EQU {
		return
	}
	p.Symbols.DefineLabel(label, ctx.LabelSegment(), ctx.Location.Offset, true)
}

func (p *Parser) parseTimes(ctx *asmctx.Context, s *scanner.Scanner, instr *instruction.Instruction) token.Token {
	next := s.Next()
	terms, _, _, stop, evOK := p.Eval.Evaluate(s, next, ctx, ctx.Critical())
	switch {
	case !evOK || len(terms) != 1 || terms[0].Kind != evalterm.Simple:
		p.Sink.NonFatal(tokLoc(next), "TIMES value must be a constant")
		instr.Times = 1
	case terms[0].Value < 0:
		p.Sink.NonFatalPass(tokLoc(next), diag.PassTwo, "TIMES value %d is negative", terms[0].Value)
		instr.Times = 0
	default:
		instr.Times = terms[0].Value
	}
	return stop
}

func hasAnyPrefix(instr *instruction.Instruction) bool {
	for _, v := range instr.Prefixes {
		if v != 0 {
			return true
		}
	}
	return false
}

func zeroImmediateOperand() instruction.Operand {
	op := instruction.NewOperand()
	op.Type |= instruction.KindImmediate
	return op
}

func (p *Parser) parseDataDecl(ctx *asmctx.Context, s *scanner.Scanner, instr *instruction.Instruction, opcode instruction.Opcode, critical bool) {
	elem := instruction.ElementSize(opcode)
	items, _, ok := p.parseEops(ctx, s, elem, critical, false)
	instr.Eops = items
	if len(items) == 0 {
		p.Sink.Warn(diag.Loc(0, 0), diag.WarnDBEmpty, "no operands for data declaration")
	}
	if !ok {
		instr.Opcode = instruction.None
	}
}

func (p *Parser) parseIncbin(ctx *asmctx.Context, s *scanner.Scanner, instr *instruction.Instruction, critical bool) {
	nameTok := s.Next()
	if nameTok.Kind != token.StringLit {
		p.Sink.NonFatal(tokLoc(nameTok), "INCBIN expects a filename string, got %s", describeToken(nameTok))
		instr.Opcode = instruction.None
		return
	}
	instr.Eops = append(instr.Eops, &instruction.Extop{Kind: instruction.DbString, Data: nameTok.Text})

	sep := s.Next()
	if sep.Kind == token.EndOfStatement {
		return
	}
	if sep.Kind != token.Comma {
		p.Sink.NonFatal(tokLoc(sep), "comma expected after operand, got %s", describeToken(sep))
		instr.Opcode = instruction.None
		return
	}

	offTok := s.Next()
	terms, _, _, stop, evOK := p.Eval.Evaluate(s, offTok, ctx, critical)
	if !evOK {
		p.Sink.NonFatal(tokLoc(offTok), "INCBIN offset must be a constant expression")
		instr.Opcode = instruction.None
		return
	}
	off, _, _, _, vok := valueToExtop(terms, ctx, p.Sink, tokLoc(offTok))
	if !vok {
		instr.Opcode = instruction.None
		return
	}
	instr.Eops = append(instr.Eops, &instruction.Extop{Kind: instruction.DbNumber, Offset: off})

	if stop.Kind == token.EndOfStatement {
		return
	}
	if stop.Kind != token.Comma {
		p.Sink.NonFatal(tokLoc(stop), "comma expected after operand, got %s", describeToken(stop))
		instr.Opcode = instruction.None
		return
	}

	lenTok := s.Next()
	terms2, _, _, stop2, evOK2 := p.Eval.Evaluate(s, lenTok, ctx, critical)
	if !evOK2 {
		p.Sink.NonFatal(tokLoc(lenTok), "INCBIN length must be a constant expression")
		instr.Opcode = instruction.None
		return
	}
	len2, _, _, _, vok2 := valueToExtop(terms2, ctx, p.Sink, tokLoc(lenTok))
	if !vok2 {
		instr.Opcode = instruction.None
		return
	}
	instr.Eops = append(instr.Eops, &instruction.Extop{Kind: instruction.DbNumber, Offset: len2})

	if stop2.Kind != token.EndOfStatement {
		p.Sink.NonFatal(tokLoc(stop2), "too many operands to INCBIN")
		instr.Opcode = instruction.None
	}
}

// addPrefix accepts a Prefix token, an address-size Special token, or a
// segment-register token into its canonical prefix slot — grounded on
// add_prefix (spec §4.1 step 2). Returns false when tok is none of those
// (the pre-opcode loop then stops).
func addPrefix(instr *instruction.Instruction, tok token.Token, sink diag.Sink, loc diag.Location) bool {
	slot, val, accepted := prefixSlotFor(tok)
	if !accepted {
		return false
	}
	cur := instr.Prefixes[slot]
	if cur == 0 {
		instr.Prefixes[slot] = val
	} else if cur == val {
		sink.Warn(loc, diag.WarnOther, "instruction has redundant prefixes")
	} else {
		sink.NonFatal(loc, "instruction has conflicting prefixes")
	}
	return true
}

func prefixSlotFor(tok token.Token) (instruction.PrefixSlot, int64, bool) {
	switch tok.Kind {
	case token.Prefix:
		switch tok.Int {
		case scanner.PrefixLock, scanner.PrefixRep, scanner.PrefixRepe, scanner.PrefixRepz,
			scanner.PrefixRepne, scanner.PrefixRepnz, scanner.PrefixBnd,
			scanner.PrefixXacquire, scanner.PrefixXrelease, scanner.PrefixWait:
			return instruction.SlotLockRep, tok.Int + 1, true
		case scanner.PrefixO16, scanner.PrefixO32, scanner.PrefixO64:
			return instruction.SlotOpSize, tok.Int + 1, true
		}
	case token.Special:
		switch tok.Int {
		case scanner.SpecialA16, scanner.SpecialA32, scanner.SpecialA64:
			return instruction.SlotAddrSize, tok.Int + 1, true
		}
	case token.Register:
		if registers.ByID(registers.ID(tok.Int)).Class == registers.Segment {
			return instruction.SlotSegment, tok.Int + 1, true
		}
	}
	return 0, 0, false
}
