package parser

import (
	"github.com/kstmt/x86line/instruction"
	"github.com/kstmt/x86line/internal/asmctx"
	"github.com/kstmt/x86line/internal/diag"
	"github.com/kstmt/x86line/internal/evalterm"
	"github.com/kstmt/x86line/internal/floatenc"
	"github.com/kstmt/x86line/internal/scanner"
	"github.com/kstmt/x86line/internal/strfunc"
	"github.com/kstmt/x86line/internal/token"
)

// parseEops parses a comma-separated data-declaration operand list —
// grounded on parse_eops (spec §4.5). insideGroup is true when recursing
// into a parenthesised sub-expression, so an unmatched ')' also ends the
// list. elem is the current element size in bytes; a SIZE-keyword item
// can change it for the remainder of the list, so the (possibly updated)
// value is returned alongside the parsed items.
func (p *Parser) parseEops(ctx *asmctx.Context, s *scanner.Scanner, elem int, critical, insideGroup bool) ([]*instruction.Extop, int, bool) {
	var items []*instruction.Extop
	ok := true

	// afterComma tracks whether the item about to be parsed was
	// introduced by a comma — an end-of-statement found there (a
	// trailing comma) is an error, whereas one found before any comma
	// (an empty list, or a clean list ending) is not.
	afterComma := false
	for {
		tok := s.Next()
		if tok.Kind == token.EndOfStatement {
			if afterComma {
				p.Sink.NonFatal(tokLoc(tok), "comma expected after operand, got %s", describeToken(tok))
				ok = false
			}
			break
		}
		if insideGroup && tok.Kind == token.RParen {
			break
		}

		item, newElem, itemOK := p.parseEopItem(ctx, s, elem, critical, insideGroup, tok)
		elem = newElem
		if item != nil {
			items = append(items, item)
		}
		if !itemOK {
			ok = false
		}

		sep := s.Next()
		if sep.Kind == token.EndOfStatement {
			s.Pushback(sep)
			afterComma = false
			continue
		}
		if insideGroup && sep.Kind == token.RParen {
			break
		}
		if sep.Kind != token.Comma {
			p.Sink.NonFatal(tokLoc(sep), "comma expected after operand, got %s", describeToken(sep))
			ok = false
			break
		}
		afterComma = true
	}

	return instruction.Coalesce(items), elem, ok
}

func (p *Parser) parseEopItem(ctx *asmctx.Context, s *scanner.Scanner, elem int, critical, insideGroup bool, tok token.Token) (*instruction.Extop, int, bool) {
	switch tok.Kind {
	case token.QuestionMark:
		return &instruction.Extop{Kind: instruction.DbReserve, Elem: elem, Dup: 1}, elem, true

	case token.Percent:
		open := s.Next()
		if open.Kind != token.LParen {
			p.Sink.NonFatal(tokLoc(open), "'(' expected after '%%', got %s", describeToken(open))
			return nil, elem, false
		}
		children, newElem, childOK := p.parseEops(ctx, s, elem, critical, true)
		return wrapGroup(children, 1, newElem), newElem, childOK

	case token.Size:
		if tok.Int != 0 {
			// A concrete size keyword (byte/word/...) appearing bare in
			// item position, not as the generic SIZE marker: treat its
			// byte count as the group's element-size override.
			open := s.Next()
			if open.Kind != token.LParen {
				p.Sink.NonFatal(tokLoc(open), "'(' expected after size override, got %s", describeToken(open))
				return nil, elem, false
			}
			newElem := int(tok.Int)
			children, _, childOK := p.parseEops(ctx, s, newElem, critical, true)
			return wrapGroup(children, 1, newElem), newElem, childOK
		}
		sizeTok := s.Next()
		if sizeTok.Kind != token.Size {
			p.Sink.NonFatal(tokLoc(sizeTok), "size specifier expected after SIZE, got %s", describeToken(sizeTok))
			return nil, elem, false
		}
		newElem := int(sizeTok.Int)
		open := s.Next()
		if open.Kind != token.LParen {
			p.Sink.NonFatal(tokLoc(open), "'(' expected after size override, got %s", describeToken(open))
			return nil, newElem, false
		}
		children, _, childOK := p.parseEops(ctx, s, newElem, critical, true)
		return wrapGroup(children, 1, newElem), newElem, childOK

	case token.StringLit:
		save := s.Save()
		next := s.Next()
		s.Restore(save)
		_ = next
		return &instruction.Extop{Kind: instruction.DbString, Elem: elem, Dup: 1, Data: tok.Text, Owned: false}, elem, true

	case token.StrFunc:
		fn, known := strfunc.Lookup(tok.Text)
		if !known {
			p.Sink.NonFatal(tokLoc(tok), "unrecognised string function %q", tok.Text)
			return nil, elem, false
		}
		open := s.Next()
		if open.Kind != token.LParen {
			p.Sink.NonFatal(tokLoc(open), "'(' expected after string function, got %s", describeToken(open))
			return nil, elem, false
		}
		str := s.Next()
		if str.Kind != token.StringLit {
			p.Sink.NonFatal(tokLoc(str), "string literal expected, got %s", describeToken(str))
			return nil, elem, false
		}
		closeTok := s.Next()
		if closeTok.Kind != token.RParen {
			p.Sink.NonFatal(tokLoc(closeTok), "')' expected, got %s", describeToken(closeTok))
			return nil, elem, false
		}
		data := strfunc.Apply(fn, str.Text)
		return &instruction.Extop{Kind: instruction.DbString, Elem: elem, Dup: 1, Data: string(data), Owned: true}, elem, true

	case token.Float:
		return p.handleFloat(tok.Text, 1, elem), elem, true

	case token.Plus, token.Minus:
		save := s.Save()
		next := s.Next()
		if next.Kind == token.Float {
			sign := 1
			if tok.Kind == token.Minus {
				sign = -1
			}
			return p.handleFloat(next.Text, sign, elem), elem, true
		}
		s.Restore(save)
		return p.parseEopExpr(ctx, s, elem, critical, tok)

	default:
		return p.parseEopExpr(ctx, s, elem, critical, tok)
	}
}

func (p *Parser) parseEopExpr(ctx *asmctx.Context, s *scanner.Scanner, elem int, critical bool, first token.Token) (*instruction.Extop, int, bool) {
	terms, _, _, stop, evOK := p.Eval.Evaluate(s, first, ctx, critical)
	if !evOK {
		p.Sink.NonFatal(tokLoc(stop), "invalid expression in data declaration")
		return nil, elem, false
	}

	if stop.Flags.Has(token.FlagDup) {
		if len(terms) != 1 || terms[0].Kind != evalterm.Simple || terms[0].Value < 0 {
			p.Sink.NonFatalPass(tokLoc(stop), diag.PassTwo, "DUP count must be a non-negative constant")
			return nil, elem, false
		}
		dupCount := terms[0].Value
		s.ConsumeDupKeyword()
		open := s.Next()
		if open.Kind == token.Percent {
			open = s.Next()
		}
		if open.Kind != token.LParen {
			p.Sink.NonFatal(tokLoc(open), "'(' expected after DUP, got %s", describeToken(open))
			return nil, elem, false
		}
		children, newElem, childOK := p.parseEops(ctx, s, elem, critical, true)
		return wrapGroup(children, dupCount, newElem), newElem, childOK
	}

	s.Pushback(stop)
	off, seg, wrt, rel, ok := valueToExtop(terms, ctx, p.Sink, tokLoc(first))
	if !ok {
		return nil, elem, false
	}
	return &instruction.Extop{
		Kind: instruction.DbNumber, Elem: elem, Dup: 1,
		Offset: off, Segment: seg, Wrt: wrt, Relative: rel,
	}, elem, true
}

func (p *Parser) handleFloat(text string, sign, elem int) *instruction.Extop {
	format := floatenc.DefFmt(elem)
	if format == floatenc.ErrFormat {
		p.Sink.NonFatal(diag.Loc(0, 0), "no %d-bit floating-point format supported", elem*8)
		return nil
	}
	if elem < 1 {
		p.Sink.NonFatal(diag.Loc(0, 0), "floating-point constant encountered in unknown instruction")
		return nil
	}
	data, ok := floatenc.Const(text, sign, format)
	if !ok {
		return nil
	}
	return &instruction.Extop{Kind: instruction.DbFloat, Elem: elem, Dup: 1, Float: data}
}

// wrapGroup implements the EOT_EXTOP flatten/wrap rule (spec §4.5/§12): a
// single-child group flattens, multiplying its Dup by dup; a multi-child
// group wraps as an ExtGroup node. dup == 0 elides the node entirely.
func wrapGroup(children []*instruction.Extop, dup int64, elem int) *instruction.Extop {
	if dup == 0 {
		return nil
	}
	if len(children) == 1 {
		c := children[0]
		c.Dup *= dup
		return c
	}
	return &instruction.Extop{Kind: instruction.ExtGroup, Elem: elem, Dup: dup, Children: children}
}

// valueToExtop folds a reloc-style expression term vector into a DbNumber
// payload — grounded on value_to_extop, the data-literal specialisation of
// parse_mref's reduction rules (spec §4.4/§4.5): no registers permitted.
func valueToExtop(terms []evalterm.Term, ctx *asmctx.Context, sink diag.Sink, loc diag.Location) (offset int64, segment, wrt int32, relative bool, ok bool) {
	segment = instruction.NoSeg
	wrt = instruction.NoSeg
	ok = true

	for _, t := range terms {
		switch t.Kind {
		case evalterm.Simple:
			offset += t.Value
		case evalterm.Unknown:
			// unresolved forward reference: legal, still unresolved.
		case evalterm.Wrt:
			wrt = int32(t.Reg)
		case evalterm.SegBase:
			switch t.Value {
			case 1:
				if segment != instruction.NoSeg {
					sink.NonFatal(loc, "multiple base segments")
					ok = false
				} else {
					segment = t.Seg
				}
			case -1:
				if t.Seg == ctx.Location.Segment {
					relative = true
				}
			default:
				sink.NonFatal(loc, "impossible segment base multiplier")
				ok = false
			}
		case evalterm.Register:
			sink.NonFatal(loc, "register not allowed in a data declaration")
			ok = false
		default:
			sink.NonFatal(loc, "bad subexpression type")
			ok = false
		}
	}
	return
}
