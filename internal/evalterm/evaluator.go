package evalterm

import (
	"github.com/kstmt/x86line/instruction"
	"github.com/kstmt/x86line/internal/asmctx"
	"github.com/kstmt/x86line/internal/registers"
	"github.com/kstmt/x86line/internal/scanner"
	"github.com/kstmt/x86line/internal/symtab"
	"github.com/kstmt/x86line/internal/token"
)

// Hints communicates a preferred-base register and a hint-type id back to
// the caller, the way eval.c's eval_hints out-parameter does — purely an
// encoding-time preference, never semantically load-bearing.
type Hints struct {
	BaseReg registers.ID
	Type    int
}

// Evaluator reduces a token stream into a term vector, resolving bare
// identifiers against a symbol table. It owns no scanner state of its own:
// every call is handed the scanner to keep reading from.
type Evaluator struct {
	Symbols *symtab.Table
}

// New returns an Evaluator backed by symbols.
func New(symbols *symtab.Table) *Evaluator {
	return &Evaluator{Symbols: symbols}
}

// Evaluate reduces an expression starting at first, reading further tokens
// from s as needed, and returns the term vector, the evaluator-derived
// operand flags, a preferred-base hint, the token that stopped evaluation
// (already consumed from s — the caller inspects and, if it cannot handle
// it, must push it back), and whether evaluation succeeded (false on a
// parse failure, and on an unresolved identifier when critical is set; a
// non-critical unresolved identifier yields an Unknown term and ok=true).
func (e *Evaluator) Evaluate(s *scanner.Scanner, first token.Token, ctx *asmctx.Context, critical bool) (terms []Term, flags instruction.OpFlags, hints Hints, stop token.Token, ok bool) {
	hints = Hints{BaseReg: registers.NoReg}
	tok := first
	sign := int64(1)

	for {
		switch tok.Kind {
		case token.Plus:
			sign = 1
			tok = s.Next()
			continue
		case token.Minus:
			sign = -sign
			tok = s.Next()
			continue
		}

		switch tok.Kind {
		case token.Number:
			terms = append(terms, Term{Kind: Simple, Value: sign * tok.Int})

		case token.Register:
			reg := registers.ID(tok.Int)
			coeff := sign
			next := s.Next()
			if next.Kind == token.Asterisk {
				scaleTok := s.Next()
				if scaleTok.Kind == token.Number {
					coeff *= scaleTok.Int
					next = s.Next()
				} else {
					s.Pushback(scaleTok)
				}
			}
			terms = append(terms, Term{Kind: Register, Reg: reg, Value: coeff})
			if hints.BaseReg == registers.NoReg {
				hints.BaseReg = reg
			}
			tok = next
			sign = 1
			continue

		case token.LParen:
			inner, innerFlags, _, innerStop, innerOK := e.Evaluate(s, s.Next(), ctx, critical)
			if !innerOK {
				ok = false
				stop = innerStop
				return
			}
			if innerStop.Kind != token.RParen {
				stop = innerStop
				ok = true
				return
			}
			flags |= innerFlags
			for _, it := range inner {
				if it.Kind == Simple || it.Kind == Register {
					it.Value *= sign
				}
				terms = append(terms, it)
			}
			if innerStop.Flags.Has(token.FlagDup) {
				ok = true
				stop = innerStop
				return
			}

		case token.Identifier:
			if sym, found := e.Symbols.Lookup(tok.Text); found {
				terms = append(terms, Term{Kind: Simple, Value: sign * sym.Offset})
			} else {
				if critical {
					ok = false
					stop = tok
					return
				}
				flags |= instruction.OpUnknown | instruction.OpForward
				terms = append(terms, Term{Kind: Unknown})
			}

		case token.Special:
			if tok.Int == scanner.SpecialWrt {
				target := s.Next()
				switch target.Kind {
				case token.Register:
					terms = append(terms, Term{Kind: Wrt, Reg: registers.ID(target.Int)})
				case token.Identifier:
					terms = append(terms, Term{Kind: Wrt})
				default:
					s.Pushback(target)
				}
			} else {
				stop = tok
				ok = true
				return
			}

		default:
			stop = tok
			ok = true
			return
		}

		if tok.Flags.Has(token.FlagDup) {
			ok = true
			stop = tok
			return
		}

		tok = s.Next()
		sign = 1
	}
}
