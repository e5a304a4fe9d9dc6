package parser

import (
	"github.com/kstmt/x86line/instruction"
	"github.com/kstmt/x86line/internal/diag"
	"github.com/kstmt/x86line/internal/scanner"
	"github.com/kstmt/x86line/internal/token"
)

// parseDecorators consumes a run of braced opmask/zero/broadcast tokens
// starting at first, folding them into deco — grounded on parse_decorators
// (spec §4.6). Returns the token that ended the run (already consumed,
// the caller decides what to do with it) and whether the run was clean.
func parseDecorators(s *scanner.Scanner, first token.Token, sink diag.Sink, loc diag.Location) (deco instruction.DecoFlags, stop token.Token, ok bool) {
	ok = true
	tok := first
	for {
		switch tok.Kind {
		case token.Opmask:
			if deco.Opmask() != 0 {
				sink.NonFatal(loc, "opmask already set on this operand")
				ok = false
			} else {
				deco = deco.WithOpmask(int(tok.Int))
			}
		case token.Decorator:
			switch tok.Int {
			case 0: // {z}
				deco |= instruction.DecoZ
			case 1: // {1toN}
				deco = deco.WithBroadcastNumber(int(tok.Int2))
			}
		default:
			return deco, tok, ok
		}
		tok = s.Next()
	}
}
