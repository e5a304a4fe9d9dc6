package scanner

import (
	"testing"

	"github.com/kstmt/x86line/internal/token"
)

func kinds(t *testing.T, line string) []token.Kind {
	t.Helper()
	s := New()
	s.Reset(line)
	var out []token.Kind
	for {
		tok := s.Next()
		out = append(out, tok.Kind)
		if tok.Kind == token.EndOfStatement {
			break
		}
	}
	return out
}

func TestScanSimpleInstruction(t *testing.T) {
	s := New()
	s.Reset("mov eax, 1")

	tok := s.Next()
	if tok.Kind != token.Instruction {
		t.Fatalf("expected Instruction, got %v", tok.Kind)
	}

	tok = s.Next()
	if tok.Kind != token.Register {
		t.Fatalf("expected Register, got %v", tok.Kind)
	}

	tok = s.Next()
	if tok.Kind != token.Comma {
		t.Fatalf("expected Comma, got %v", tok.Kind)
	}

	tok = s.Next()
	if tok.Kind != token.Number || tok.Int != 1 {
		t.Fatalf("expected Number(1), got %v %d", tok.Kind, tok.Int)
	}

	tok = s.Next()
	if tok.Kind != token.EndOfStatement {
		t.Fatalf("expected EndOfStatement, got %v", tok.Kind)
	}
}

func TestScanLabel(t *testing.T) {
	ks := kinds(t, "start: mov eax, 1")
	want := []token.Kind{token.Identifier, token.Colon, token.Instruction, token.Register, token.Comma, token.Number, token.EndOfStatement}
	if len(ks) != len(want) {
		t.Fatalf("expected %d tokens, got %d (%v)", len(want), len(ks), ks)
	}
	for i := range want {
		if ks[i] != want[i] {
			t.Fatalf("token %d: expected %v, got %v", i, want[i], ks[i])
		}
	}
}

func TestScanMemoryReference(t *testing.T) {
	ks := kinds(t, "mov eax, [ds:ebx+ecx*4+8]")
	want := []token.Kind{
		token.Instruction, token.Register, token.Comma,
		token.LBracket, token.Register, token.Colon, token.Register, token.Plus,
		token.Register, token.Asterisk, token.Number, token.Plus, token.Number,
		token.RBracket, token.EndOfStatement,
	}
	if len(ks) != len(want) {
		t.Fatalf("expected %d tokens, got %d (%v)", len(want), len(ks), ks)
	}
	for i := range want {
		if ks[i] != want[i] {
			t.Fatalf("token %d: expected %v, got %v", i, want[i], ks[i])
		}
	}
}

func TestScanHexNumber(t *testing.T) {
	s := New()
	s.Reset("0x1234")
	tok := s.Next()
	if tok.Kind != token.Number || tok.Int != 0x1234 {
		t.Fatalf("expected Number(0x1234), got %v %#x", tok.Kind, tok.Int)
	}
}

func TestScanFloat(t *testing.T) {
	s := New()
	s.Reset("1.5")
	tok := s.Next()
	if tok.Kind != token.Float || tok.Text != "1.5" {
		t.Fatalf("expected Float(1.5), got %v %q", tok.Kind, tok.Text)
	}
}

func TestScanString(t *testing.T) {
	s := New()
	s.Reset(`"ab"`)
	tok := s.Next()
	if tok.Kind != token.StringLit || tok.Text != "ab" {
		t.Fatalf("expected StringLit(ab), got %v %q", tok.Kind, tok.Text)
	}
}

func TestScanOpmaskAndDecorator(t *testing.T) {
	s := New()
	s.Reset("{k1}{z}")

	tok := s.Next()
	if tok.Kind != token.Opmask || tok.Int != 1 {
		t.Fatalf("expected Opmask(1), got %v %d", tok.Kind, tok.Int)
	}

	tok = s.Next()
	if tok.Kind != token.Decorator || tok.Text != "z" {
		t.Fatalf("expected Decorator(z), got %v %q", tok.Kind, tok.Text)
	}
}

func TestScanBroadcastDecorator(t *testing.T) {
	s := New()
	s.Reset("{1to16}")
	tok := s.Next()
	if tok.Kind != token.Decorator || tok.Int2 != 4 {
		t.Fatalf("expected Decorator with log2(16)=4, got %v %d", tok.Kind, tok.Int2)
	}
}

func TestScanBracedConst(t *testing.T) {
	s := New()
	s.Reset("{3}")
	tok := s.Next()
	if tok.Kind != token.BracedConst || tok.Int != 3 {
		t.Fatalf("expected BracedConst(3), got %v %d", tok.Kind, tok.Int)
	}
}

func TestPushback(t *testing.T) {
	s := New()
	s.Reset("mov eax")

	first := s.Next()
	second := s.Next()
	s.Pushback(second)

	replayed := s.Next()
	if replayed.Kind != second.Kind || replayed.Text != second.Text {
		t.Fatalf("expected pushback to replay %+v, got %+v", second, replayed)
	}

	third := s.Next()
	if third.Kind != token.EndOfStatement {
		t.Fatalf("expected EndOfStatement after replay, got %v", third.Kind)
	}
	_ = first
}

func TestSaveRestore(t *testing.T) {
	s := New()
	s.Reset("mov eax, 1")

	s.Next() // mov
	cursor := s.Save()
	reg := s.Next()
	if reg.Kind != token.Register {
		t.Fatalf("expected Register, got %v", reg.Kind)
	}

	s.Restore(cursor)
	replay := s.Next()
	if replay.Kind != token.Register || replay.Text != reg.Text {
		t.Fatalf("expected restore to replay the register token, got %+v", replay)
	}
}

func TestDupFlagAfterExpression(t *testing.T) {
	s := New()
	s.Reset("5 dup (0)")
	tok := s.Next()
	if tok.Kind != token.Number || tok.Int != 5 {
		t.Fatalf("expected Number(5), got %v", tok.Kind)
	}
	if !tok.Flags.Has(token.FlagDup) {
		t.Fatal("expected FlagDup to be set on the count token")
	}
}

func TestTimesKeyword(t *testing.T) {
	s := New()
	s.Reset("times 4 db 1")
	tok := s.Next()
	if tok.Kind != token.TimesKeyword {
		t.Fatalf("expected TimesKeyword, got %v", tok.Kind)
	}
}

func TestSizeAndSpecialKeywords(t *testing.T) {
	s := New()
	s.Reset("byte strict far")

	tok := s.Next()
	if tok.Kind != token.Size || tok.Int != sizeByte {
		t.Fatalf("expected Size(byte), got %v", tok.Kind)
	}
	tok = s.Next()
	if tok.Kind != token.Special || tok.Int != SpecialStrict {
		t.Fatalf("expected Special(strict), got %v", tok.Kind)
	}
	tok = s.Next()
	if tok.Kind != token.Special || tok.Int != SpecialFar {
		t.Fatalf("expected Special(far), got %v", tok.Kind)
	}
}

func TestStrFuncKeyword(t *testing.T) {
	s := New()
	s.Reset(`__utf16__("x")`)
	tok := s.Next()
	if tok.Kind != token.StrFunc {
		t.Fatalf("expected StrFunc, got %v", tok.Kind)
	}
}

func TestMasmPtrFlat(t *testing.T) {
	s := New()
	s.Reset("ptr flat")
	tok := s.Next()
	if tok.Kind != token.MasmPtr {
		t.Fatalf("expected MasmPtr, got %v", tok.Kind)
	}
	tok = s.Next()
	if tok.Kind != token.MasmFlat {
		t.Fatalf("expected MasmFlat, got %v", tok.Kind)
	}
}
