package evalterm

import (
	"testing"

	"github.com/kstmt/x86line/internal/asmctx"
	"github.com/kstmt/x86line/internal/scanner"
	"github.com/kstmt/x86line/internal/symtab"
	"github.com/kstmt/x86line/internal/token"
)

func evalLine(t *testing.T, symbols *symtab.Table, line string, critical bool) ([]Term, token.Token, bool) {
	t.Helper()
	s := scanner.New()
	s.Reset(line)
	ev := New(symbols)
	ctx := &asmctx.Context{Bits: 32}
	terms, _, _, stop, ok := ev.Evaluate(s, s.Next(), ctx, critical)
	return terms, stop, ok
}

func TestEvaluateNumber(t *testing.T) {
	terms, stop, ok := evalLine(t, symtab.New(), "1", false)
	if !ok {
		t.Fatal("expected ok")
	}
	if len(terms) != 1 || terms[0].Kind != Simple || terms[0].Value != 1 {
		t.Fatalf("unexpected terms: %+v", terms)
	}
	if stop.Kind != token.EndOfStatement {
		t.Fatalf("expected EndOfStatement, got %v", stop.Kind)
	}
}

func TestEvaluateAddition(t *testing.T) {
	terms, _, ok := evalLine(t, symtab.New(), "ecx*4+8", false)
	if !ok {
		t.Fatal("expected ok")
	}
	if len(terms) != 2 {
		t.Fatalf("expected 2 terms, got %d: %+v", len(terms), terms)
	}
	if terms[0].Kind != Register || terms[0].Value != 4 {
		t.Fatalf("expected register term with coeff 4, got %+v", terms[0])
	}
	if terms[1].Kind != Simple || terms[1].Value != 8 {
		t.Fatalf("expected simple term 8, got %+v", terms[1])
	}
}

func TestEvaluateStopsAtColon(t *testing.T) {
	terms, stop, ok := evalLine(t, symtab.New(), "ds:ebx", false)
	if !ok {
		t.Fatal("expected ok")
	}
	if len(terms) != 1 || terms[0].Kind != Register {
		t.Fatalf("expected a single register term for ds, got %+v", terms)
	}
	if stop.Kind != token.Colon {
		t.Fatalf("expected stop at colon, got %v", stop.Kind)
	}
}

func TestEvaluateUnknownIdentifier(t *testing.T) {
	terms, _, ok := evalLine(t, symtab.New(), "undefined_label", false)
	if !ok {
		t.Fatal("expected ok on a non-critical pass")
	}
	if len(terms) != 1 || terms[0].Kind != Unknown {
		t.Fatalf("expected an Unknown term, got %+v", terms)
	}
}

func TestEvaluateCriticalUnknownFails(t *testing.T) {
	_, _, ok := evalLine(t, symtab.New(), "undefined_label", true)
	if ok {
		t.Fatal("expected critical evaluation of an unresolved symbol to fail")
	}
}

func TestEvaluateResolvedLabel(t *testing.T) {
	tab := symtab.New()
	tab.DefineLabel("foo", 0, 42, true)
	terms, _, ok := evalLine(t, tab, "foo", false)
	if !ok {
		t.Fatal("expected ok")
	}
	if len(terms) != 1 || terms[0].Kind != Simple || terms[0].Value != 42 {
		t.Fatalf("expected resolved Simple(42), got %+v", terms)
	}
}

func TestEvaluateParenGrouping(t *testing.T) {
	terms, stop, ok := evalLine(t, symtab.New(), "(1+2)", false)
	if !ok {
		t.Fatal("expected ok")
	}
	if len(terms) != 2 {
		t.Fatalf("expected 2 simple terms, got %+v", terms)
	}
	if stop.Kind != token.EndOfStatement {
		t.Fatalf("expected EndOfStatement after closing paren, got %v", stop.Kind)
	}
}

func TestEvaluateWrt(t *testing.T) {
	terms, _, ok := evalLine(t, symtab.New(), "foo wrt rip", false)
	if !ok {
		t.Fatal("expected ok")
	}
	if len(terms) != 2 || terms[1].Kind != Wrt {
		t.Fatalf("expected a trailing Wrt term, got %+v", terms)
	}
}
