package parser

import (
	"testing"

	"github.com/kstmt/x86line/instruction"
	"github.com/kstmt/x86line/internal/diag"
	"github.com/kstmt/x86line/internal/scanner"
	"github.com/kstmt/x86line/internal/token"
)

func TestParseDecoratorsOpmaskZeroBroadcast(t *testing.T) {
	s := scanner.New()
	s.Reset("{k2}{z}{1to8} ,")

	first := s.Next()
	sink := diag.NewContext()

	deco, stop, ok := parseDecorators(s, first, sink, diag.Loc(1, 1))
	if !ok {
		t.Fatalf("expected clean parse, diagnostics: %+v", sink.NonFatals())
	}
	if deco.Opmask() != 2 {
		t.Fatalf("expected opmask k2, got %d", deco.Opmask())
	}
	if deco&instruction.DecoZ == 0 {
		t.Fatalf("expected Z bit set, got %#x", deco)
	}
	if !deco.HasBroadcast() {
		t.Fatal("expected broadcast decorator set")
	}
	if deco.BroadcastNumber() != 3 {
		t.Fatalf("expected brnum 3 (1to8), got %d", deco.BroadcastNumber())
	}
	if stop.Kind != token.Comma {
		t.Fatalf("expected stop token to be comma, got %v", stop.Kind)
	}
}

func TestParseDecoratorsDuplicateOpmaskErrors(t *testing.T) {
	s := scanner.New()
	s.Reset("{k1}{k2}")

	first := s.Next()
	sink := diag.NewContext()

	_, _, ok := parseDecorators(s, first, sink, diag.Loc(1, 1))
	if ok {
		t.Fatal("expected failure on a duplicate opmask")
	}
	if len(sink.NonFatals()) == 0 {
		t.Fatal("expected a diagnostic for the duplicate opmask")
	}
}
