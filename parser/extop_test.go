package parser

import (
	"testing"

	"github.com/kstmt/x86line/instruction"
)

func TestParseLineDupGroup(t *testing.T) {
	p, sink := newTestParser()
	ctx := newTestContext()

	in := p.ParseLine(ctx, "db 3 dup (1, 2)")

	if in.Opcode != instruction.DB {
		t.Fatalf("expected DB, got %v (diagnostics: %+v)", in.Opcode, sink.NonFatals())
	}
	if len(in.Eops) != 1 {
		t.Fatalf("expected a single wrapped group, got %d eops", len(in.Eops))
	}
	group := in.Eops[0]
	if group.Kind != instruction.ExtGroup || group.Dup != 3 {
		t.Fatalf("expected ExtGroup with dup=3, got %+v", group)
	}
	if len(group.Children) != 2 {
		t.Fatalf("expected 2 children, got %d", len(group.Children))
	}
	if group.Children[0].Offset != 1 || group.Children[1].Offset != 2 {
		t.Fatalf("unexpected children offsets: %+v", group.Children)
	}
}

func TestParseLineDupSingleChildFlattens(t *testing.T) {
	p, _ := newTestParser()
	ctx := newTestContext()

	in := p.ParseLine(ctx, "db 5 dup (9)")

	if len(in.Eops) != 1 {
		t.Fatalf("expected a single flattened node, got %d", len(in.Eops))
	}
	node := in.Eops[0]
	if node.Kind != instruction.DbNumber || node.Dup != 5 || node.Offset != 9 {
		t.Fatalf("expected a flattened DbNumber(dup=5, offset=9), got %+v", node)
	}
}

func TestParseLineDupZeroElidesNode(t *testing.T) {
	p, _ := newTestParser()
	ctx := newTestContext()

	in := p.ParseLine(ctx, "db 0 dup (9), 1")

	if len(in.Eops) != 1 {
		t.Fatalf("expected the zero-dup group to be elided, leaving 1 eop, got %d: %+v", len(in.Eops), in.Eops)
	}
	if in.Eops[0].Offset != 1 {
		t.Fatalf("expected the surviving eop to be the literal 1, got %+v", in.Eops[0])
	}
}

func TestParseLineStringFunctionUTF16LE(t *testing.T) {
	p, _ := newTestParser()
	ctx := newTestContext()

	in := p.ParseLine(ctx, `db __utf16le__("Hi")`)

	if len(in.Eops) != 1 {
		t.Fatalf("expected 1 eop, got %d", len(in.Eops))
	}
	got := []byte(in.Eops[0].Data)
	want := []byte{0x48, 0x00, 0x69, 0x00}
	if len(got) != len(want) {
		t.Fatalf("expected %d bytes, got %d: %v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("byte %d: expected %#x, got %#x", i, want[i], got[i])
		}
	}
}

func TestParseLineSizeOverrideGroup(t *testing.T) {
	p, _ := newTestParser()
	ctx := newTestContext()

	in := p.ParseLine(ctx, "dd word(1, 2)")

	if len(in.Eops) != 1 {
		t.Fatalf("expected 1 wrapped group, got %d", len(in.Eops))
	}
	group := in.Eops[0]
	if group.Kind != instruction.ExtGroup || group.Elem != 2 {
		t.Fatalf("expected an ExtGroup with elem=2 (word override), got %+v", group)
	}
}
