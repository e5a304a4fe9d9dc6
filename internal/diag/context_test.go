package diag

import "testing"

func TestNewContext(t *testing.T) {
	t.Run("starts empty", func(t *testing.T) {
		c := NewContext()
		if c.HasErrors() {
			t.Fatal("expected no errors on a fresh context")
		}
		if len(c.Entries()) != 0 {
			t.Fatalf("expected 0 entries, got %d", len(c.Entries()))
		}
	})
}

func TestContext_WarnDoesNotCountAsError(t *testing.T) {
	c := NewContext()
	c.Warn(Loc(1, 1), WarnLabelOrphan, "label alone on a line without a colon might be in error")

	if c.HasErrors() {
		t.Fatal("a warning must not count as an error")
	}
	if len(c.Warnings()) != 1 {
		t.Fatalf("expected 1 warning, got %d", len(c.Warnings()))
	}
}

func TestContext_NonFatalCountsAsError(t *testing.T) {
	c := NewContext()
	c.NonFatal(Loc(3, 5), "instruction has conflicting prefixes")

	if !c.HasErrors() {
		t.Fatal("expected NonFatal to count as an error")
	}
	if len(c.NonFatals()) != 1 {
		t.Fatalf("expected 1 nonfatal, got %d", len(c.NonFatals()))
	}
}

func TestContext_NonFatalPassTagsThePass(t *testing.T) {
	c := NewContext()
	c.NonFatalPass(Loc(2, 0), PassTwo, "TIMES value %d is negative", -4)

	entries := c.Entries()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].Pass != PassTwo {
		t.Fatalf("expected PassTwo, got %v", entries[0].Pass)
	}
	if entries[0].Message != "TIMES value -4 is negative" {
		t.Fatalf("unexpected message: %q", entries[0].Message)
	}
}

func TestContext_Reset(t *testing.T) {
	c := NewContext()
	c.Warn(Loc(1, 1), WarnOther, "instruction has redundant prefixes")
	c.Reset()

	if len(c.Entries()) != 0 {
		t.Fatal("expected Reset to clear all entries")
	}
}
