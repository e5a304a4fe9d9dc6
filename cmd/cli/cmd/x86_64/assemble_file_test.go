package x86_64

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func runAssembleFileCapture(t *testing.T, args []string) string {
	t.Helper()
	cmd := AssembleFileCmd
	var out bytes.Buffer
	cmd.SetOut(&out)
	if err := runAssembleFile(cmd, args); err != nil {
		t.Fatalf("runAssembleFile failed: %v", err)
	}
	return out.String()
}

func TestRunAssembleFilePrintsRecognisedStatement(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "in.asm")
	if err := os.WriteFile(path, []byte("foo: mov eax, 1\n"), 0644); err != nil {
		t.Fatalf("failed to write source file: %v", err)
	}

	out := runAssembleFileCapture(t, []string{path})

	if !strings.Contains(out, "foo:") {
		t.Errorf("expected label foo in output, got: %s", out)
	}
	if !strings.Contains(out, "mov") {
		t.Errorf("expected mnemonic mov in output, got: %s", out)
	}
	if !strings.Contains(out, "2 operand(s)") {
		t.Errorf("expected 2 operands reported, got: %s", out)
	}
}

func TestRunAssembleFileSkipsBlankLines(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "in.asm")
	if err := os.WriteFile(path, []byte("nop\n\nnop\n"), 0644); err != nil {
		t.Fatalf("failed to write source file: %v", err)
	}

	out := runAssembleFileCapture(t, []string{path})

	if strings.Count(out, "nop") != 2 {
		t.Errorf("expected exactly 2 reported statements, got: %s", out)
	}
}

func TestRunAssembleFilePrintsDiagnostics(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "in.asm")
	if err := os.WriteFile(path, []byte("db 1,\n"), 0644); err != nil {
		t.Fatalf("failed to write source file: %v", err)
	}

	out := runAssembleFileCapture(t, []string{path})

	if !strings.Contains(out, "comma expected after operand") {
		t.Errorf("expected the trailing-comma diagnostic in output, got: %s", out)
	}
}

func TestRunAssembleFileMissingFileErrors(t *testing.T) {
	if err := runAssembleFile(AssembleFileCmd, []string{"/nonexistent/path.asm"}); err == nil {
		t.Fatal("expected an error opening a nonexistent file")
	}
}
