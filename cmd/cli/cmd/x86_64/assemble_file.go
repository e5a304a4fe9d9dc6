package x86_64

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/kstmt/x86line/instruction"
	"github.com/kstmt/x86line/internal/asmctx"
	"github.com/kstmt/x86line/internal/diag"
	"github.com/kstmt/x86line/internal/lineclass"
	"github.com/kstmt/x86line/internal/symtab"
	"github.com/kstmt/x86line/parser"
	"github.com/spf13/cobra"
)

var AssembleFileCmd = &cobra.Command{
	Use:     "parse-file [assembly-file]",
	GroupID: "file-operations",
	Short:   "Parse an x86_64 assembly file line by line and print the resulting statements.",
	Long: `Parse an x86_64 assembly file line by line and print the resulting
statements. Reads from the given file, or from stdin if no file is given.
This is a thin demonstration of the parser package, not a full assembler
driver: it does not preprocess, link, or emit machine code.`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := runAssembleFile(cmd, args); err != nil {
			cmd.PrintErrln("Error:", err)
			os.Exit(1)
		}
	},
}

// runAssembleFile opens the requested source (or stdin), parses it line by
// line with a fresh Parser, and prints each resulting statement together
// with any diagnostics raised while parsing it.
func runAssembleFile(cmd *cobra.Command, args []string) error {
	r, closer, err := openSource(args)
	if err != nil {
		return err
	}
	if closer != nil {
		defer closer.Close()
	}

	sink := diag.NewContext()
	symbols := symtab.New()
	p := parser.New(sink, symbols)
	ctx := &asmctx.Context{Bits: 64, GlobalRel: true, Pass: asmctx.PassFinal}

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if lineclass.IsEmpty(line) || lineclass.IsComment(line) {
			continue
		}
		if lineclass.ContainsSemicolon(line) {
			line = lineclass.StripComment(line)
		}

		before := len(sink.Entries())
		in := p.ParseLine(ctx, line)
		printInstruction(cmd, lineNo, in)
		printDiagnostics(cmd, sink.Entries()[before:])
	}
	return scanner.Err()
}

// openSource resolves the CLI argument into a readable source: a named
// file if one was given, otherwise the process's stdin.
func openSource(args []string) (io.Reader, io.Closer, error) {
	if len(args) == 0 || args[0] == "" {
		return os.Stdin, nil, nil
	}
	f, err := os.Open(args[0])
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open assembly file: %w", err)
	}
	return f, f, nil
}

// printInstruction prints a one-line summary of a parsed statement: its
// line number, recognised label (if any), opcode, and operand count. Uses
// OutOrStdout directly rather than cmd.Printf, which cobra routes to
// stderr.
func printInstruction(cmd *cobra.Command, lineNo int, in *instruction.Instruction) {
	label := ""
	if in.Label != "" {
		label = in.Label + ": "
	}
	if !in.Ok() {
		fmt.Fprintf(cmd.OutOrStdout(), "%4d: %s<no statement>\n", lineNo, label)
		return
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%4d: %s%s (%d operand(s))\n", lineNo, label, in.Opcode, in.OperandCount)
}

// printDiagnostics prints every diagnostic entry raised while parsing one
// line, indented under that line's summary.
func printDiagnostics(cmd *cobra.Command, entries []diag.Entry) {
	for _, e := range entries {
		fmt.Fprintf(cmd.OutOrStdout(), "      %s\n", e.String())
	}
}
