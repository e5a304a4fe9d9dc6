// Package lineclass classifies a raw source line before it ever reaches
// the scanner: is it blank, is it comment-only, does it carry a trailing
// comment that needs stripping first. Grounded on the teacher's
// internal/asm/line_classifier.go, narrowed to the NASM-style single
// ';'-comment convention this module's scanner expects (the teacher's
// GAS-style dot-directive recognition doesn't apply to NASM source and is
// dropped here) and extended with StripComment, since ParseLine itself
// never sees source with a trailing comment attached.
package lineclass

import "regexp"

var (
	blankRe   = regexp.MustCompile(`^\s*$`)
	commentRe = regexp.MustCompile(`^\s*;`)
)

// Characteristics summarises how a line relates to the rest of a
// statement-by-statement driver loop.
type Characteristics struct {
	IsEmpty         bool
	IsComment       bool
	ContainsComment bool
}

// Analyze reports IsEmpty, IsComment and ContainsComment for line.
func Analyze(line string) Characteristics {
	return Characteristics{
		IsEmpty:         IsEmpty(line),
		IsComment:       IsComment(line),
		ContainsComment: ContainsSemicolon(line),
	}
}

// IsEmpty reports whether line has no non-whitespace content.
func IsEmpty(line string) bool {
	return blankRe.MatchString(line)
}

// IsComment reports whether line is a comment line: optional leading
// whitespace followed immediately by ';'.
func IsComment(line string) bool {
	return commentRe.MatchString(line)
}

// ContainsSemicolon reports whether a ';' appears anywhere in line.
func ContainsSemicolon(line string) bool {
	for i := 0; i < len(line); i++ {
		if line[i] == ';' {
			return true
		}
	}
	return false
}

// StripComment removes a trailing ';'-introduced comment from line,
// leaving anything before it untouched. NASM comments run to end of
// line with no escaping, so the first ';' always wins.
func StripComment(line string) string {
	for i := 0; i < len(line); i++ {
		if line[i] == ';' {
			return line[:i]
		}
	}
	return line
}
