package diag

import "fmt"

// Severity classifies how serious a recorded Entry is. It mirrors the
// four-way split from §7 (the second-pass case is carried by Entry.Pass
// rather than a severity of its own): a warning never changes what gets
// built, a nonfatal error continues parsing the current line to surface
// further diagnostics (the parser clears the opcode to None only where no
// meaningful instruction can be built), and a fatal error aborts the line
// outright.
type Severity string

const (
	SeverityWarning  Severity = "warning"
	SeverityNonFatal Severity = "nonfatal"
	SeverityFatal    Severity = "fatal"
)

// Entry is a single diagnostic event. Once created its fields are
// immutable — there is no builder/chaining API because the parser never
// needs to annotate an entry after the fact.
type Entry struct {
	Severity Severity
	Class    WarnClass
	Pass     Pass
	Message  string
	Location Location
}

func (e Entry) String() string {
	if e.Class != "" {
		return fmt.Sprintf("%s [%s] %s: %s", e.Severity, e.Class, e.Location, e.Message)
	}
	return fmt.Sprintf("%s %s: %s", e.Severity, e.Location, e.Message)
}
