// Package symtab is the label/segment collaborator the parser calls into
// whenever a statement defines a label — grounded on the teacher's
// internal/asm.Label, reshaped from a single-field bookmark struct into a
// table keyed by name and able to distinguish a first definition from a
// redefinition, the way define_label's "defining" flag does.
package symtab

import "sync"

// NoSeg is the sentinel segment id meaning "no segment yet assigned".
const NoSeg int32 = -1

// Symbol is one entry of the table: a name bound to a position in the
// program being assembled.
type Symbol struct {
	Name    string
	Segment int32
	Offset  int64

	// Defining is true once a statement has actually defined this symbol
	// (as opposed to it merely being referenced forward).
	Defining bool
}

// Table is the default, thread-safe, map-backed symbol table.
type Table struct {
	mu      sync.Mutex
	symbols map[string]Symbol
}

// New returns an empty Table.
func New() *Table {
	return &Table{symbols: make(map[string]Symbol)}
}

// DefineLabel records name as bound to (segment, offset). defining
// distinguishes an actual label definition (the colon/bare-identifier case
// LineParser step 1 handles) from a forward reference created by some other
// collaborator; a later call with defining=true is allowed to override an
// earlier forward reference without it counting as a redefinition.
func (t *Table) DefineLabel(name string, segment int32, offset int64, defining bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	existing, ok := t.symbols[name]
	if ok && existing.Defining && defining {
		// Redefinition across passes is expected (multi-pass assembly
		// re-runs the same source); last write wins, mirroring NASM's
		// pass-tolerant label redefinition semantics.
	}
	t.symbols[name] = Symbol{Name: name, Segment: segment, Offset: offset, Defining: defining}
}

// Lookup returns the symbol bound to name, if any.
func (t *Table) Lookup(name string) (Symbol, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	s, ok := t.symbols[name]
	return s, ok
}

// Defined reports whether name has ever been defined (as opposed to merely
// looked up as a forward reference).
func (t *Table) Defined(name string) bool {
	s, ok := t.Lookup(name)
	return ok && s.Defining
}
