package diag

import (
	"fmt"
	"sync"
)

// Context is the concrete, thread-safe, append-only Sink implementation.
// Every stage of a pipeline built on top of this module records into the
// same Context by reference, the same way the teacher's DebugContext is
// threaded through a preprocessing/parsing/codegen pipeline.
//
// Create a Context exclusively through NewContext.
type Context struct {
	mu      sync.Mutex
	entries []Entry
}

// NewContext returns a ready-to-use, empty Context.
func NewContext() *Context {
	return &Context{entries: make([]Entry, 0)}
}

func (c *Context) record(e Entry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = append(c.entries, e)
}

func (c *Context) Warn(loc Location, class WarnClass, format string, args ...any) {
	c.record(Entry{
		Severity: SeverityWarning,
		Class:    class,
		Message:  fmt.Sprintf(format, args...),
		Location: loc,
	})
}

func (c *Context) NonFatal(loc Location, format string, args ...any) {
	c.record(Entry{
		Severity: SeverityNonFatal,
		Message:  fmt.Sprintf(format, args...),
		Location: loc,
	})
}

func (c *Context) NonFatalPass(loc Location, pass Pass, format string, args ...any) {
	c.record(Entry{
		Severity: SeverityNonFatal,
		Pass:     pass,
		Message:  fmt.Sprintf(format, args...),
		Location: loc,
	})
}

// Entries returns a defensive copy of every entry recorded so far, in
// insertion order.
func (c *Context) Entries() []Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

// HasErrors reports whether any nonfatal or fatal entry has been recorded.
func (c *Context) HasErrors() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, e := range c.entries {
		if e.Severity != SeverityWarning {
			return true
		}
	}
	return false
}

// Warnings returns only the warning-severity entries.
func (c *Context) Warnings() []Entry {
	return c.filter(SeverityWarning)
}

// NonFatals returns only the nonfatal-severity entries.
func (c *Context) NonFatals() []Entry {
	return c.filter(SeverityNonFatal)
}

func (c *Context) filter(sev Severity) []Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []Entry
	for _, e := range c.entries {
		if e.Severity == sev {
			out = append(out, e)
		}
	}
	return out
}

// Reset discards every recorded entry. The driver calls this between
// lines when it wants per-line diagnostic batches rather than a
// whole-file accumulation.
func (c *Context) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = c.entries[:0]
}

var _ Sink = (*Context)(nil)
