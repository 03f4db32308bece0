// Package diag implements the error and diagnostic subsystem: a
// taxonomy of error kinds, stack-trace capture, source-context rendering
// with a caret, and "did you mean" suggestions.
package diag

import (
	"fmt"
	"strings"

	"github.com/b-macker/naab/internal/lexer"
)

// Kind is the error taxonomy.
type Kind int

const (
	Generic Kind = iota
	TypeError
	RuntimeError
	ReferenceError
	SyntaxError
	ImportError
	BlockError
	AssertionError
)

var kindNames = map[Kind]string{
	Generic:        "Generic",
	TypeError:      "TypeError",
	RuntimeError:   "RuntimeError",
	ReferenceError: "ReferenceError",
	SyntaxError:    "SyntaxError",
	ImportError:    "ImportError",
	BlockError:     "BlockError",
	AssertionError: "AssertionError",
}

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return "Generic"
}

// Frame is one stack-trace entry.
type Frame struct {
	Function string
	File     string
	Line     int
	Column   int
}

func (f Frame) String() string {
	return fmt.Sprintf("  at %s (%s:%d:%d)", f.Function, f.File, f.Line, f.Column)
}

// Diagnostic is a single reported error: a kind, a human message, the call
// stack at the point it was raised, and — when source is available — a
// rendered snippet with a caret.
type Diagnostic struct {
	Kind    Kind
	Message string
	Stack   []Frame

	// Source context, populated when available.
	SourceFile string
	Pos        lexer.Position
	SourceLine string // the offending line's raw text, or "" if unknown

	// Payload carries the thrown value for user `throw` diagnostics
	// nil for every kind except user throws.
	Payload interface{}
}

func New(kind Kind, format string, args ...interface{}) *Diagnostic {
	return &Diagnostic{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func (d *Diagnostic) Error() string { return d.Format() }

// Format renders the diagnostic: `Kind: message`, one ` at
// function (file:line:col)` line per stack frame, then an optional source
// snippet with a caret under the offending column.
func (d *Diagnostic) Format() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s", d.Kind, d.Message)
	for _, f := range d.Stack {
		b.WriteString("\n")
		b.WriteString(f.String())
	}
	if d.SourceLine != "" {
		b.WriteString("\n")
		b.WriteString(d.SourceLine)
		b.WriteString("\n")
		col := d.Pos.Column
		if col < 1 {
			col = 1
		}
		b.WriteString(strings.Repeat(" ", col-1))
		b.WriteString("^")
	}
	return b.String()
}

// WithStack returns a copy of d carrying the given call stack, most-recent
// call first — used by the evaluator when it unwinds an error through
// pending function calls.
func (d *Diagnostic) WithStack(frames []Frame) *Diagnostic {
	cp := *d
	cp.Stack = append([]Frame(nil), frames...)
	return &cp
}

// WithSource attaches a rendered source snippet at pos, reading line from
// the full source text src.
func (d *Diagnostic) WithSource(file string, pos lexer.Position, src string) *Diagnostic {
	cp := *d
	cp.SourceFile = file
	cp.Pos = pos
	cp.SourceLine = lineAt(src, pos.Line)
	return &cp
}

func lineAt(src string, line int) string {
	if line < 1 {
		return ""
	}
	lines := strings.Split(src, "\n")
	if line > len(lines) {
		return ""
	}
	return lines[line-1]
}
