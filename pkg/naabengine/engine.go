// Package naabengine is the embeddable public API over the NAAb core:
// parse, check, and run NAAb source without going through the CLI.
package naabengine

import (
	"fmt"
	"io"
	"os"

	"github.com/b-macker/naab/internal/ast"
	"github.com/b-macker/naab/internal/evaluator"
	"github.com/b-macker/naab/internal/lexer"
	"github.com/b-macker/naab/internal/parser"
)

// Engine wraps one interpreter instance and its configuration.
type Engine struct {
	opts   []evaluator.Option
	interp *evaluator.Interp
}

// Option configures an Engine.
type Option func(*Engine)

// WithOutput redirects program output.
func WithOutput(w io.Writer) Option {
	return func(e *Engine) { e.opts = append(e.opts, evaluator.WithOut(w)) }
}

// WithErrorOutput redirects warnings and traces.
func WithErrorOutput(w io.Writer) Option {
	return func(e *Engine) { e.opts = append(e.opts, evaluator.WithErrOut(w)) }
}

// WithInput feeds io.read_line.
func WithInput(r io.Reader) Option {
	return func(e *Engine) { e.opts = append(e.opts, evaluator.WithStdin(r)) }
}

// WithArgs supplies the script's positional arguments.
func WithArgs(args []string) Option {
	return func(e *Engine) { e.opts = append(e.opts, evaluator.WithArgs(args)) }
}

// WithTracing enables debug tracing.
func WithTracing(on bool) Option {
	return func(e *Engine) { e.opts = append(e.opts, evaluator.WithTracing(on)) }
}

// WithParallelBlocks enables concurrent execution of independent
// top-level polyglot blocks.
func WithParallelBlocks(on bool) Option {
	return func(e *Engine) { e.opts = append(e.opts, evaluator.WithParallelBlocks(on)) }
}

// WithInterpOptions appends raw evaluator options, for callers that need
// the full surface.
func WithInterpOptions(opts ...evaluator.Option) Option {
	return func(e *Engine) { e.opts = append(e.opts, opts...) }
}

// New constructs an Engine.
func New(opts ...Option) *Engine {
	e := &Engine{}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Parse lexes and parses source, returning the program and any parse
// errors.
func Parse(source string) (*ast.Program, []*parser.ParseError) {
	p := parser.New(lexer.New(source))
	prog := p.ParseProgram()
	return prog, p.Errors()
}

// Check parses source and reports the first error, or nil when the
// program is syntactically valid.
func Check(source, filename string) error {
	_, errs := Parse(source)
	if len(errs) > 0 {
		return fmt.Errorf("%s:%s: %s", filename, errs[0].Pos, errs[0].Message)
	}
	return nil
}

// Run parses and executes source. filename seeds diagnostics and module
// resolution. The Engine's interpreter instance is reused across calls,
// so successive Run calls share globals, loaded modules, and registered
// structs.
func (e *Engine) Run(source, filename string) error {
	prog, errs := Parse(source)
	if len(errs) > 0 {
		return fmt.Errorf("%s:%s: %s", filename, errs[0].Pos, errs[0].Message)
	}
	return e.Interp().Run(prog, filename, source)
}

// RunFile reads and executes path.
func (e *Engine) RunFile(path string) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	return e.Run(string(src), path)
}

// Interp returns the Engine's interpreter instance, creating it on first
// use; callers use it for the dependency report or GC statistics after a
// run.
func (e *Engine) Interp() *evaluator.Interp {
	if e.interp == nil {
		e.interp = evaluator.New(e.opts...)
	}
	return e.interp
}
