// Package polyglot implements the dispatcher: the bridge between
// InlineCode/Member expressions the evaluator walks and the per-language
// Executor implementations of internal/exec. It owns bound-variable
// marshalling, executor selection, captured-stdout flushing, and the
// optional parallel-batch dependency analysis over top-level polyglot
// blocks.
package polyglot

import (
	"fmt"
	"io"
	"sync"

	"github.com/b-macker/naab/internal/exec"
	"github.com/b-macker/naab/internal/runtime"
)

// Lookup resolves a bound-variable name to its current value in the
// evaluator's active scope.
type Lookup func(name string) (*runtime.Value, bool)

// Dispatcher routes InlineCode expressions and block member calls to the
// registered Executor for their language.
type Dispatcher struct {
	executors map[string]exec.Executor
	out       io.Writer

	// sharedMu serializes calls into any executor whose kind is Shared,
	// since a shared runtime keeps mutable global state across calls.
	sharedMu sync.Mutex
}

// New constructs a Dispatcher over the given language→Executor registry,
// flushing captured foreign stdout to out (the host program's stdout).
func New(registry map[string]exec.Executor, out io.Writer) *Dispatcher {
	return &Dispatcher{executors: registry, out: out}
}

func (d *Dispatcher) executorFor(language string) (exec.Executor, error) {
	e, ok := d.executors[language]
	if !ok {
		return nil, fmt.Errorf("no executor registered for polyglot language %q", language)
	}
	return e, nil
}

// ExecuteInline runs an InlineCode expression's body: it builds the
// bound-variable prelude, normalizes indentation, rewrites the trailing
// expression into a marker print (see wrapForReturn), executes with
// return, and flushes captured stdout to the host writer.
func (d *Dispatcher) ExecuteInline(language, code string, boundVars []string, lookup Lookup) (*runtime.Value, error) {
	e, err := d.executorFor(language)
	if err != nil {
		return nil, err
	}
	prelude, err := d.buildPrelude(language, boundVars, lookup)
	if err != nil {
		return nil, err
	}
	full := wrapForReturn(language, prelude+NormalizeIndent(code))

	if exec.KindOf(e) == exec.Shared {
		d.sharedMu.Lock()
		defer d.sharedMu.Unlock()
	}
	v, err := e.ExecuteWithReturn(full)
	d.flush(e)
	if err != nil {
		return nil, err
	}
	return v, nil
}

// ExecuteForEffect runs an InlineCode body for side effects only (the
// `execute` execution mode), used when a `use`-bound block is
// invoked as a bare statement rather than an expression whose value is
// consumed.
func (d *Dispatcher) ExecuteForEffect(language, code string, boundVars []string, lookup Lookup) error {
	e, err := d.executorFor(language)
	if err != nil {
		return err
	}
	prelude, err := d.buildPrelude(language, boundVars, lookup)
	if err != nil {
		return err
	}
	full := wrapForEffect(language, prelude+NormalizeIndent(code))

	if exec.KindOf(e) == exec.Shared {
		d.sharedMu.Lock()
		defer d.sharedMu.Unlock()
	}
	err = e.Execute(full)
	d.flush(e)
	return err
}

// CallMember implements the member-call protocol: a
// `block.method(args)` expression is routed to the owning executor's
// CallFunction with args already marshalled into Values.
func (d *Dispatcher) CallMember(language, memberPath string, args []*runtime.Value) (*runtime.Value, error) {
	e, err := d.executorFor(language)
	if err != nil {
		return nil, err
	}
	if exec.KindOf(e) == exec.Shared {
		d.sharedMu.Lock()
		defer d.sharedMu.Unlock()
	}
	v, err := e.CallFunction(memberPath, args)
	d.flush(e)
	return v, err
}

func (d *Dispatcher) buildPrelude(language string, boundVars []string, lookup Lookup) (string, error) {
	if len(boundVars) == 0 {
		return "", nil
	}
	var b []byte
	for _, name := range boundVars {
		v, ok := lookup(name)
		if !ok {
			return "", fmt.Errorf("bound variable %q is not defined in the enclosing scope", name)
		}
		line, err := serializeBoundVar(language, name, v)
		if err != nil {
			return "", err
		}
		b = append(b, line...)
		b = append(b, '\n')
	}
	return string(b), nil
}

// flush reads and forwards captured stdout from e to the host's stdout,
// preserving interleaving with native prints at the granularity of block
// invocations.
func (d *Dispatcher) flush(e exec.Executor) {
	out := e.GetCapturedOutput()
	if out != "" && d.out != nil {
		io.WriteString(d.out, out)
	}
}
