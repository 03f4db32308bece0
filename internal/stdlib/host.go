// Package stdlib implements the built-in module host: each built-in
// module exposes a uniform Call(fn, args) entry point the evaluator
// reaches through the __stdlib_module__ / __stdlib_call__ marker
// mechanism.
package stdlib

import (
	"io"
	"sort"

	"github.com/b-macker/naab/internal/diag"
	"github.com/b-macker/naab/internal/runtime"
)

// Module is one built-in module's uniform entry point.
type Module interface {
	Name() string
	Call(fn string, args []*runtime.Value) (*runtime.Value, error)
}

// Caller invokes a host FunctionValue on behalf of a module — the
// function-evaluator callback the array module needs for its
// higher-order operations.
type Caller func(fn *runtime.Value, args []*runtime.Value) (*runtime.Value, error)

// Host is the registry of built-in modules the evaluator dispatches
// __stdlib_call__ markers to.
type Host struct {
	modules map[string]Module
	out     io.Writer
	in      io.Reader
	caller  Caller
	args    []string
}

// NewHost constructs a Host with every built-in module registered. out
// receives io.write/io.print output; in feeds io.read_line.
func NewHost(out io.Writer, in io.Reader) *Host {
	h := &Host{modules: make(map[string]Module), out: out, in: in}
	for _, m := range []Module{
		&ioModule{host: h},
		&stringModule{},
		&arrayModule{host: h},
		&jsonModule{},
		&timeModule{},
		&mathModule{},
		&fsModule{},
		&envModule{host: h},
		&httpModule{},
		&regexModule{},
		&cryptoModule{},
		&collectionsModule{},
		&csvModule{},
		&debugModule{},
	} {
		h.modules[m.Name()] = m
	}
	return h
}

// SetCaller installs the function-evaluator callback used by the array
// module's map_fn/filter_fn/reduce_fn.
func (h *Host) SetCaller(c Caller) { h.caller = c }

// SetArgs records the script's positional arguments for env.get_args.
func (h *Host) SetArgs(args []string) { h.args = args }

// Has reports whether name is a built-in module.
func (h *Host) Has(name string) bool {
	_, ok := h.modules[name]
	return ok
}

// Names lists the registered module names, sorted.
func (h *Host) Names() []string {
	names := make([]string, 0, len(h.modules))
	for n := range h.modules {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Call dispatches module.fn(args), the target of a __stdlib_call__
// marker.
func (h *Host) Call(module, fn string, args []*runtime.Value) (*runtime.Value, error) {
	m, ok := h.modules[module]
	if !ok {
		return nil, diag.New(diag.ReferenceError, "unknown stdlib module %q", module)
	}
	return m.Call(fn, args)
}

// errUnknown is the shared "no such function" diagnostic every module
// falls through to.
func errUnknown(module, fn string) error {
	return diag.New(diag.ReferenceError, "%s has no function %q", module, fn)
}

// argCount enforces an exact arity.
func argCount(module, fn string, args []*runtime.Value, want int) error {
	if len(args) != want {
		return diag.New(diag.RuntimeError, "%s.%s expects %d argument(s), got %d", module, fn, want, len(args))
	}
	return nil
}

// argString coerces args[i] to its string form.
func argString(args []*runtime.Value, i int) string {
	if i >= len(args) {
		return ""
	}
	return args[i].ToString()
}
