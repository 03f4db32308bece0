// Package evaluator implements the tree-walking evaluator: an AST
// visitor that drives one value-producing expression at a time, owns the
// type checks and generics monomorphization, carries the transient
// returning/breaking/continuing control-flow flags, and routes
// InlineCode and block member calls to the polyglot dispatcher.
package evaluator

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/b-macker/naab/internal/ast"
	"github.com/b-macker/naab/internal/diag"
	"github.com/b-macker/naab/internal/exec"
	"github.com/b-macker/naab/internal/gcollect"
	"github.com/b-macker/naab/internal/lexer"
	"github.com/b-macker/naab/internal/modules"
	"github.com/b-macker/naab/internal/polyglot"
	"github.com/b-macker/naab/internal/runtime"
	"github.com/b-macker/naab/internal/stdlib"
	"github.com/b-macker/naab/internal/structs"
	"github.com/b-macker/naab/internal/types"
)

// Marker prefixes for the member-expression dispatch: stdlib
// modules, stdlib calls, user modules, and enum types are represented as
// tagged string values so they can flow through ordinary bindings.
const (
	stdlibModuleMarker = "__stdlib_module__:"
	stdlibCallMarker   = "__stdlib_call__:"
	userModuleMarker   = "__module__:"
	enumMarker         = "__enum__:"
)

// Interp is one interpreter instance: the Runtime context object
// that owns the struct registry, the module registry, and the shared
// executor handles, passed explicitly instead of living in package
// globals.
type Interp struct {
	globals    *runtime.Environment
	structs    *structs.Registry
	enums      map[string][]string
	methods    map[string]map[string]*ast.FunctionDecl
	resolver   *modules.Resolver
	dispatcher *polyglot.Dispatcher
	gc         *gcollect.Collector
	stack      *diag.CallStack
	host       *stdlib.Host

	out        io.Writer
	errOut     io.Writer
	stdin      io.Reader
	scriptArgs []string
	tracing    bool

	file   string
	source string

	// Transient control-flow flags.
	returning   bool
	breaking    bool
	continuing  bool
	returnValue *runtime.Value

	// currentEnv is the innermost scope at any point of evaluation;
	// envStack holds every compound scope currently executing, so the GC
	// root set covers caller frames as well as the innermost chain.
	currentEnv *runtime.Environment
	envStack   []*runtime.Environment

	// substStack holds the active generic type-parameter substitutions,
	// one map per in-flight generic call.
	substStack []map[string]*types.Type

	// refStack holds, per in-flight call, the caller cells bound to
	// reference parameters, so assignment through the parameter name
	// mutates the caller's cell in place.
	refStack []map[string]*runtime.Value

	inferCache map[*ast.FunctionDecl]*types.Type

	parallelBlocks bool
	maxCallDepth   int
}

// Option configures an Interp at construction time.
type Option func(*Interp)

// WithOut redirects program output (print, io.write, flushed polyglot
// stdout).
func WithOut(w io.Writer) Option { return func(i *Interp) { i.out = w } }

// WithErrOut redirects warnings and trace output.
func WithErrOut(w io.Writer) Option { return func(i *Interp) { i.errOut = w } }

// WithStdin feeds io.read_line.
func WithStdin(r io.Reader) Option { return func(i *Interp) { i.stdin = r } }

// WithExecutors replaces the default polyglot executor registry.
func WithExecutors(reg map[string]exec.Executor) Option {
	return func(i *Interp) { i.dispatcher = polyglot.New(reg, i.out) }
}

// WithGCThreshold overrides the allocation count between automatic cycle
// collections (default 1000).
func WithGCThreshold(n int) Option { return func(i *Interp) { i.gc = gcollect.New(n) } }

// WithArgs supplies the script's positional arguments for env.get_args.
func WithArgs(args []string) Option { return func(i *Interp) { i.scriptArgs = args } }

// WithTracing enables --debug tracing of statement execution.
func WithTracing(on bool) Option { return func(i *Interp) { i.tracing = on } }

// WithParallelBlocks turns on parallel-batch execution of
// independent top-level polyglot blocks in main.
func WithParallelBlocks(on bool) Option { return func(i *Interp) { i.parallelBlocks = on } }

// WithModuleDirs overrides the per-user and system module search
// directories of the resolver.
func WithModuleDirs(userDir, systemDir string) Option {
	return func(i *Interp) {
		i.resolver = modules.NewResolver(i.newModuleEnv, i.executeModule,
			modules.WithUserDir(userDir), modules.WithSystemDir(systemDir))
	}
}

// New constructs a ready-to-run interpreter instance.
func New(opts ...Option) *Interp {
	i := &Interp{
		globals:      runtime.NewEnvironment(),
		structs:      structs.NewRegistry(),
		enums:        make(map[string][]string),
		methods:      make(map[string]map[string]*ast.FunctionDecl),
		stack:        diag.NewCallStack(),
		out:          os.Stdout,
		errOut:       os.Stderr,
		inferCache:   make(map[*ast.FunctionDecl]*types.Type),
		maxCallDepth: 1000,
	}
	i.gc = gcollect.New(1000)
	i.stdin = os.Stdin
	for _, o := range opts {
		o(i)
	}
	if i.dispatcher == nil {
		i.dispatcher = polyglot.New(exec.DefaultRegistry(), i.out)
	}
	if i.resolver == nil {
		i.resolver = modules.NewResolver(i.newModuleEnv, i.executeModule)
	}
	i.host = stdlib.NewHost(i.out, i.stdin)
	i.host.SetArgs(i.scriptArgs)
	i.host.SetCaller(func(fn *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
		return i.callFunctionValue(fn, args, nil, lexer.Position{})
	})
	i.gc.SetRoots(i.gcRoots)
	i.currentEnv = i.globals
	return i
}

// Run parses nothing itself: it executes an already-parsed program.
// Top-level use/import statements run first, then the remaining declarations in
// source order, then the main block, if any.
func (i *Interp) Run(prog *ast.Program, file, source string) error {
	i.file = file
	i.source = source

	var main *ast.MainBlock
	var rest []ast.Statement
	for _, stmt := range prog.Statements {
		switch s := stmt.(type) {
		case *ast.MainBlock:
			if main != nil {
				return i.fail(diag.SyntaxError, s.Pos(), "duplicate main block")
			}
			main = s
		case *ast.UseStmt, *ast.ModuleUseStmt, *ast.ImportStmt:
			if err := i.execStmt(i.globals, stmt); err != nil {
				return err
			}
		default:
			rest = append(rest, stmt)
		}
	}
	for _, stmt := range rest {
		if err := i.execStmt(i.globals, stmt); err != nil {
			return err
		}
	}
	if main != nil {
		env := runtime.NewEnclosed(i.globals)
		if i.parallelBlocks {
			return i.runMainParallel(env, main.Body)
		}
		return i.execCompound(env, main.Body)
	}
	return nil
}

// newModuleEnv creates the environment a loaded module's declarations
// execute in: a fresh scope descending from the global environment.
func (i *Interp) newModuleEnv() *runtime.Environment {
	return runtime.NewEnclosed(i.globals)
}

// executeModule is the resolver's ExecuteFunc: it runs a module's
// declarations (never a main block) in the module's own environment,
// use-statements first.
func (i *Interp) executeModule(m *modules.Module) error {
	prevFile, prevSource := i.file, i.source
	i.file, i.source = m.Path, m.Source
	defer func() { i.file, i.source = prevFile, prevSource }()

	var rest []ast.Statement
	for _, stmt := range m.AST.Statements {
		switch stmt.(type) {
		case *ast.MainBlock:
			// A module's main block is ignored on import.
		case *ast.UseStmt, *ast.ModuleUseStmt, *ast.ImportStmt:
			if err := i.execStmt(m.Env, stmt); err != nil {
				return err
			}
		default:
			rest = append(rest, stmt)
		}
	}
	for _, stmt := range rest {
		if err := i.execStmt(m.Env, stmt); err != nil {
			return err
		}
	}
	return nil
}

// Resolver exposes the module registry for dependency reports
// (--show-modules).
func (i *Interp) Resolver() *modules.Resolver { return i.resolver }

// GC exposes the cycle collector for observability (total_collected).
func (i *Interp) GC() *gcollect.Collector { return i.gc }

// gcRoots gathers the root set: every value bound anywhere on
// an active environment chain (the innermost scope, every pending caller
// frame, and the globals).
func (i *Interp) gcRoots() []*runtime.Value {
	var roots []*runtime.Value
	seen := make(map[*runtime.Environment]bool)
	walk := func(start *runtime.Environment) {
		for env := start; env != nil; env = env.Parent() {
			if seen[env] {
				return
			}
			seen[env] = true
			env.Traverse(func(v *runtime.Value) { roots = append(roots, v) })
		}
	}
	walk(i.currentEnv)
	for _, env := range i.envStack {
		walk(env)
	}
	walk(i.globals)
	if i.returnValue != nil {
		roots = append(roots, i.returnValue)
	}
	return roots
}

// alloc registers a freshly constructed structured value with the cycle
// collector and bumps the allocation counter.
func (i *Interp) alloc(v *runtime.Value) *runtime.Value {
	switch v.Kind {
	case runtime.KList, runtime.KDict, runtime.KStruct:
		i.gc.Track(v)
	}
	i.gc.NotifyAlloc()
	return v
}

// fail constructs a Diagnostic carrying the current call stack and, when
// source is available, a snippet with a caret.
func (i *Interp) fail(kind diag.Kind, pos lexer.Position, format string, args ...interface{}) error {
	d := diag.New(kind, format, args...)
	d = d.WithStack(i.stack.Snapshot())
	if i.source != "" {
		d = d.WithSource(i.file, pos, i.source)
	}
	return d
}

// warnf reports a non-fatal condition (e.g. an unresolved generic type
// parameter defaulting to Any).
func (i *Interp) warnf(format string, args ...interface{}) {
	fmt.Fprintf(i.errOut, "warning: "+format+"\n", args...)
}

func (i *Interp) trace(format string, args ...interface{}) {
	if i.tracing {
		fmt.Fprintf(i.errOut, "trace: "+format+"\n", args...)
	}
}

// moduleDirOf returns the directory imports inside the currently
// executing file resolve against.
func (i *Interp) moduleDirOf() string {
	if i.file == "" {
		return "."
	}
	return filepath.Dir(i.file)
}

// markerPayload splits "prefix:payload" marker strings.
func markerPayload(s, prefix string) (string, bool) {
	if strings.HasPrefix(s, prefix) {
		return s[len(prefix):], true
	}
	return "", false
}

func isMarker(v *runtime.Value, prefix string) bool {
	if v == nil || v.Kind != runtime.KString {
		return false
	}
	return strings.HasPrefix(v.Str, prefix)
}
