package modules

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/google/uuid"

	"github.com/b-macker/naab/internal/diag"
	"github.com/b-macker/naab/internal/lexer"
	"github.com/b-macker/naab/internal/parser"
	"github.com/b-macker/naab/internal/runtime"
)

// ExecuteFunc runs a parsed module's declarations (never its main block)
// in m.Env. The evaluator supplies this so the resolver can drive
// execute-once ordering without depending on internal/evaluator.
type ExecuteFunc func(m *Module) error

// Resolver owns the path→Module registry and the search order:
// (a) relative to the importing file's directory, (b) a naab_modules/
// subtree, (c) the per-user module directory, (d) the system-wide module
// directory.
type Resolver struct {
	registry map[string]*Module
	execute  ExecuteFunc

	userDir   string
	systemDir string

	newEnv func() *runtime.Environment
}

// Option configures a Resolver, following the functional-option style the
// lexer and parser use.
type Option func(*Resolver)

// WithUserDir overrides the per-user module directory (default
// ~/.naab/modules).
func WithUserDir(dir string) Option { return func(r *Resolver) { r.userDir = dir } }

// WithSystemDir overrides the system-wide module directory (default
// /usr/local/lib/naab/modules).
func WithSystemDir(dir string) Option { return func(r *Resolver) { r.systemDir = dir } }

// NewResolver constructs a Resolver. newEnv creates the fresh environment
// each module's declarations execute in (a child of the evaluator's
// global scope); execute runs those declarations.
func NewResolver(newEnv func() *runtime.Environment, execute ExecuteFunc, opts ...Option) *Resolver {
	r := &Resolver{
		registry:  make(map[string]*Module),
		execute:   execute,
		newEnv:    newEnv,
		systemDir: "/usr/local/lib/naab/modules",
	}
	if home, err := os.UserHomeDir(); err == nil {
		r.userDir = filepath.Join(home, ".naab", "modules")
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Lookup returns the already-loaded module at canonical path, if any.
func (r *Resolver) Lookup(path string) (*Module, bool) {
	m, ok := r.registry[path]
	return m, ok
}

// Modules returns every registered module in topological order (each
// module after its dependencies, ties broken by path), useful for
// dependency reports.
func (r *Resolver) Modules() []*Module {
	paths := make([]string, 0, len(r.registry))
	for p := range r.registry {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	seen := make(map[*Module]bool, len(paths))
	out := make([]*Module, 0, len(paths))
	var visit func(m *Module)
	visit = func(m *Module) {
		if seen[m] {
			return
		}
		seen[m] = true
		for _, dep := range m.Dependencies {
			visit(dep)
		}
		out = append(out, m)
	}
	for _, p := range paths {
		visit(r.registry[p])
	}
	return out
}

// Load resolves path relative to importerDir, parses the file and its
// transitive dependencies, checks the dependency DAG for cycles, and
// executes every not-yet-executed module leaves first. Loading is
// idempotent: a path that is already Executed returns its Module
// unchanged.
func (r *Resolver) Load(path, importerDir string) (*Module, error) {
	m, err := r.ensureParsed(path, importerDir, nil)
	if err != nil {
		return nil, err
	}
	if err := r.executeTree(m); err != nil {
		return nil, err
	}
	return m, nil
}

// ensureParsed resolves and parses path and, recursively, everything it
// imports. chain is the active traversal path used for cycle reporting:
// meeting a module already on the chain is a fatal import cycle.
func (r *Resolver) ensureParsed(path, importerDir string, chain []*Module) (*Module, error) {
	resolved, err := r.resolvePath(path, importerDir)
	if err != nil {
		return nil, diag.New(diag.ImportError, "cannot resolve module %q: %v", path, err)
	}

	if m, ok := r.registry[resolved]; ok {
		for _, link := range chain {
			if link == m {
				return nil, diag.New(diag.ImportError, "import cycle detected: %s", formatCycle(chain, m))
			}
		}
		return m, nil
	}

	src, err := os.ReadFile(resolved)
	if err != nil {
		return nil, diag.New(diag.ImportError, "cannot read module %q: %v", resolved, err)
	}

	l := lexer.New(string(src))
	p := parser.New(l)
	prog := p.ParseProgram()
	if errs := p.Errors(); len(errs) > 0 {
		// parse failures in an imported file become ImportErrors that
		// include the importer's location.
		return nil, diag.New(diag.ImportError, "parse error in module %q: %s (at %s)",
			resolved, errs[0].Message, errs[0].Pos)
	}

	m := &Module{
		ID:     uuid.New(),
		Path:   resolved,
		Source: string(src),
		AST:    prog,
		Env:    r.newEnv(),
		State:  Parsed,
	}
	r.registry[resolved] = m

	dir := filepath.Dir(resolved)
	for _, dep := range importsOf(prog) {
		depMod, err := r.ensureParsed(dep, dir, append(chain, m))
		if err != nil {
			return nil, err
		}
		m.Dependencies = append(m.Dependencies, depMod)
	}
	return m, nil
}

// executeTree runs m's dependency DAG in topological order, leaves before
// dependants, each module exactly once. A module found in state Executing
// here is a cycle the parse-time chain check missed (possible when two
// Load calls interleave through the evaluator), reported identically.
func (r *Resolver) executeTree(m *Module) error {
	switch m.State {
	case Executed:
		return nil
	case Executing:
		return diag.New(diag.ImportError, "import cycle detected at %q", m.Path)
	}
	m.State = Executing
	for _, dep := range m.Dependencies {
		if err := r.executeTree(dep); err != nil {
			return err
		}
	}
	if r.execute != nil {
		if err := r.execute(m); err != nil {
			return err
		}
	}
	m.State = Executed
	return nil
}

// resolvePath maps a source-level module path to a canonical file path
// using the search order. Dotted paths have already been rewritten
// to slash form by the parser; a missing.naab extension is appended.
func (r *Resolver) resolvePath(path, importerDir string) (string, error) {
	rel := path
	if !strings.HasSuffix(rel, ".naab") {
		rel += ".naab"
	}

	if filepath.IsAbs(rel) {
		return canonical(rel)
	}

	// (a) relative to the importing file's directory.
	if importerDir != "" {
		if p := filepath.Join(importerDir, rel); fileExists(p) {
			return canonical(p)
		}
		// (b) the conventional naab_modules/ subtree; doublestar lets a
		// package ship its entry point anywhere under its own directory.
		root := filepath.Join(importerDir, "naab_modules")
		if p, ok := globOne(root, rel); ok {
			return canonical(p)
		}
	}

	// (c) per-user, (d) system-wide module directories.
	for _, dir := range []string{r.userDir, r.systemDir} {
		if dir == "" {
			continue
		}
		if p := filepath.Join(dir, rel); fileExists(p) {
			return canonical(p)
		}
		if p, ok := globOne(dir, rel); ok {
			return canonical(p)
		}
	}

	return "", fmt.Errorf("not found in search path")
}

// globOne matches rel anywhere under root (root/**/rel) and returns the
// lexically first hit so resolution stays deterministic.
func globOne(root, rel string) (string, bool) {
	if !dirExists(root) {
		return "", false
	}
	matches, err := doublestar.Glob(os.DirFS(root), "**/"+filepath.ToSlash(rel))
	if err != nil || len(matches) == 0 {
		return "", false
	}
	best := matches[0]
	for _, m := range matches[1:] {
		if m < best {
			best = m
		}
	}
	return filepath.Join(root, filepath.FromSlash(best)), true
}

// canonical deduplicates aliases of the same file.
func canonical(p string) (string, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", err
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved, nil
	}
	return abs, nil
}

func fileExists(p string) bool {
	info, err := os.Stat(p)
	return err == nil && !info.IsDir()
}

func dirExists(p string) bool {
	info, err := os.Stat(p)
	return err == nil && info.IsDir()
}

func formatCycle(chain []*Module, repeat *Module) string {
	var parts []string
	for _, m := range chain {
		parts = append(parts, m.Basename())
	}
	parts = append(parts, repeat.Basename())
	return strings.Join(parts, " -> ")
}

// DependencyReport renders the dependency DAG rooted at m in topological
// order (leaves first), one module per line with its direct dependencies.
func DependencyReport(m *Module) string {
	var b strings.Builder
	seen := make(map[*Module]bool)
	var walk func(mod *Module)
	walk = func(mod *Module) {
		if seen[mod] {
			return
		}
		seen[mod] = true
		for _, dep := range mod.Dependencies {
			walk(dep)
		}
		deps := make([]string, len(mod.Dependencies))
		for i, dep := range mod.Dependencies {
			deps[i] = dep.Basename()
		}
		if len(deps) > 0 {
			fmt.Fprintf(&b, "%s <- %s\n", mod.Basename(), strings.Join(deps, ", "))
		} else {
			fmt.Fprintf(&b, "%s\n", mod.Basename())
		}
	}
	walk(m)
	return b.String()
}
