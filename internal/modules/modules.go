// Package modules implements the module resolver and registry: path
// resolution over the conventional search directories, a path→Module
// registry with idempotent loading, transitive dependency discovery with
// import-cycle detection, and topological execute-once ordering.
//
// Execution itself is delegated back to the evaluator through
// ExecuteFunc so this package never depends on internal/evaluator.
package modules

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/b-macker/naab/internal/ast"
	"github.com/b-macker/naab/internal/runtime"
)

// State is a module's lifecycle position. Each module transitions
// NotParsed → Parsed → Executing → Executed exactly once; observing
// Executing during dependency traversal means a cycle.
type State int

const (
	NotParsed State = iota
	Parsed
	Executing
	Executed
)

func (s State) String() string {
	switch s {
	case NotParsed:
		return "NotParsed"
	case Parsed:
		return "Parsed"
	case Executing:
		return "Executing"
	case Executed:
		return "Executed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Module is one loaded source file: its canonical path, parsed AST, the
// environment its declarations were executed in, and the modules it
// directly depends on. ID tags the module for diagnostic
// cross-referencing in multi-module error reports.
type Module struct {
	ID           uuid.UUID
	Path         string
	Source       string
	AST          *ast.Program
	Env          *runtime.Environment
	Dependencies []*Module
	State        State
}

// Basename is the module's default binding name when `use` has no alias:
// the file name without directory or extension.
func (m *Module) Basename() string {
	p := m.Path
	if i := strings.LastIndexAny(p, "/\\"); i >= 0 {
		p = p[i+1:]
	}
	return strings.TrimSuffix(p, ".naab")
}

// importsOf collects the module paths a parsed program depends on, in
// source order: both `use "path"` / `use path.to.module` statements and
// `import { ... } from "path"` clauses, including those wrapped in
// `export`.
func importsOf(prog *ast.Program) []string {
	var paths []string
	for _, stmt := range prog.Statements {
		if ex, ok := stmt.(*ast.ExportStmt); ok {
			stmt = ex.Decl
		}
		switch s := stmt.(type) {
		case *ast.ModuleUseStmt:
			paths = append(paths, s.Path)
		case *ast.ImportStmt:
			paths = append(paths, s.Path)
		}
	}
	return paths
}
