package ast

import (
	"bytes"
	"strings"

	"github.com/b-macker/naab/internal/types"
)

// Compound is a `{ ... }` block of statements, the body of if/while/for/
// function/struct-method and the main block.
type Compound struct {
	base
	Statements []Statement
}

func (*Compound) statementNode() {}
func (c *Compound) String() string {
	var buf bytes.Buffer
	buf.WriteString("{\n")
	for _, s := range c.Statements {
		buf.WriteString("  " + s.String() + "\n")
	}
	buf.WriteString("}")
	return buf.String()
}

// ExprStmt wraps an expression evaluated for side effects.
type ExprStmt struct {
	base
	X Expression
}

func (*ExprStmt) statementNode() {}
func (e *ExprStmt) String() string { return e.X.String() }

// ReturnStmt is `return expr?`.
type ReturnStmt struct {
	base
	Value Expression // nil for bare `return`
}

func (*ReturnStmt) statementNode() {}
func (r *ReturnStmt) String() string {
	if r.Value == nil {
		return "return"
	}
	return "return " + r.Value.String()
}

// IfStmt is `if cond { ... } else { ... }`; Else may be nil, or hold
// another *IfStmt for an `else if` chain, or a *Compound.
type IfStmt struct {
	base
	Cond Expression
	Then *Compound
	Else Statement
}

func (*IfStmt) statementNode() {}
func (i *IfStmt) String() string {
	s := "if " + i.Cond.String() + " " + i.Then.String()
	if i.Else != nil {
		s += " else " + i.Else.String()
	}
	return s
}

// ForStmt is `for x in iter { ... }`.
type ForStmt struct {
	base
	Var  string
	Iter Expression
	Body *Compound
}

func (*ForStmt) statementNode() {}
func (f *ForStmt) String() string {
	return "for " + f.Var + " in " + f.Iter.String() + " " + f.Body.String()
}

// WhileStmt is `while cond { ... }`.
type WhileStmt struct {
	base
	Cond Expression
	Body *Compound
}

func (*WhileStmt) statementNode() {}
func (w *WhileStmt) String() string { return "while " + w.Cond.String() + " " + w.Body.String() }

// BreakStmt is `break`.
type BreakStmt struct{ base }

func (*BreakStmt) statementNode() {}
func (*BreakStmt) String() string { return "break" }

// ContinueStmt is `continue`.
type ContinueStmt struct{ base }

func (*ContinueStmt) statementNode() {}
func (*ContinueStmt) String() string { return "continue" }

// VarDecl is `let name: Type? = init?`.
type VarDecl struct {
	base
	Name string
	Type *types.Type // nil when the type must be inferred from Init
	Init Expression  // nil for an uninitialized declaration
}

func (*VarDecl) statementNode() {}
func (v *VarDecl) String() string {
	s := "let " + v.Name
	if v.Type != nil {
		s += ": " + v.Type.String()
	}
	if v.Init != nil {
		s += " = " + v.Init.String()
	}
	return s
}

// CatchClause is the `catch (name) { ... }` part of a TryStmt.
type CatchClause struct {
	Name string
	Body *Compound
}

// TryStmt is `try { ... } catch (e) { ... } finally { ... }?`.
type TryStmt struct {
	base
	Body    *Compound
	Catch   *CatchClause
	Finally *Compound // nil if absent
}

func (*TryStmt) statementNode() {}
func (t *TryStmt) String() string {
	s := "try " + t.Body.String()
	if t.Catch != nil {
		s += " catch " + t.Catch.Body.String()
	}
	if t.Finally != nil {
		s += " finally " + t.Finally.String()
	}
	return s
}

// ThrowStmt is `throw expr`.
type ThrowStmt struct {
	base
	Value Expression
}

func (*ThrowStmt) statementNode() {}
func (t *ThrowStmt) String() string { return "throw " + t.Value.String() }

// UseStmt is `use blockId as alias?`, binding a polyglot shared-runtime
// block identifier into scope.
type UseStmt struct {
	base
	BlockID string
	Alias   string // empty when absent; defaults to BlockID
}

func (*UseStmt) statementNode() {}
func (u *UseStmt) String() string {
	s := "use " + u.BlockID
	if u.Alias != "" {
		s += " as " + u.Alias
	}
	return s
}

// ModuleUseStmt is `use "path/to/module" as alias?`.
type ModuleUseStmt struct {
	base
	Path  string
	Alias string
}

func (*ModuleUseStmt) statementNode() {}
func (m *ModuleUseStmt) String() string {
	s := `use "` + m.Path + `"`
	if m.Alias != "" {
		s += " as " + m.Alias
	}
	return s
}

// ImportItem is one name in an `import {a, b as c} from "..."` clause.
type ImportItem struct {
	Name  string
	Alias string // empty if not aliased
}

// ImportStmt is `import {items} from "path"` or `import * as alias from "path"`.
type ImportStmt struct {
	base
	Path          string
	Items         []ImportItem // nil when WildcardAlias is set
	WildcardAlias string       // empty unless `import * as alias`
}

func (*ImportStmt) statementNode() {}
func (im *ImportStmt) String() string {
	if im.WildcardAlias != "" {
		return "import * as " + im.WildcardAlias + ` from "` + im.Path + `"`
	}
	parts := make([]string, len(im.Items))
	for i, it := range im.Items {
		if it.Alias != "" {
			parts[i] = it.Name + " as " + it.Alias
		} else {
			parts[i] = it.Name
		}
	}
	return "import {" + strings.Join(parts, ", ") + `} from "` + im.Path + `"`
}

// ExportStmt is `export <decl>`, marking a declaration visible to
// importers.
type ExportStmt struct {
	base
	Decl Statement
}

func (*ExportStmt) statementNode() {}
func (e *ExportStmt) String() string { return "export " + e.Decl.String() }

// FunctionDecl is `fn name<T>(params) -> RetType { body }`.
type FunctionDecl struct {
	base
	Name       string
	TypeParams []string
	Params     []Param
	ReturnType *types.Type // nil when the return type is inferred
	Body       *Compound
}

func (*FunctionDecl) statementNode() {}
func (f *FunctionDecl) String() string {
	var buf bytes.Buffer
	buf.WriteString("fn " + f.Name)
	if len(f.TypeParams) > 0 {
		buf.WriteString("<" + strings.Join(f.TypeParams, ", ") + ">")
	}
	buf.WriteString("(" + joinParams(f.Params) + ")")
	if f.ReturnType != nil {
		buf.WriteString(" -> " + f.ReturnType.String())
	}
	buf.WriteString(" " + f.Body.String())
	return buf.String()
}

// StructField is one field declaration inside a StructDecl.
type StructField struct {
	Name string
	Type *types.Type
}

// StructDecl is `struct Name<T> { field: Type,... }`.
type StructDecl struct {
	base
	Name       string
	TypeParams []string
	Fields     []StructField
	Methods    []*FunctionDecl
}

func (*StructDecl) statementNode() {}
func (s *StructDecl) String() string {
	var buf bytes.Buffer
	buf.WriteString("struct " + s.Name)
	if len(s.TypeParams) > 0 {
		buf.WriteString("<" + strings.Join(s.TypeParams, ", ") + ">")
	}
	buf.WriteString(" {\n")
	for _, f := range s.Fields {
		buf.WriteString("  " + f.Name + ": " + f.Type.String() + "\n")
	}
	for _, m := range s.Methods {
		buf.WriteString("  " + m.String() + "\n")
	}
	buf.WriteString("}")
	return buf.String()
}

// EnumDecl is `enum Name { A, B, C }`.
type EnumDecl struct {
	base
	Name    string
	Members []string
}

func (*EnumDecl) statementNode() {}
func (e *EnumDecl) String() string {
	return "enum " + e.Name + " { " + strings.Join(e.Members, ", ") + " }"
}

// MainBlock is the program's entry point, `main { ... }`. The parser
// rejects `fn main()` in favor of this bespoke form.
type MainBlock struct {
	base
	Body *Compound
}

func (*MainBlock) statementNode() {}
func (m *MainBlock) String() string { return "main " + m.Body.String() }
