package ast

import (
	"bytes"
	"strings"

	"github.com/b-macker/naab/internal/types"
)

// LiteralKind discriminates the primitive literal forms.
type LiteralKind int

const (
	LitInt LiteralKind = iota
	LitFloat
	LitString
	LitBool
	LitNull
)

// Literal is an int, float, string, bool, or null constant.
type Literal struct {
	base
	Kind LiteralKind
	Text string // original lexeme, reparsed by the evaluator
}

func (*Literal) expressionNode() {}
func (l *Literal) String() string {
	if l.Kind == LitString {
		return `"` + l.Text + `"`
	}
	return l.Text
}

// Identifier is a bare name reference.
type Identifier struct {
	base
	Name string
}

func (*Identifier) expressionNode() {}
func (i *Identifier) String() string { return i.Name }

// BinaryOp enumerates binary operators.
type BinaryOp int

const (
	OpAdd BinaryOp = iota
	OpSub
	OpMul
	OpDiv
	OpMod
	OpEq
	OpNeq
	OpLt
	OpLe
	OpGt
	OpGe
	OpAnd
	OpOr
	OpPipeline
)

var binaryOpSymbols = map[BinaryOp]string{
	OpAdd: "+", OpSub: "-", OpMul: "*", OpDiv: "/", OpMod: "%",
	OpEq: "==", OpNeq: "!=", OpLt: "<", OpLe: "<=", OpGt: ">", OpGe: ">=",
	OpAnd: "&&", OpOr: "||", OpPipeline: "|>",
}

func (op BinaryOp) String() string { return binaryOpSymbols[op] }

// Binary is a two-operand expression, including the pipeline operator.
type Binary struct {
	base
	Op    BinaryOp
	Left  Expression
	Right Expression
}

func (*Binary) expressionNode() {}
func (b *Binary) String() string {
	return "(" + b.Left.String() + " " + b.Op.String() + " " + b.Right.String() + ")"
}

// UnaryOp enumerates unary operators.
type UnaryOp int

const (
	OpNeg UnaryOp = iota
	OpNot
)

// Unary is a single-operand prefix expression.
type Unary struct {
	base
	Op      UnaryOp
	Operand Expression
}

func (*Unary) expressionNode() {}
func (u *Unary) String() string {
	sym := "-"
	if u.Op == OpNot {
		sym = "!"
	}
	return "(" + sym + u.Operand.String() + ")"
}

// Call is a function/block invocation, optionally with explicit generic
// type arguments (`identity<int>(5)`).
type Call struct {
	base
	Callee   Expression
	Args     []Expression
	TypeArgs []*types.Type
}

func (*Call) expressionNode() {}
func (c *Call) String() string {
	args := make([]string, len(c.Args))
	for i, a := range c.Args {
		args[i] = a.String()
	}
	targs := ""
	if len(c.TypeArgs) > 0 {
		parts := make([]string, len(c.TypeArgs))
		for i, t := range c.TypeArgs {
			parts[i] = t.String()
		}
		targs = "<" + strings.Join(parts, ", ") + ">"
	}
	return c.Callee.String() + targs + "(" + strings.Join(args, ", ") + ")"
}

// Member is `obj.name`, resolved at evaluation time to a field access, a
// struct method, a module-qualified reference, or (for ForeignObject
// receivers) a polyglot method call.
type Member struct {
	base
	Object Expression
	Name   string
}

func (*Member) expressionNode() {}
func (m *Member) String() string { return m.Object.String() + "." + m.Name }

// ListLit is a `[a, b, c]` literal.
type ListLit struct {
	base
	Elements []Expression
}

func (*ListLit) expressionNode() {}
func (l *ListLit) String() string {
	parts := make([]string, len(l.Elements))
	for i, e := range l.Elements {
		parts[i] = e.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// DictEntry is one `key: value` pair of a DictLit.
type DictEntry struct {
	Key   Expression
	Value Expression
}

// DictLit is a `{k: v,...}` literal.
type DictLit struct {
	base
	Entries []DictEntry
}

func (*DictLit) expressionNode() {}
func (d *DictLit) String() string {
	parts := make([]string, len(d.Entries))
	for i, e := range d.Entries {
		parts[i] = e.Key.String() + ": " + e.Value.String()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// Range is `start..end` or `start..=end`.
type Range struct {
	base
	Start     Expression
	End       Expression
	Inclusive bool
}

func (*Range) expressionNode() {}
func (r *Range) String() string {
	op := ".."
	if r.Inclusive {
		op = "..="
	}
	return r.Start.String() + op + r.End.String()
}

// FieldInit is one `name: value` in a StructLiteral.
type FieldInit struct {
	Name  string
	Value Expression
}

// StructLiteral is `new Name<Targs>{field: value,...}`. requires
// the `new` keyword; plain `{ ... }` is always a DictLit.
type StructLiteral struct {
	base
	Name     string
	TypeArgs []*types.Type
	Fields   []FieldInit
}

func (*StructLiteral) expressionNode() {}
func (s *StructLiteral) String() string {
	var buf bytes.Buffer
	buf.WriteString("new ")
	buf.WriteString(s.Name)
	if len(s.TypeArgs) > 0 {
		parts := make([]string, len(s.TypeArgs))
		for i, t := range s.TypeArgs {
			parts[i] = t.String()
		}
		buf.WriteString("<" + strings.Join(parts, ", ") + ">")
	}
	buf.WriteString("{")
	parts := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		parts[i] = f.Name + ": " + f.Value.String()
	}
	buf.WriteString(strings.Join(parts, ", "))
	buf.WriteString("}")
	return buf.String()
}

// Assign is `target = value`, where target is an Identifier, Index, or
// Member expression. Assignment is an expression, not a statement, so
// `a = b = 1` parses and chains right-associatively.
type Assign struct {
	base
	Target Expression
	Value  Expression
}

func (*Assign) expressionNode() {}
func (a *Assign) String() string { return a.Target.String() + " = " + a.Value.String() }

// Index is `obj[key]`, used for both list indexing and dict lookup — the
// evaluator disambiguates by the runtime type of Object.
type Index struct {
	base
	Object Expression
	Key    Expression
}

func (*Index) expressionNode() {}
func (ix *Index) String() string { return ix.Object.String() + "[" + ix.Key.String() + "]" }

// InlineCode is a verbatim polyglot block, `<<lang[bound,vars]... >>`.
// The Lexer captures Code without tokenizing it; the parser wraps
// it into this single expression node.
type InlineCode struct {
	base
	Language  string
	Code      string
	BoundVars []string
}

func (*InlineCode) expressionNode() {}
func (i *InlineCode) String() string {
	return "<<" + i.Language + "[" + strings.Join(i.BoundVars, ",") + "]" + i.Code + ">>"
}
