// Package ast defines the syntax tree NAAb's parser produces and the
// evaluator walks,.
package ast

import (
	"bytes"
	"strings"

	"github.com/b-macker/naab/internal/lexer"
	"github.com/b-macker/naab/internal/types"
)

// Node is implemented by every AST node.
type Node interface {
	TokenLiteral() string
	String() string
	Pos() lexer.Position
}

// Expression is implemented by nodes that produce a value.
type Expression interface {
	Node
	expressionNode()
}

// Statement is implemented by nodes that appear at statement position.
type Statement interface {
	Node
	statementNode()
}

// Program is the root of every parsed source file.
type Program struct {
	Statements []Statement
}

func (p *Program) TokenLiteral() string {
	if len(p.Statements) == 0 {
		return ""
	}
	return p.Statements[0].TokenLiteral()
}

func (p *Program) Pos() lexer.Position {
	if len(p.Statements) == 0 {
		return lexer.Position{}
	}
	return p.Statements[0].Pos()
}

func (p *Program) String() string {
	var buf bytes.Buffer
	for _, s := range p.Statements {
		buf.WriteString(s.String())
		buf.WriteString("\n")
	}
	return buf.String()
}

// base carries the token every node was parsed from, giving every node a
// position and a literal for free.
type base struct {
	Token lexer.Token
}

func (b base) TokenLiteral() string  { return b.Token.Literal }
func (b base) Pos() lexer.Position   { return b.Token.Pos }

// Param is a function parameter: name, declared type, whether it is
// bound by reference (the leading '&'/C3), and an optional
// default-value expression evaluated in the callee environment when the
// caller omits the argument.
type Param struct {
	Name    string
	Type    *types.Type
	Default Expression // nil when the parameter has no default
}

func joinParams(params []Param) string {
	parts := make([]string, len(params))
	for i, p := range params {
		ref := ""
		if p.Type != nil && p.Type.IsReference {
			ref = "&"
		}
		parts[i] = ref + p.Name + ": " + p.Type.String()
		if p.Default != nil {
			parts[i] += " = " + p.Default.String()
		}
	}
	return strings.Join(parts, ", ")
}
