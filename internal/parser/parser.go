// Package parser turns a token stream from internal/lexer into the AST
// defined in internal/ast, using recursive descent for statements and a
// Pratt (precedence-climbing) scheme for expressions,.
package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/b-macker/naab/internal/ast"
	"github.com/b-macker/naab/internal/lexer"
	"github.com/b-macker/naab/internal/types"
)

// maxExprDepth guards against stack overflow on pathologically nested
// expressions: the parser errors past 1000 levels rather than crash.
const maxExprDepth = 1000

// ParseError is a single recoverable parse failure with its source
// position, collected into Parser.errors so parsing can continue and
// report more than one mistake per run.
type ParseError struct {
	Message string
	Pos     lexer.Position
}

func (e *ParseError) Error() string { return fmt.Sprintf("%s: %s", e.Pos, e.Message) }

// precedence levels, lowest to highest.
const (
	_ int = iota
	precLowest
	precAssign
	precPipeline
	precOr
	precAnd
	precEquality
	precRelational
	precRange
	precAdditive
	precMultiplicative
	precUnary
	precPostfix
)

var precedences = map[lexer.TokenType]int{
	lexer.ASSIGN:   precAssign,
	lexer.PIPELINE: precPipeline,
	lexer.OROR:     precOr,
	lexer.ANDAND:   precAnd,
	lexer.EQ:       precEquality,
	lexer.NEQ:      precEquality,
	lexer.LT:       precRelational,
	lexer.LE:       precRelational,
	lexer.GT:       precRelational,
	lexer.GE:       precRelational,
	lexer.RANGE:    precRange,
	lexer.RANGE_EQ: precRange,
	lexer.PLUS:     precAdditive,
	lexer.MINUS:    precAdditive,
	lexer.STAR:     precMultiplicative,
	lexer.SLASH:    precMultiplicative,
	lexer.PERCENT:  precMultiplicative,
	lexer.LPAREN:   precPostfix,
	lexer.DOT:      precPostfix,
	lexer.LBRACKET: precPostfix,
}

type (
	prefixParseFn func() ast.Expression
	infixParseFn  func(ast.Expression) ast.Expression
)

// Parser is a single-pass recursive-descent parser over one token stream.
type Parser struct {
	l *lexer.Lexer

	cur  lexer.Token
	peek lexer.Token

	errors []*ParseError
	depth  int

	prefixFns map[lexer.TokenType]prefixParseFn
	infixFns  map[lexer.TokenType]infixParseFn
}

// New constructs a Parser reading from l and primes the two-token
// lookahead window.
func New(l *lexer.Lexer) *Parser {
	p := &Parser{l: l}
	p.prefixFns = map[lexer.TokenType]prefixParseFn{
		lexer.IDENT:         p.parseIdentifier,
		lexer.INT:           p.parseIntLiteral,
		lexer.FLOAT:         p.parseFloatLiteral,
		lexer.STRING:        p.parseStringLiteral,
		lexer.TRUE:          p.parseBoolLiteral,
		lexer.FALSE:         p.parseBoolLiteral,
		lexer.NULL:          p.parseNullLiteral,
		lexer.MINUS:         p.parseUnary,
		lexer.BANG:          p.parseUnary,
		lexer.LPAREN:        p.parseGroupedExpr,
		lexer.LBRACKET:      p.parseListLiteral,
		lexer.LBRACE:        p.parseDictLiteral,
		lexer.NEW:           p.parseStructLiteral,
		lexer.POLYGLOT_OPEN: p.parseInlineCode,
	}
	p.infixFns = map[lexer.TokenType]infixParseFn{
		lexer.ASSIGN: p.parseAssign,
		lexer.PLUS:   p.parseBinary, lexer.MINUS: p.parseBinary,
		lexer.STAR: p.parseBinary, lexer.SLASH: p.parseBinary, lexer.PERCENT: p.parseBinary,
		lexer.EQ: p.parseBinary, lexer.NEQ: p.parseBinary,
		lexer.LT: p.parseBinary, lexer.LE: p.parseBinary, lexer.GT: p.parseBinary, lexer.GE: p.parseBinary,
		lexer.ANDAND: p.parseBinary, lexer.OROR: p.parseBinary,
		lexer.PIPELINE: p.parseBinary,
		lexer.RANGE:    p.parseRange, lexer.RANGE_EQ: p.parseRange,
		lexer.LPAREN:   p.parseCall,
		lexer.DOT:      p.parseMember,
		lexer.LBRACKET: p.parseIndex,
	}
	p.next()
	p.next()
	return p
}

func (p *Parser) Errors() []*ParseError { return p.errors }

func (p *Parser) errorf(pos lexer.Position, format string, args ...interface{}) {
	p.errors = append(p.errors, &ParseError{Message: fmt.Sprintf(format, args...), Pos: pos})
}

func (p *Parser) next() {
	p.cur = p.peek
	p.peek = p.l.NextToken()
}

func (p *Parser) curIs(t lexer.TokenType) bool  { return p.cur.Type == t }
func (p *Parser) peekIs(t lexer.TokenType) bool { return p.peek.Type == t }

func (p *Parser) expect(t lexer.TokenType) bool {
	if p.curIs(t) {
		p.next()
		return true
	}
	p.errorf(p.cur.Pos, "expected %s, got %s (%q)", t, p.cur.Type, p.cur.Literal)
	return false
}

// curPrecedence reports the binding power of the token at cur. Prefix
// parse functions consume past their expression, so the pending infix
// operator always sits at cur, not peek.
func (p *Parser) curPrecedence() int {
	if pr, ok := precedences[p.cur.Type]; ok {
		return pr
	}
	return precLowest
}

// ParseProgram parses an entire source file into a Program node. On
// recoverable errors it synchronizes to the next top-level keyword and
// keeps going, so a single file can report multiple mistakes.
func (p *Parser) ParseProgram() *ast.Program {
	prog := &ast.Program{}
	for !p.curIs(lexer.EOF) {
		stmt := p.parseTopLevel()
		if stmt != nil {
			prog.Statements = append(prog.Statements, stmt)
		} else {
			p.synchronize()
		}
	}
	return prog
}

var topLevelKeywords = map[lexer.TokenType]bool{
	lexer.USE: true, lexer.IMPORT: true, lexer.EXPORT: true,
	lexer.FN: true, lexer.STRUCT: true, lexer.ENUM: true, lexer.MAIN: true,
}

func (p *Parser) synchronize() {
	p.next()
	for !p.curIs(lexer.EOF) {
		if topLevelKeywords[p.cur.Type] {
			return
		}
		p.next()
	}
}

func (p *Parser) parseTopLevel() ast.Statement {
	switch p.cur.Type {
	case lexer.USE:
		return p.parseUseOrModuleUse()
	case lexer.IMPORT:
		return p.parseImport()
	case lexer.EXPORT:
		return p.parseExport()
	case lexer.FN:
		return p.parseFunctionDecl()
	case lexer.STRUCT:
		return p.parseStructDecl()
	case lexer.ENUM:
		return p.parseEnumDecl()
	case lexer.MAIN:
		return p.parseMainBlock()
	default:
		p.errorf(p.cur.Pos, "unexpected token %s at top level", p.cur.Type)
		return nil
	}
}

// parseStatement parses one statement inside a Compound body.
func (p *Parser) parseStatement() ast.Statement {
	switch p.cur.Type {
	case lexer.LET:
		return p.parseVarDecl()
	case lexer.IF:
		return p.parseIf()
	case lexer.FOR:
		return p.parseFor()
	case lexer.WHILE:
		return p.parseWhile()
	case lexer.BREAK:
		p.next()
		return &ast.BreakStmt{}
	case lexer.CONTINUE:
		p.next()
		return &ast.ContinueStmt{}
	case lexer.RETURN:
		return p.parseReturn()
	case lexer.TRY:
		return p.parseTry()
	case lexer.THROW:
		return p.parseThrow()
	case lexer.USE:
		return p.parseUseOrModuleUse()
	case lexer.FN:
		return p.parseFunctionDecl()
	case lexer.STRUCT:
		return p.parseStructDecl()
	default:
		expr := p.parseExpression(precLowest)
		if expr == nil {
			return nil
		}
		return &ast.ExprStmt{X: expr}
	}
}

func (p *Parser) parseCompound() *ast.Compound {
	if !p.expect(lexer.LBRACE) {
		return &ast.Compound{}
	}
	c := &ast.Compound{}
	for !p.curIs(lexer.RBRACE) && !p.curIs(lexer.EOF) {
		if p.curIs(lexer.SEMICOLON) {
			p.next() // optional statement separator
			continue
		}
		stmt := p.parseStatement()
		if stmt != nil {
			c.Statements = append(c.Statements, stmt)
		} else {
			p.next()
		}
	}
	p.expect(lexer.RBRACE)
	return c
}

func (p *Parser) parseVarDecl() ast.Statement {
	p.next() // consume 'let'
	if !p.curIs(lexer.IDENT) {
		p.errorf(p.cur.Pos, "expected identifier after 'let'")
		return nil
	}
	name := p.cur.Literal
	p.next()
	var ty *types.Type
	if p.curIs(lexer.COLON) {
		p.next()
		ty = p.parseType()
	}
	var init ast.Expression
	if p.curIs(lexer.ASSIGN) {
		p.next()
		init = p.parseExpression(precLowest)
	}
	return &ast.VarDecl{Name: name, Type: ty, Init: init}
}

func (p *Parser) parseIf() ast.Statement {
	p.next() // 'if'
	cond := p.parseExpression(precLowest)
	then := p.parseCompound()
	stmt := &ast.IfStmt{Cond: cond, Then: then}
	if p.curIs(lexer.ELSE) {
		p.next()
		if p.curIs(lexer.IF) {
			stmt.Else = p.parseIf()
		} else {
			stmt.Else = p.parseCompound()
		}
	}
	return stmt
}

func (p *Parser) parseFor() ast.Statement {
	p.next() // 'for'
	if !p.curIs(lexer.IDENT) {
		p.errorf(p.cur.Pos, "expected loop variable name")
		return nil
	}
	v := p.cur.Literal
	p.next()
	if !p.expect(lexer.IN) {
		return nil
	}
	iter := p.parseExpression(precLowest)
	body := p.parseCompound()
	return &ast.ForStmt{Var: v, Iter: iter, Body: body}
}

func (p *Parser) parseWhile() ast.Statement {
	p.next()
	cond := p.parseExpression(precLowest)
	body := p.parseCompound()
	return &ast.WhileStmt{Cond: cond, Body: body}
}

func (p *Parser) parseReturn() ast.Statement {
	p.next()
	if p.curIs(lexer.RBRACE) || p.curIs(lexer.EOF) {
		return &ast.ReturnStmt{}
	}
	val := p.parseExpression(precLowest)
	return &ast.ReturnStmt{Value: val}
}

func (p *Parser) parseTry() ast.Statement {
	p.next()
	body := p.parseCompound()
	stmt := &ast.TryStmt{Body: body}
	if p.curIs(lexer.CATCH) {
		p.next()
		p.expect(lexer.LPAREN)
		name := ""
		if p.curIs(lexer.IDENT) {
			name = p.cur.Literal
			p.next()
		}
		p.expect(lexer.RPAREN)
		stmt.Catch = &ast.CatchClause{Name: name, Body: p.parseCompound()}
	}
	if p.curIs(lexer.FINALLY) {
		p.next()
		stmt.Finally = p.parseCompound()
	}
	if stmt.Catch == nil && stmt.Finally == nil {
		p.errorf(p.cur.Pos, "try block requires a catch or finally clause")
	}
	return stmt
}

func (p *Parser) parseThrow() ast.Statement {
	p.next()
	return &ast.ThrowStmt{Value: p.parseExpression(precLowest)}
}

// parseUseOrModuleUse disambiguates `use blockId [as alias]` (polyglot
// shared-runtime binding) from `use "path" [as alias]` (module import) by
// looking at whether the operand is a string literal.
func (p *Parser) parseUseOrModuleUse() ast.Statement {
	p.next() // 'use'
	if p.curIs(lexer.STRING) {
		path := p.cur.Literal
		p.next()
		alias := ""
		if p.curIs(lexer.AS) {
			p.next()
			alias = p.cur.Literal
			p.next()
		}
		return &ast.ModuleUseStmt{Path: path, Alias: alias}
	}
	if !p.curIs(lexer.IDENT) {
		p.errorf(p.cur.Pos, "expected block id or module path after 'use'")
		return nil
	}
	segments := []string{p.cur.Literal}
	p.next()
	for p.curIs(lexer.DOT) {
		p.next()
		if !p.curIs(lexer.IDENT) {
			p.errorf(p.cur.Pos, "expected path segment after '.' in use statement")
			break
		}
		segments = append(segments, p.cur.Literal)
		p.next()
	}
	alias := ""
	if p.curIs(lexer.AS) {
		p.next()
		alias = p.cur.Literal
		p.next()
	}
	// `use path.to.module` is the dotted module-import form; a
	// single bare id stays ambiguous between a stdlib module, a file
	// module, and a registry block, resolved by the evaluator.
	if len(segments) > 1 {
		return &ast.ModuleUseStmt{Path: strings.Join(segments, "/"), Alias: alias}
	}
	return &ast.UseStmt{BlockID: segments[0], Alias: alias}
}

func (p *Parser) parseImport() ast.Statement {
	p.next() // 'import'
	stmt := &ast.ImportStmt{}
	if p.curIs(lexer.STAR) {
		p.next()
		p.expect(lexer.AS)
		stmt.WildcardAlias = p.cur.Literal
		p.next()
	} else {
		p.expect(lexer.LBRACE)
		for !p.curIs(lexer.RBRACE) && !p.curIs(lexer.EOF) {
			item := ast.ImportItem{Name: p.cur.Literal}
			p.next()
			if p.curIs(lexer.AS) {
				p.next()
				item.Alias = p.cur.Literal
				p.next()
			}
			stmt.Items = append(stmt.Items, item)
			if p.curIs(lexer.COMMA) {
				p.next()
			}
		}
		p.expect(lexer.RBRACE)
	}
	p.expect(lexer.FROM)
	if p.curIs(lexer.STRING) {
		stmt.Path = p.cur.Literal
		p.next()
	}
	return stmt
}

func (p *Parser) parseExport() ast.Statement {
	p.next() // 'export'
	if p.curIs(lexer.LET) {
		decl := p.parseVarDecl()
		if decl == nil {
			return nil
		}
		return &ast.ExportStmt{Decl: decl}
	}
	decl := p.parseTopLevel()
	if decl == nil {
		return nil
	}
	return &ast.ExportStmt{Decl: decl}
}

func (p *Parser) parseMainBlock() ast.Statement {
	p.next() // 'main'
	if p.curIs(lexer.LPAREN) {
		p.errorf(p.cur.Pos, "main is a block, not a function: use 'main { ... }', not 'main()'")
		for !p.curIs(lexer.LBRACE) && !p.curIs(lexer.EOF) {
			p.next()
		}
	}
	return &ast.MainBlock{Body: p.parseCompound()}
}

func (p *Parser) parseFunctionDecl() ast.Statement {
	p.next() // 'fn'
	if p.curIs(lexer.MAIN) {
		p.errorf(p.cur.Pos, "'fn main()' is not valid: the entry point is a bare 'main { ... }' block")
	}
	name := p.cur.Literal
	p.next()
	fn := &ast.FunctionDecl{Name: name}
	if p.curIs(lexer.LT) {
		fn.TypeParams = p.parseTypeParamList()
	}
	p.expect(lexer.LPAREN)
	fn.Params = p.parseParamList()
	p.expect(lexer.RPAREN)
	if p.curIs(lexer.MINUS) && p.peekIs(lexer.GT) {
		p.next()
		p.next()
		fn.ReturnType = p.parseType()
	}
	fn.Body = p.parseCompound()
	return fn
}

func (p *Parser) parseTypeParamList() []string {
	var names []string
	p.next() // '<'
	for !p.curIs(lexer.GT) && !p.curIs(lexer.EOF) {
		names = append(names, p.cur.Literal)
		p.next()
		if p.curIs(lexer.COMMA) {
			p.next()
		}
	}
	p.expect(lexer.GT)
	return names
}

func (p *Parser) parseParamList() []ast.Param {
	var params []ast.Param
	for !p.curIs(lexer.RPAREN) && !p.curIs(lexer.EOF) {
		ref := false
		if p.curIs(lexer.AMP) {
			ref = true
			p.next()
		}
		name := p.cur.Literal
		p.next()
		var ty *types.Type = types.Any()
		if p.curIs(lexer.COLON) {
			p.next()
			ty = p.parseType()
		}
		if ref {
			ty = ty.Reference()
		}
		var def ast.Expression
		if p.curIs(lexer.ASSIGN) {
			p.next()
			def = p.parseExpression(precLowest)
		}
		params = append(params, ast.Param{Name: name, Type: ty, Default: def})
		if p.curIs(lexer.COMMA) {
			p.next()
		}
	}
	return params
}

func (p *Parser) parseStructDecl() ast.Statement {
	p.next() // 'struct'
	name := p.cur.Literal
	p.next()
	decl := &ast.StructDecl{Name: name}
	if p.curIs(lexer.LT) {
		decl.TypeParams = p.parseTypeParamList()
	}
	p.expect(lexer.LBRACE)
	for !p.curIs(lexer.RBRACE) && !p.curIs(lexer.EOF) {
		if p.curIs(lexer.FN) {
			m := p.parseFunctionDecl().(*ast.FunctionDecl)
			decl.Methods = append(decl.Methods, m)
			continue
		}
		fname := p.cur.Literal
		p.next()
		p.expect(lexer.COLON)
		ftype := p.parseType()
		decl.Fields = append(decl.Fields, ast.StructField{Name: fname, Type: ftype})
		if p.curIs(lexer.COMMA) {
			p.next()
		}
	}
	p.expect(lexer.RBRACE)
	return decl
}

func (p *Parser) parseEnumDecl() ast.Statement {
	p.next() // 'enum'
	name := p.cur.Literal
	p.next()
	decl := &ast.EnumDecl{Name: name}
	p.expect(lexer.LBRACE)
	for !p.curIs(lexer.RBRACE) && !p.curIs(lexer.EOF) {
		decl.Members = append(decl.Members, p.cur.Literal)
		p.next()
		if p.curIs(lexer.COMMA) {
			p.next()
		}
	}
	p.expect(lexer.RBRACE)
	return decl
}

// parseType parses a type annotation: primitives, [T], {K: V}, Name<Args>,
// unions joined by '|', and a trailing '?' for nullability.
func (p *Parser) parseType() *types.Type {
	t := p.parseUnionType()
	if p.curIs(lexer.QUESTION) {
		p.next()
		t = t.Nullable()
	}
	return t
}

func (p *Parser) parseUnionType() *types.Type {
	first := p.parseAtomType()
	if !p.curIs(lexer.PIPE) {
		return first
	}
	alts := []*types.Type{first}
	for p.curIs(lexer.PIPE) {
		p.next()
		alts = append(alts, p.parseAtomType())
	}
	return types.Union(alts)
}

func (p *Parser) parseAtomType() *types.Type {
	switch p.cur.Type {
	case lexer.IDENT:
		name := p.cur.Literal
		p.next()
		switch name {
		case "int":
			return types.Int()
		case "float":
			return types.Float()
		case "bool":
			return types.Bool()
		case "string":
			return types.String()
		case "any":
			return types.Any()
		case "void":
			return types.Void()
		}
		var targs []*types.Type
		if p.curIs(lexer.LT) {
			p.next()
			for !p.curIs(lexer.GT) && !p.curIs(lexer.EOF) {
				targs = append(targs, p.parseType())
				if p.curIs(lexer.COMMA) {
					p.next()
				}
			}
			p.expect(lexer.GT)
		}
		if len(targs) == 0 {
			return types.TypeParameter(name)
		}
		return types.Struct(name, targs, "")
	case lexer.LBRACKET:
		p.next()
		elem := p.parseType()
		p.expect(lexer.RBRACKET)
		return types.List(elem)
	case lexer.LBRACE:
		p.next()
		key := p.parseType()
		p.expect(lexer.COLON)
		val := p.parseType()
		p.expect(lexer.RBRACE)
		return types.Dict(key, val)
	default:
		p.errorf(p.cur.Pos, "expected a type, got %s", p.cur.Type)
		return types.Any()
	}
}

// --- expressions ---

func (p *Parser) parseExpression(precedence int) ast.Expression {
	p.depth++
	defer func() { p.depth-- }()
	if p.depth > maxExprDepth {
		p.errorf(p.cur.Pos, "expression nesting exceeds %d levels", maxExprDepth)
		return nil
	}
	prefix := p.prefixFns[p.cur.Type]
	if prefix == nil {
		p.errorf(p.cur.Pos, "unexpected token %s in expression", p.cur.Type)
		return nil
	}
	left := prefix()
	for left != nil && !p.curIs(lexer.SEMICOLON) && precedence < p.curPrecedence() {
		infix := p.infixFns[p.cur.Type]
		if infix == nil {
			return left
		}
		left = infix(left)
	}
	return left
}

func (p *Parser) parseIdentifier() ast.Expression {
	id := &ast.Identifier{Name: p.cur.Literal}
	p.next()
	return id
}

func (p *Parser) parseIntLiteral() ast.Expression {
	lit := &ast.Literal{Kind: ast.LitInt, Text: p.cur.Literal}
	if _, err := strconv.ParseInt(p.cur.Literal, 10, 64); err != nil {
		p.errorf(p.cur.Pos, "invalid integer literal %q", p.cur.Literal)
	}
	p.next()
	return lit
}

func (p *Parser) parseFloatLiteral() ast.Expression {
	lit := &ast.Literal{Kind: ast.LitFloat, Text: p.cur.Literal}
	p.next()
	return lit
}

func (p *Parser) parseStringLiteral() ast.Expression {
	lit := &ast.Literal{Kind: ast.LitString, Text: p.cur.Literal}
	p.next()
	return lit
}

func (p *Parser) parseBoolLiteral() ast.Expression {
	lit := &ast.Literal{Kind: ast.LitBool, Text: p.cur.Literal}
	p.next()
	return lit
}

func (p *Parser) parseNullLiteral() ast.Expression {
	lit := &ast.Literal{Kind: ast.LitNull, Text: "null"}
	p.next()
	return lit
}

func (p *Parser) parseUnary() ast.Expression {
	op := ast.OpNeg
	if p.curIs(lexer.BANG) {
		op = ast.OpNot
	}
	p.next()
	operand := p.parseExpression(precUnary)
	return &ast.Unary{Op: op, Operand: operand}
}

func (p *Parser) parseGroupedExpr() ast.Expression {
	p.next() // '('
	expr := p.parseExpression(precLowest)
	p.expect(lexer.RPAREN)
	return expr
}

func (p *Parser) parseListLiteral() ast.Expression {
	p.next() // '['
	lit := &ast.ListLit{}
	for !p.curIs(lexer.RBRACKET) && !p.curIs(lexer.EOF) {
		lit.Elements = append(lit.Elements, p.parseExpression(precLowest))
		if p.curIs(lexer.COMMA) {
			p.next()
		}
	}
	p.expect(lexer.RBRACKET)
	return lit
}

// parseDictLiteral parses a `{key: value,...}` expression. Bare `{}`
// (and any `{` not preceded by `new Name`) is always a dict, never a
// struct literal.
func (p *Parser) parseDictLiteral() ast.Expression {
	p.next() // '{'
	lit := &ast.DictLit{}
	for !p.curIs(lexer.RBRACE) && !p.curIs(lexer.EOF) {
		keyPos := p.cur.Pos
		key := p.parseExpression(precLowest)
		if id, ok := key.(*ast.Identifier); ok {
			p.errorf(keyPos, "dict key %s must be a quoted string; a struct literal is written `new Name { field: value }`", id.Name)
		}
		p.expect(lexer.COLON)
		val := p.parseExpression(precLowest)
		lit.Entries = append(lit.Entries, ast.DictEntry{Key: key, Value: val})
		if p.curIs(lexer.COMMA) {
			p.next()
		}
	}
	p.expect(lexer.RBRACE)
	return lit
}

// parseStructLiteral handles `new Name<Targs>{field: value,...}`; the
// leading `new` keyword is mandatory, distinguishing it from a dict.
func (p *Parser) parseStructLiteral() ast.Expression {
	p.next() // 'new'
	if !p.curIs(lexer.IDENT) {
		p.errorf(p.cur.Pos, "expected struct name after 'new'")
		return nil
	}
	name := p.cur.Literal
	p.next()
	lit := &ast.StructLiteral{Name: name}
	if p.curIs(lexer.LT) {
		p.next()
		for !p.curIs(lexer.GT) && !p.curIs(lexer.EOF) {
			lit.TypeArgs = append(lit.TypeArgs, p.parseType())
			if p.curIs(lexer.COMMA) {
				p.next()
			}
		}
		p.expect(lexer.GT)
	}
	p.expect(lexer.LBRACE)
	for !p.curIs(lexer.RBRACE) && !p.curIs(lexer.EOF) {
		fname := p.cur.Literal
		p.next()
		p.expect(lexer.COLON)
		val := p.parseExpression(precLowest)
		lit.Fields = append(lit.Fields, ast.FieldInit{Name: fname, Value: val})
		if p.curIs(lexer.COMMA) {
			p.next()
		}
	}
	p.expect(lexer.RBRACE)
	return lit
}

func (p *Parser) parseInlineCode() ast.Expression {
	tok := p.cur
	ic := &ast.InlineCode{Language: tok.Language, BoundVars: tok.BoundVars, Code: tok.Literal}
	p.next()
	return ic
}

var binaryOpByToken = map[lexer.TokenType]ast.BinaryOp{
	lexer.PLUS: ast.OpAdd, lexer.MINUS: ast.OpSub, lexer.STAR: ast.OpMul,
	lexer.SLASH: ast.OpDiv, lexer.PERCENT: ast.OpMod,
	lexer.EQ: ast.OpEq, lexer.NEQ: ast.OpNeq,
	lexer.LT: ast.OpLt, lexer.LE: ast.OpLe, lexer.GT: ast.OpGt, lexer.GE: ast.OpGe,
	lexer.ANDAND: ast.OpAnd, lexer.OROR: ast.OpOr, lexer.PIPELINE: ast.OpPipeline,
}

func (p *Parser) parseBinary(left ast.Expression) ast.Expression {
	opTok := p.cur.Type
	prec := precedences[opTok]
	p.next()
	right := p.parseExpression(prec)
	return &ast.Binary{Op: binaryOpByToken[opTok], Left: left, Right: right}
}

// parseAssign parses `target = value` as a right-associative infix
// operator (so `a = b = 1` assigns 1 to b then b's value to a). Only
// Identifier, Index, and Member expressions are valid assignment targets.
func (p *Parser) parseAssign(left ast.Expression) ast.Expression {
	switch left.(type) {
	case *ast.Identifier, *ast.Index, *ast.Member:
	default:
		p.errorf(p.cur.Pos, "invalid assignment target %s", left.String())
	}
	p.next() // '='
	value := p.parseExpression(precAssign - 1)
	return &ast.Assign{Target: left, Value: value}
}

func (p *Parser) parseRange(left ast.Expression) ast.Expression {
	inclusive := p.curIs(lexer.RANGE_EQ)
	p.next()
	right := p.parseExpression(precRange)
	return &ast.Range{Start: left, End: right, Inclusive: inclusive}
}

func (p *Parser) parseCall(callee ast.Expression) ast.Expression {
	p.next() // '('
	call := &ast.Call{Callee: callee}
	for !p.curIs(lexer.RPAREN) && !p.curIs(lexer.EOF) {
		call.Args = append(call.Args, p.parseExpression(precLowest))
		if p.curIs(lexer.COMMA) {
			p.next()
		}
	}
	p.expect(lexer.RPAREN)
	return call
}

func (p *Parser) parseMember(obj ast.Expression) ast.Expression {
	p.next() // '.'
	name := p.cur.Literal
	p.next()
	return &ast.Member{Object: obj, Name: name}
}

func (p *Parser) parseIndex(obj ast.Expression) ast.Expression {
	p.next() // '['
	key := p.parseExpression(precLowest)
	p.expect(lexer.RBRACKET)
	return &ast.Index{Object: obj, Key: key}
}
