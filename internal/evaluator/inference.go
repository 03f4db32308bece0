package evaluator

import (
	"github.com/b-macker/naab/internal/ast"
	"github.com/b-macker/naab/internal/runtime"
	"github.com/b-macker/naab/internal/types"
)

// inferReturnType computes a function's return type when none is
// declared: Void with no returns, the single type when all returns
// agree, a Union of the distinct types otherwise.
//
// Eagerly evaluating return expressions during inference could observe
// side effects, so this is a structural (non-executing) pass;
// expressions whose type cannot be determined statically contribute
// Any.
func (i *Interp) inferReturnType(fv *runtime.FunctionValue) *types.Type {
	if cached, ok := i.inferCache[fv.Decl]; ok {
		return cached
	}
	var returnTypes []*types.Type
	sawReturn := false
	walkReturns(fv.Decl.Body, func(r *ast.ReturnStmt) {
		sawReturn = true
		if r.Value == nil {
			return
		}
		t := i.inferExprType(fv, r.Value)
		for _, existing := range returnTypes {
			if existing.Equal(t) {
				return
			}
		}
		returnTypes = append(returnTypes, t)
	})

	var result *types.Type
	switch {
	case !sawReturn || len(returnTypes) == 0:
		result = types.Void()
	case len(returnTypes) == 1:
		result = returnTypes[0]
	default:
		result = types.Union(returnTypes)
	}
	i.inferCache[fv.Decl] = result
	return result
}

// hasExplicitReturn reports whether any return statement in the body
// carries a value, distinguishing "fell off the end" null results from a
// deliberate `return null`.
func (i *Interp) hasExplicitReturn(body *ast.Compound) bool {
	found := false
	walkReturns(body, func(r *ast.ReturnStmt) {
		if r.Value != nil {
			found = true
		}
	})
	return found
}

// walkReturns visits every ReturnStmt in a statement tree without
// descending into nested function declarations (their returns belong to
// them).
func walkReturns(stmt ast.Statement, visit func(*ast.ReturnStmt)) {
	switch s := stmt.(type) {
	case *ast.Compound:
		for _, child := range s.Statements {
			walkReturns(child, visit)
		}
	case *ast.ReturnStmt:
		visit(s)
	case *ast.IfStmt:
		walkReturns(s.Then, visit)
		if s.Else != nil {
			walkReturns(s.Else, visit)
		}
	case *ast.WhileStmt:
		walkReturns(s.Body, visit)
	case *ast.ForStmt:
		walkReturns(s.Body, visit)
	case *ast.TryStmt:
		walkReturns(s.Body, visit)
		if s.Catch != nil {
			walkReturns(s.Catch.Body, visit)
		}
		if s.Finally != nil {
			walkReturns(s.Finally, visit)
		}
	}
}

// inferExprType determines an expression's type without executing it.
// Literals, container literals, arithmetic, comparisons, and calls to
// functions with explicit return types resolve precisely; everything else
// is Any.
func (i *Interp) inferExprType(fv *runtime.FunctionValue, expr ast.Expression) *types.Type {
	switch e := expr.(type) {
	case *ast.Literal:
		switch e.Kind {
		case ast.LitInt:
			return types.Int()
		case ast.LitFloat:
			return types.Float()
		case ast.LitString:
			return types.String()
		case ast.LitBool:
			return types.Bool()
		default:
			return types.Any().Nullable()
		}
	case *ast.ListLit:
		elem := types.Any()
		if len(e.Elements) > 0 {
			elem = i.inferExprType(fv, e.Elements[0])
		}
		return types.List(elem)
	case *ast.DictLit:
		val := types.Any()
		if len(e.Entries) > 0 {
			val = i.inferExprType(fv, e.Entries[0].Value)
		}
		return types.Dict(types.String(), val)
	case *ast.Range:
		return types.List(types.Int())
	case *ast.StructLiteral:
		return types.Struct(e.Name, e.TypeArgs, "")
	case *ast.Unary:
		if e.Op == ast.OpNot {
			return types.Bool()
		}
		return i.inferExprType(fv, e.Operand)
	case *ast.Binary:
		switch e.Op {
		case ast.OpEq, ast.OpNeq, ast.OpLt, ast.OpLe, ast.OpGt, ast.OpGe, ast.OpAnd, ast.OpOr:
			return types.Bool()
		case ast.OpDiv:
			return types.Float()
		case ast.OpAdd, ast.OpSub, ast.OpMul, ast.OpMod:
			lt := i.inferExprType(fv, e.Left)
			rt := i.inferExprType(fv, e.Right)
			if lt.Kind == types.KString || rt.Kind == types.KString {
				return types.String()
			}
			if lt.Kind == types.KFloat || rt.Kind == types.KFloat {
				return types.Float()
			}
			if lt.Kind == types.KInt && rt.Kind == types.KInt {
				return types.Int()
			}
			return types.Any()
		default:
			return types.Any()
		}
	case *ast.Call:
		// A call to a lexically visible function with an explicit return
		// type resolves to that type.
		if id, ok := e.Callee.(*ast.Identifier); ok {
			if v, found := fv.Env.Get(id.Name); found && v.Kind == runtime.KFunction {
				if v.Fn.Decl.ReturnType != nil {
					return v.Fn.Decl.ReturnType
				}
			}
		}
		return types.Any()
	case *ast.Identifier:
		// Parameters carry declared types usable without execution.
		for _, p := range fv.Decl.Params {
			if p.Name == e.Name && p.Type != nil {
				return p.Type
			}
		}
		return types.Any()
	default:
		return types.Any()
	}
}
