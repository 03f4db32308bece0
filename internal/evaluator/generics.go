package evaluator

import (
	"github.com/b-macker/naab/internal/ast"
	"github.com/b-macker/naab/internal/diag"
	"github.com/b-macker/naab/internal/lexer"
	"github.com/b-macker/naab/internal/runtime"
	"github.com/b-macker/naab/internal/types"
)

// bindTypeParams collects type-parameter constraints for a generic
// function call by unifying declared parameter types against runtime
// argument types; explicit type arguments win. Unresolved parameters
// default to Any with a warning.
// Returns nil for non-generic functions.
func (i *Interp) bindTypeParams(decl *ast.FunctionDecl, args []*runtime.Value, typeArgs []*types.Type, pos lexer.Position) (map[string]*types.Type, error) {
	if len(decl.TypeParams) == 0 {
		return nil, nil
	}
	subst := make(map[string]*types.Type, len(decl.TypeParams))

	if len(typeArgs) > 0 {
		if len(typeArgs) != len(decl.TypeParams) {
			return nil, i.fail(diag.TypeError, pos, "%s expects %d type argument(s), got %d",
				decl.Name, len(decl.TypeParams), len(typeArgs))
		}
		for idx, name := range decl.TypeParams {
			subst[name] = typeArgs[idx]
		}
		return subst, nil
	}

	for idx, param := range decl.Params {
		if idx >= len(args) {
			break
		}
		unify(param.Type, args[idx].TypeOf(), subst)
	}
	for _, name := range decl.TypeParams {
		if _, ok := subst[name]; !ok {
			i.warnf("%s: type parameter %s could not be inferred from arguments; defaulting to any", decl.Name, name)
			subst[name] = types.Any()
		}
	}
	return subst, nil
}

// unify matches a declared type against a concrete runtime type,
// recording bindings for every type parameter it meets. First binding
// wins; later conflicting observations are ignored rather than erroring,
// matching the call-site-tolerant behavior the type checker then enforces
// per-argument.
func unify(declared, concrete *types.Type, subst map[string]*types.Type) {
	if declared == nil || concrete == nil {
		return
	}
	switch declared.Kind {
	case types.KTypeParameter:
		if _, ok := subst[declared.ParamName]; !ok {
			bound := concrete
			if bound.IsNullable && !declared.IsNullable {
				cp := *bound
				cp.IsNullable = false
				bound = &cp
			}
			subst[declared.ParamName] = bound
		}
	case types.KList:
		if concrete.Kind == types.KList {
			unify(declared.Element, concrete.Element, subst)
		}
	case types.KDict:
		if concrete.Kind == types.KDict {
			unify(declared.DictValue, concrete.DictValue, subst)
		}
	case types.KStruct:
		if concrete.Kind == types.KStruct && len(declared.TypeArgs) == len(concrete.TypeArgs) {
			for idx := range declared.TypeArgs {
				unify(declared.TypeArgs[idx], concrete.TypeArgs[idx], subst)
			}
		}
	case types.KUnion:
		for _, alt := range declared.Alternatives {
			unify(alt, concrete, subst)
		}
	}
}
