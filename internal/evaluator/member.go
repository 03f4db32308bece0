package evaluator

import (
	"github.com/b-macker/naab/internal/ast"
	"github.com/b-macker/naab/internal/diag"
	"github.com/b-macker/naab/internal/runtime"
)

// evalMember tries the member-expression resolutions in sequence,
// stopping at the first match: enum variant, struct field, block
// accessor, foreign-object member, dict value, stdlib-module marker, and
// user-module symbol.
func (i *Interp) evalMember(env *runtime.Environment, e *ast.Member) (*runtime.Value, error) {
	// (i) Enum.Variant, checked before evaluation so an enum name that
	// shadows nothing still resolves.
	if id, ok := e.Object.(*ast.Identifier); ok {
		if members, isEnum := i.enums[id.Name]; isEnum {
			if _, bound := env.Get(id.Name); !bound || isEnumBinding(env, id.Name) {
				return i.enumVariant(e, id.Name, members)
			}
		}
	}

	obj, err := i.evalExpr(env, e.Object)
	if err != nil {
		return nil, err
	}

	switch obj.Kind {
	case runtime.KStruct:
		// (ii) struct field access.
		if v, ok := obj.Struct.Fields.Get(e.Name); ok {
			return v, nil
		}
		// Methods come after fields; a method reference binds its
		// receiver as `self` in the method's environment.
		if bound, ok := i.boundMethod(obj, e.Name); ok {
			return bound, nil
		}
		return nil, i.unknownField(e.Pos(), obj.Struct.TypeName, e.Name, obj.Struct.Fields.Keys())
	case runtime.KBlock:
		// (iii) block member: a new accessor with an extended
		// member_path, sharing the original's executor handle.
		return runtime.Block(obj.Block.WithMember(e.Name)), nil
	case runtime.KForeignObject:
		// (iv) foreign-object member, resolved lazily: the accessor value
		// is a block-style path that a later Call routes through the
		// owning executor.
		bv := &runtime.BlockValue{
			Language:   obj.Foreign.Language,
			Handle:     obj.Foreign.Handle,
			MemberPath: []string{e.Name},
		}
		return runtime.Block(bv), nil
	case runtime.KDict:
		// (v) dict member: the value under the string key.
		if v, ok := obj.Dict.Get(e.Name); ok {
			return v, nil
		}
		return nil, i.fail(diag.RuntimeError, e.Pos(), "dict has no key %q", e.Name)
	case runtime.KString:
		// (vi)/(vii) marker dispatch.
		if module, ok := markerPayload(obj.Str, stdlibModuleMarker); ok {
			return runtime.String(stdlibCallMarker + module + "." + e.Name), nil
		}
		if _, ok := markerPayload(obj.Str, userModuleMarker); ok {
			return i.moduleSymbol(env, e, obj.Str)
		}
		if enumName, ok := markerPayload(obj.Str, enumMarker); ok {
			if members, isEnum := i.enums[enumName]; isEnum {
				return i.enumVariant(e, enumName, members)
			}
		}
	}
	return nil, i.fail(diag.TypeError, e.Pos(), "%s has no member %q", describeValue(obj), e.Name)
}

func (i *Interp) enumVariant(e *ast.Member, enumName string, members []string) (*runtime.Value, error) {
	for ord, m := range members {
		if m == e.Name {
			return runtime.EnumMember(enumName, m, int64(ord)), nil
		}
	}
	if hint := diag.Suggest(e.Name, members); hint != "" {
		return nil, i.fail(diag.ReferenceError, e.Pos(), "enum %s has no variant %q; did you mean %q?", enumName, e.Name, hint)
	}
	return nil, i.fail(diag.ReferenceError, e.Pos(), "enum %s has no variant %q", enumName, e.Name)
}

// isEnumBinding reports whether name's binding is the enum marker the
// evaluator itself installed, as opposed to a user variable shadowing the
// enum.
func isEnumBinding(env *runtime.Environment, name string) bool {
	v, ok := env.Get(name)
	return ok && isMarker(v, enumMarker)
}

// boundMethod returns a function value for a struct method with the
// receiver pre-bound as `self`.
func (i *Interp) boundMethod(recv *runtime.Value, name string) (*runtime.Value, bool) {
	typeName := recv.Struct.TypeName
	table, ok := i.methods[typeName]
	if !ok {
		// A monomorphized specialization inherits its base's methods.
		if def, found := i.structs.Get(typeName); found && def.BaseName != "" {
			table, ok = i.methods[def.BaseName]
		}
	}
	if !ok {
		return nil, false
	}
	decl, ok := table[name]
	if !ok {
		return nil, false
	}
	methodEnv := runtime.NewEnclosed(i.globals)
	methodEnv.Define("self", recv)
	return runtime.Function(&runtime.FunctionValue{Decl: decl, Env: methodEnv}), true
}

// moduleSymbol resolves `alias.name` against a loaded module's
// environment.
func (i *Interp) moduleSymbol(env *runtime.Environment, e *ast.Member, marker string) (*runtime.Value, error) {
	m, ok := i.moduleByMarker(marker)
	if !ok {
		return nil, i.fail(diag.ImportError, e.Pos(), "module for %q is no longer loaded", e.Name)
	}
	if v, ok := m.Env.GetLocal(e.Name); ok {
		return v, nil
	}
	if hint := diag.Suggest(e.Name, m.Env.AllNames()); hint != "" {
		return nil, i.fail(diag.ReferenceError, e.Pos(), "module %s has no symbol %q; did you mean %q?", m.Basename(), e.Name, hint)
	}
	return nil, i.fail(diag.ReferenceError, e.Pos(), "module %s has no symbol %q", m.Basename(), e.Name)
}
