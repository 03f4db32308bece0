package evaluator

import (
	"strings"

	"github.com/b-macker/naab/internal/runtime"
	"github.com/b-macker/naab/internal/structs"
	"github.com/b-macker/naab/internal/types"
)

// matches checks a runtime value against a declared type using the
// matching rules, resolving type parameters through the active
// generic substitution.
func (i *Interp) matches(t *types.Type, v *runtime.Value) bool {
	var subst map[string]*types.Type
	if len(i.substStack) > 0 {
		subst = i.substStack[len(i.substStack)-1]
	}
	return i.matchesWith(t, v, subst)
}

func (i *Interp) matchesWith(t *types.Type, v *runtime.Value, subst map[string]*types.Type) bool {
	if t == nil {
		return true
	}
	if t.Kind == types.KTypeParameter {
		if bound, ok := subst[t.ParamName]; ok {
			resolved := bound
			if t.IsNullable && !resolved.IsNullable {
				resolved = resolved.Nullable()
			}
			return i.matchesWith(resolved, v, subst)
		}
		// The parser cannot distinguish a type parameter from a named
		// struct or enum annotation; resolve against the registries
		// before falling back to unresolved-parameter Any semantics.
		if _, ok := i.structs.Get(t.ParamName); ok {
			named := types.Struct(t.ParamName, nil, "")
			if t.IsNullable {
				named = named.Nullable()
			}
			return i.matchesWith(named, v, subst)
		}
		if _, ok := i.enums[t.ParamName]; ok {
			named := types.Enum(t.ParamName)
			if t.IsNullable {
				named = named.Nullable()
			}
			return i.matchesWith(named, v, subst)
		}
		return v.Kind != runtime.KNull || t.IsNullable
	}

	// A null value only matches nullable types.
	if v.Kind == runtime.KNull {
		return t.IsNullable
	}

	switch t.Kind {
	case types.KAny:
		return true
	case types.KVoid:
		return false
	case types.KInt:
		return v.Kind == runtime.KInt
	case types.KFloat:
		// Int widens into a float slot, never the reverse.
		return v.Kind == runtime.KFloat || v.Kind == runtime.KInt
	case types.KBool:
		return v.Kind == runtime.KBool
	case types.KString:
		return v.Kind == runtime.KString
	case types.KList:
		if v.Kind != runtime.KList {
			return false
		}
		for _, e := range v.List {
			if !i.matchesWith(t.Element, e, subst) {
				return false
			}
		}
		return true
	case types.KDict:
		if v.Kind != runtime.KDict {
			return false
		}
		for _, k := range v.Dict.Keys() {
			val, _ := v.Dict.Get(k)
			if !i.matchesWith(t.DictValue, val, subst) {
				return false
			}
		}
		return true
	case types.KStruct:
		if v.Kind != runtime.KStruct {
			return false
		}
		// Exact name, or a monomorphized specialization of it
		// (prefix "Name_").
		name := v.Struct.TypeName
		if name == t.StructName {
			return true
		}
		if strings.HasPrefix(name, t.StructName+"_") {
			return true
		}
		// A literal annotated Box<int> against a value registered as
		// Box_int.
		if len(t.TypeArgs) > 0 {
			want := mangledName(t)
			return name == want
		}
		return false
	case types.KEnum:
		return v.Kind == runtime.KEnumMember && v.EnumType == t.EnumName
	case types.KFunction:
		return v.Kind == runtime.KFunction
	case types.KBlock:
		return v.Kind == runtime.KBlock
	case types.KUnion:
		for _, alt := range t.Alternatives {
			resolved := alt
			if t.IsNullable && !resolved.IsNullable {
				resolved = resolved.Nullable()
			}
			if i.matchesWith(resolved, v, subst) {
				return true
			}
		}
		return false
	default:
		return true
	}
}

// substitute rewrites type parameters in t using subst, leaving every
// other type untouched. Returns t itself when nothing changes.
func (i *Interp) substitute(t *types.Type, subst map[string]*types.Type) *types.Type {
	if t == nil || len(subst) == 0 {
		return t
	}
	switch t.Kind {
	case types.KTypeParameter:
		if bound, ok := subst[t.ParamName]; ok {
			if t.IsNullable && !bound.IsNullable {
				return bound.Nullable()
			}
			return bound
		}
		return t
	case types.KList:
		elem := i.substitute(t.Element, subst)
		if elem == t.Element {
			return t
		}
		out := types.List(elem)
		if t.IsNullable {
			out = out.Nullable()
		}
		return out
	case types.KDict:
		val := i.substitute(t.DictValue, subst)
		if val == t.DictValue {
			return t
		}
		out := types.Dict(t.DictKey, val)
		if t.IsNullable {
			out = out.Nullable()
		}
		return out
	case types.KStruct:
		if len(t.TypeArgs) == 0 {
			return t
		}
		changed := false
		args := make([]*types.Type, len(t.TypeArgs))
		for idx, a := range t.TypeArgs {
			args[idx] = i.substitute(a, subst)
			if args[idx] != a {
				changed = true
			}
		}
		if !changed {
			return t
		}
		out := types.Struct(t.StructName, args, t.ModulePrefix)
		if t.IsNullable {
			out = out.Nullable()
		}
		return out
	case types.KUnion:
		changed := false
		alts := make([]*types.Type, len(t.Alternatives))
		for idx, a := range t.Alternatives {
			alts[idx] = i.substitute(a, subst)
			if alts[idx] != a {
				changed = true
			}
		}
		if !changed {
			return t
		}
		out := types.Union(alts)
		if t.IsNullable {
			out = out.Nullable()
		}
		return out
	default:
		return t
	}
}

// mangledName renders an annotated generic struct type (Box<int>) as its
// specialization name (Box_int), mirroring the registry's mangling.
func mangledName(t *types.Type) string {
	return structs.Mangle(t.StructName, t.TypeArgs)
}
