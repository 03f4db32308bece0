// Package types implements the NAAb Type sum — the static type
// annotations that appear in source (let bindings, function signatures,
// struct fields) and that the evaluator checks runtime values against.
package types

import "strings"

// Kind discriminates the variants of Type.
type Kind int

const (
	KAny Kind = iota
	KVoid
	KInt
	KFloat
	KBool
	KString
	KList
	KDict
	KStruct
	KEnum
	KFunction
	KBlock
	KTypeParameter
	KUnion
)

// Type is the static type sum. Only the fields relevant to
// a given Kind are populated; the zero value (KAny, non-nullable) matches
// any non-null value.
type Type struct {
	Kind Kind

	// List(element)
	Element *Type
	// Dict(key, value)
	DictKey   *Type
	DictValue *Type

	// Struct(name, typeArgs, modulePrefix?)
	StructName   string
	TypeArgs     []*Type
	ModulePrefix string

	// Enum(name)
	EnumName string

	// TypeParameter(name)
	ParamName string

	// Union(alternatives)
	Alternatives []*Type

	IsNullable bool
	// IsReference marks a parameter-position reference binding; it is
	// meaningless anywhere else.
	IsReference bool
}

func Any() *Type    { return &Type{Kind: KAny} }
func Void() *Type    { return &Type{Kind: KVoid} }
func Int() *Type     { return &Type{Kind: KInt} }
func Float() *Type   { return &Type{Kind: KFloat} }
func Bool() *Type    { return &Type{Kind: KBool} }
func String() *Type  { return &Type{Kind: KString} }
func Function() *Type { return &Type{Kind: KFunction} }
func Block() *Type   { return &Type{Kind: KBlock} }

func List(elem *Type) *Type { return &Type{Kind: KList, Element: elem} }
func Dict(key, val *Type) *Type { return &Type{Kind: KDict, DictKey: key, DictValue: val} }
func Struct(name string, typeArgs []*Type, modulePrefix string) *Type {
	return &Type{Kind: KStruct, StructName: name, TypeArgs: typeArgs, ModulePrefix: modulePrefix}
}
func Enum(name string) *Type         { return &Type{Kind: KEnum, EnumName: name} }
func TypeParameter(name string) *Type { return &Type{Kind: KTypeParameter, ParamName: name} }

// Union constructs a union type. An alternative that is itself a Union is
// replaced by its members, so union members are never themselves Union.
func Union(alts []*Type) *Type {
	flat := make([]*Type, 0, len(alts))
	for _, a := range alts {
		if a.Kind == KUnion {
			flat = append(flat, a.Alternatives...)
		} else {
			flat = append(flat, a)
		}
	}
	return &Type{Kind: KUnion, Alternatives: flat}
}

// Nullable returns a copy of t with IsNullable set. Void can never be
// nullable; calling this on Void is a no-op that
// returns t unchanged.
func (t *Type) Nullable() *Type {
	if t.Kind == KVoid {
		return t
	}
	cp := *t
	cp.IsNullable = true
	return &cp
}

// Reference returns a copy of t marked as a by-reference parameter.
func (t *Type) Reference() *Type {
	cp := *t
	cp.IsReference = true
	return &cp
}

// String renders the type the way it would appear in source, used in
// diagnostics.
func (t *Type) String() string {
	if t == nil {
		return "<nil>"
	}
	var s string
	switch t.Kind {
	case KAny:
		s = "any"
	case KVoid:
		s = "void"
	case KInt:
		s = "int"
	case KFloat:
		s = "float"
	case KBool:
		s = "bool"
	case KString:
		s = "string"
	case KList:
		s = "[" + t.Element.String() + "]"
	case KDict:
		s = "{" + t.DictKey.String() + ": " + t.DictValue.String() + "}"
	case KStruct:
		name := t.StructName
		if t.ModulePrefix != "" {
			name = t.ModulePrefix + "." + name
		}
		if len(t.TypeArgs) > 0 {
			parts := make([]string, len(t.TypeArgs))
			for i, a := range t.TypeArgs {
				parts[i] = a.String()
			}
			name += "<" + strings.Join(parts, ", ") + ">"
		}
		s = name
	case KEnum:
		s = t.EnumName
	case KFunction:
		s = "fn"
	case KBlock:
		s = "block"
	case KTypeParameter:
		s = t.ParamName
	case KUnion:
		parts := make([]string, len(t.Alternatives))
		for i, a := range t.Alternatives {
			parts[i] = a.String()
		}
		s = strings.Join(parts, " | ")
	default:
		s = "?"
	}
	if t.IsNullable {
		s += "?"
	}
	return s
}

// Equal reports structural equality, ignoring IsReference (a
// parameter-binding detail, not part of a type's identity).
func (t *Type) Equal(o *Type) bool {
	if t == nil || o == nil {
		return t == o
	}
	if t.Kind != o.Kind || t.IsNullable != o.IsNullable {
		return false
	}
	switch t.Kind {
	case KList:
		return t.Element.Equal(o.Element)
	case KDict:
		return t.DictKey.Equal(o.DictKey) && t.DictValue.Equal(o.DictValue)
	case KStruct:
		if t.StructName != o.StructName || len(t.TypeArgs) != len(o.TypeArgs) {
			return false
		}
		for i := range t.TypeArgs {
			if !t.TypeArgs[i].Equal(o.TypeArgs[i]) {
				return false
			}
		}
		return true
	case KEnum:
		return t.EnumName == o.EnumName
	case KTypeParameter:
		return t.ParamName == o.ParamName
	case KUnion:
		if len(t.Alternatives) != len(o.Alternatives) {
			return false
		}
		for i := range t.Alternatives {
			if !t.Alternatives[i].Equal(o.Alternatives[i]) {
				return false
			}
		}
		return true
	default:
		return true
	}
}
