package runtime

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/b-macker/naab/internal/ast"
	"github.com/b-macker/naab/internal/types"
)

// Kind discriminates the runtime value variants.
type Kind int

const (
	KNull Kind = iota
	KInt
	KFloat
	KBool
	KString
	KList
	KDict
	KStruct
	KFunction
	KBlock
	KForeignObject
	KEnumMember
	// KRange is the lightweight marker `a..b`/`a..=b` materializes as
	// before a `for` loop consumes it.
	KRange
)

// Value is the tagged union every expression evaluates to. It carries
// scratch mark state for internal/gcollect.
type Value struct {
	Kind Kind

	I   int64
	F   float64
	B   bool
	Str string

	List []*Value
	Dict *OrderedDict

	Struct *StructValue
	Fn     *FunctionValue
	Block  *BlockValue

	Foreign *ForeignObject

	EnumType   string
	EnumMember string
	EnumOrdVal int64

	RangeStart     int64
	RangeEnd       int64
	RangeInclusive bool

	// Marked is scratch state for internal/gcollect's mark phase; it has
	// no meaning between collections.
	Marked bool
}

// OrderedDict preserves insertion order for deterministic iteration and
// printing; dict iteration order is stable by definition.
type OrderedDict struct {
	keys   []string
	values map[string]*Value
}

func NewOrderedDict() *OrderedDict {
	return &OrderedDict{values: make(map[string]*Value)}
}

func (d *OrderedDict) Set(key string, v *Value) {
	if _, exists := d.values[key]; !exists {
		d.keys = append(d.keys, key)
	}
	d.values[key] = v
}

func (d *OrderedDict) Get(key string) (*Value, bool) {
	v, ok := d.values[key]
	return v, ok
}

func (d *OrderedDict) Delete(key string) {
	if _, ok := d.values[key]; !ok {
		return
	}
	delete(d.values, key)
	for i, k := range d.keys {
		if k == key {
			d.keys = append(d.keys[:i], d.keys[i+1:]...)
			break
		}
	}
}

func (d *OrderedDict) Keys() []string { return d.keys }
func (d *OrderedDict) Len() int       { return len(d.keys) }

// StructValue is a struct instance: its declared type name, any generic
// arguments it was monomorphized with, and its field values.
type StructValue struct {
	TypeName string
	TypeArgs []*types.Type
	Fields   *OrderedDict
}

// FunctionValue is a user-defined function closing over the environment
// it was declared in.
type FunctionValue struct {
	Decl *ast.FunctionDecl
	Env  *Environment
	// Monomorphized records concrete bindings for type parameters when
	// this value is a generic instantiation (e.g. Box<int>).
	Monomorphized map[string]*types.Type
}

// BlockValue is a reusable polyglot runtime handle bound by a `use`
// statement: an opaque per-language interpreter state that
// subsequent inline-code blocks can share instead of spawning a fresh
// process each time. A member access on a block value produces a new
// BlockValue whose MemberPath is extended by one segment; the accessor
// shares the original's Handle rather than cloning it, so its validity is
// tied to the original block's lifetime.
type BlockValue struct {
	ID       string
	Language string
	Code     string
	Handle   interface{} // owned by internal/exec's Executor implementation

	MemberPath []string
}

// WithMember returns a non-owning accessor for b's member name, sharing
// b's Handle.
func (b *BlockValue) WithMember(name string) *BlockValue {
	cp := *b
	cp.MemberPath = append(append([]string(nil), b.MemberPath...), name)
	return &cp
}

// ForeignObject wraps a value produced by a polyglot executor that has no
// direct NAAb representation, kept opaque except for member calls
// routed back through the owning executor. Repr is the foreign runtime's
// own textual rendering, used by ToString.
type ForeignObject struct {
	Language string
	Repr     string
	Handle   interface{}
}

func Null() *Value               { return &Value{Kind: KNull} }
func Int(i int64) *Value         { return &Value{Kind: KInt, I: i} }
func Float(f float64) *Value     { return &Value{Kind: KFloat, F: f} }
func Bool(b bool) *Value         { return &Value{Kind: KBool, B: b} }
func String(s string) *Value     { return &Value{Kind: KString, Str: s} }
func List(items []*Value) *Value { return &Value{Kind: KList, List: items} }
func Dict(d *OrderedDict) *Value { return &Value{Kind: KDict, Dict: d} }

func Struct(sv *StructValue) *Value { return &Value{Kind: KStruct, Struct: sv} }
func Function(fv *FunctionValue) *Value { return &Value{Kind: KFunction, Fn: fv} }
func Block(bv *BlockValue) *Value   { return &Value{Kind: KBlock, Block: bv} }
func Foreign(fo *ForeignObject) *Value { return &Value{Kind: KForeignObject, Foreign: fo} }
func EnumMember(typ, member string, ord int64) *Value {
	return &Value{Kind: KEnumMember, EnumType: typ, EnumMember: member, EnumOrdVal: ord}
}
func Range(start, end int64, inclusive bool) *Value {
	return &Value{Kind: KRange, RangeStart: start, RangeEnd: end, RangeInclusive: inclusive}
}

// ToBool implements NAAb truthiness: null and false are falsy, the empty
// string/list/dict are falsy, zero int/float are falsy; everything else
// is truthy.
func (v *Value) ToBool() bool {
	switch v.Kind {
	case KNull:
		return false
	case KBool:
		return v.B
	case KInt:
		return v.I != 0
	case KFloat:
		return v.F != 0
	case KString:
		return v.Str != ""
	case KList:
		return len(v.List) > 0
	case KDict:
		return v.Dict.Len() > 0
	default:
		return true
	}
}

// ToInt coerces numeric and boolean values to an int64, per the numeric
// coercion table. Non-numeric values return 0, false.
func (v *Value) ToInt() (int64, bool) {
	switch v.Kind {
	case KInt:
		return v.I, true
	case KFloat:
		return int64(v.F), true
	case KBool:
		if v.B {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}

// ToFloat widens int/bool to float64.
func (v *Value) ToFloat() (float64, bool) {
	switch v.Kind {
	case KFloat:
		return v.F, true
	case KInt:
		return float64(v.I), true
	case KBool:
		if v.B {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}

// ToString renders v the way `print`/string-coercion operators do.
func (v *Value) ToString() string {
	switch v.Kind {
	case KNull:
		return "null"
	case KInt:
		return strconv.FormatInt(v.I, 10)
	case KFloat:
		return strconv.FormatFloat(v.F, 'g', -1, 64)
	case KBool:
		return strconv.FormatBool(v.B)
	case KString:
		return v.Str
	case KList:
		parts := make([]string, len(v.List))
		for i, e := range v.List {
			parts[i] = e.ToString()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case KDict:
		parts := make([]string, 0, v.Dict.Len())
		for _, k := range v.Dict.Keys() {
			val, _ := v.Dict.Get(k)
			parts = append(parts, k+": "+val.ToString())
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case KStruct:
		parts := make([]string, 0, v.Struct.Fields.Len())
		for _, k := range v.Struct.Fields.Keys() {
			val, _ := v.Struct.Fields.Get(k)
			parts = append(parts, k+": "+val.ToString())
		}
		return v.Struct.TypeName + "{" + strings.Join(parts, ", ") + "}"
	case KFunction:
		return fmt.Sprintf("<function %s>", v.Fn.Decl.Name)
	case KBlock:
		return fmt.Sprintf("<block %s:%s>", v.Block.Language, v.Block.ID)
	case KForeignObject:
		if v.Foreign.Repr != "" {
			return v.Foreign.Repr
		}
		return fmt.Sprintf("<foreign %s object>", v.Foreign.Language)
	case KEnumMember:
		return v.EnumType + "." + v.EnumMember
	case KRange:
		op := ".."
		if v.RangeInclusive {
			op = "..="
		}
		return strconv.FormatInt(v.RangeStart, 10) + op + strconv.FormatInt(v.RangeEnd, 10)
	default:
		return "<?>"
	}
}

// TypeOf reports the static type tag of v, used by type-check diagnostics.
func (v *Value) TypeOf() *types.Type {
	switch v.Kind {
	case KNull:
		return types.Any().Nullable()
	case KInt:
		return types.Int()
	case KFloat:
		return types.Float()
	case KBool:
		return types.Bool()
	case KString:
		return types.String()
	case KList:
		elem := types.Any()
		if len(v.List) > 0 {
			elem = v.List[0].TypeOf()
		}
		return types.List(elem)
	case KDict:
		val := types.Any()
		if v.Dict.Len() > 0 {
			first, _ := v.Dict.Get(v.Dict.Keys()[0])
			val = first.TypeOf()
		}
		return types.Dict(types.String(), val)
	case KStruct:
		return types.Struct(v.Struct.TypeName, v.Struct.TypeArgs, "")
	case KEnumMember:
		return types.Enum(v.EnumType)
	case KFunction:
		return types.Function()
	case KBlock:
		return types.Block()
	case KRange:
		return types.List(types.Int())
	default:
		return types.Any()
	}
}

// DeepCopy clones v and every structured value it references, preserving
// aliasing within the copied graph (and terminating on cycles) via seen.
// Used for by-value parameter binding.
func (v *Value) DeepCopy() *Value {
	return v.deepCopy(make(map[*Value]*Value))
}

func (v *Value) deepCopy(seen map[*Value]*Value) *Value {
	if v == nil {
		return nil
	}
	if cp, ok := seen[v]; ok {
		return cp
	}
	switch v.Kind {
	case KList:
		cp := &Value{Kind: KList}
		seen[v] = cp
		cp.List = make([]*Value, len(v.List))
		for i, e := range v.List {
			cp.List[i] = e.deepCopy(seen)
		}
		return cp
	case KDict:
		cp := &Value{Kind: KDict, Dict: NewOrderedDict()}
		seen[v] = cp
		for _, k := range v.Dict.Keys() {
			val, _ := v.Dict.Get(k)
			cp.Dict.Set(k, val.deepCopy(seen))
		}
		return cp
	case KStruct:
		cp := &Value{Kind: KStruct, Struct: &StructValue{
			TypeName: v.Struct.TypeName,
			TypeArgs: v.Struct.TypeArgs,
			Fields:   NewOrderedDict(),
		}}
		seen[v] = cp
		for _, k := range v.Struct.Fields.Keys() {
			val, _ := v.Struct.Fields.Get(k)
			cp.Struct.Fields.Set(k, val.deepCopy(seen))
		}
		return cp
	default:
		// Scalars, functions, blocks, and foreign handles are immutable
		// from NAAb's point of view; a shallow copy of the cell suffices.
		cp := *v
		return &cp
	}
}

// Traverse visits v and every Value it directly references, used by
// internal/gcollect's mark phase to walk the object graph without that
// package needing to know the value model's concrete shape.
func (v *Value) Traverse(visit func(*Value)) {
	switch v.Kind {
	case KList:
		for _, e := range v.List {
			visit(e)
		}
	case KDict:
		for _, k := range v.Dict.Keys() {
			val, _ := v.Dict.Get(k)
			visit(val)
		}
	case KStruct:
		for _, k := range v.Struct.Fields.Keys() {
			val, _ := v.Struct.Fields.Get(k)
			visit(val)
		}
	}
}

// SortedDictKeys returns a copy of the dict's keys sorted lexically, for
// callers (like the json stdlib module) that need a deterministic order
// independent of insertion order.
func SortedDictKeys(d *OrderedDict) []string {
	keys := append([]string(nil), d.Keys()...)
	sort.Strings(keys)
	return keys
}
