package exec

import (
	"fmt"
	"sync"

	"github.com/b-macker/naab/internal/runtime"
)

// NaabValueType is the C-ABI type tag exposed to C++ blocks. The
// numeric values are part of the wire contract and must not change.
type NaabValueType int32

const (
	NaabNull          NaabValueType = 0
	NaabInt           NaabValueType = 1
	NaabDouble        NaabValueType = 2
	NaabBool          NaabValueType = 3
	NaabString        NaabValueType = 4
	NaabArray         NaabValueType = 5
	NaabDict          NaabValueType = 6
	NaabBlock         NaabValueType = 7
	NaabFunction      NaabValueType = 8
	NaabForeignObject NaabValueType = 9
	NaabStruct        NaabValueType = 10
)

// TagOf maps a runtime value onto its C-ABI tag.
func TagOf(v *runtime.Value) NaabValueType {
	switch v.Kind {
	case runtime.KNull:
		return NaabNull
	case runtime.KInt:
		return NaabInt
	case runtime.KFloat:
		return NaabDouble
	case runtime.KBool:
		return NaabBool
	case runtime.KString:
		return NaabString
	case runtime.KList:
		return NaabArray
	case runtime.KDict:
		return NaabDict
	case runtime.KBlock:
		return NaabBlock
	case runtime.KFunction:
		return NaabFunction
	case runtime.KForeignObject:
		return NaabForeignObject
	case runtime.KStruct:
		return NaabStruct
	default:
		return NaabNull
	}
}

// structABIMu guards every struct accessor below: the C++ executor may
// issue these calls from its own threads while the dispatcher runs a
// parallel block group.
var structABIMu sync.Mutex

// GetStructTypeName returns the struct value's registered type name, or
// "" for non-struct values.
func GetStructTypeName(v *runtime.Value) string {
	structABIMu.Lock()
	defer structABIMu.Unlock()
	if v.Kind != runtime.KStruct {
		return ""
	}
	return v.Struct.TypeName
}

// GetStructFieldCount returns the number of fields, or -1 for non-struct
// values.
func GetStructFieldCount(v *runtime.Value) int {
	structABIMu.Lock()
	defer structABIMu.Unlock()
	if v.Kind != runtime.KStruct {
		return -1
	}
	return v.Struct.Fields.Len()
}

// GetStructFieldName returns the name of field index, or "".
func GetStructFieldName(v *runtime.Value, index int) string {
	structABIMu.Lock()
	defer structABIMu.Unlock()
	if v.Kind != runtime.KStruct {
		return ""
	}
	keys := v.Struct.Fields.Keys()
	if index < 0 || index >= len(keys) {
		return ""
	}
	return keys[index]
}

// GetStructField returns the value under name, or nil.
func GetStructField(v *runtime.Value, name string) *runtime.Value {
	structABIMu.Lock()
	defer structABIMu.Unlock()
	if v.Kind != runtime.KStruct {
		return nil
	}
	field, ok := v.Struct.Fields.Get(name)
	if !ok {
		return nil
	}
	return field
}

// SetStructField overwrites the value under name. Unknown fields are an
// error so the foreign side cannot silently grow a struct past its
// definition.
func SetStructField(v *runtime.Value, name string, value *runtime.Value) error {
	structABIMu.Lock()
	defer structABIMu.Unlock()
	if v.Kind != runtime.KStruct {
		return fmt.Errorf("set_struct_field: value is not a struct")
	}
	if _, ok := v.Struct.Fields.Get(name); !ok {
		return fmt.Errorf("set_struct_field: struct %s has no field %q", v.Struct.TypeName, name)
	}
	v.Struct.Fields.Set(name, value)
	return nil
}

// CreateStruct builds a struct value by name with the given ordered field
// names and values, the C-ABI counterpart of a host-side struct literal.
func CreateStruct(typeName string, fieldNames []string, fieldValues []*runtime.Value) (*runtime.Value, error) {
	structABIMu.Lock()
	defer structABIMu.Unlock()
	if len(fieldNames) != len(fieldValues) {
		return nil, fmt.Errorf("create_struct: %d names for %d values", len(fieldNames), len(fieldValues))
	}
	fields := runtime.NewOrderedDict()
	for i, name := range fieldNames {
		fields.Set(name, fieldValues[i])
	}
	sv := &runtime.StructValue{TypeName: typeName, Fields: fields}
	return runtime.Struct(sv), nil
}
