package stdlib

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/b-macker/naab/internal/diag"
	"github.com/b-macker/naab/internal/runtime"
)

type jsonModule struct{}

func (*jsonModule) Name() string { return "json" }

func (m *jsonModule) Call(fn string, args []*runtime.Value) (*runtime.Value, error) {
	switch fn {
	case "parse":
		if err := argCount("json", fn, args, 1); err != nil {
			return nil, err
		}
		var raw interface{}
		if err := json.Unmarshal([]byte(argString(args, 0)), &raw); err != nil {
			return nil, diag.New(diag.RuntimeError, "json.parse: %v", err)
		}
		return fromJSON(raw), nil
	case "stringify":
		if len(args) < 1 {
			return nil, diag.New(diag.RuntimeError, "json.stringify expects a value")
		}
		indent := ""
		if len(args) > 1 {
			if n, ok := args[1].ToInt(); ok && n > 0 {
				for i := int64(0); i < n; i++ {
					indent += " "
				}
			}
		}
		native := toJSON(args[0])
		var (
			out []byte
			err error
		)
		if indent != "" {
			out, err = json.MarshalIndent(native, "", indent)
		} else {
			out, err = json.Marshal(native)
		}
		if err != nil {
			return nil, diag.New(diag.RuntimeError, "json.stringify: %v", err)
		}
		return runtime.String(string(out)), nil
	default:
		return nil, errUnknown("json", fn)
	}
}

// fromJSON maps a decoded encoding/json value onto the runtime Value
// model. JSON numbers become Int when integral, Float otherwise.
func fromJSON(raw interface{}) *runtime.Value {
	switch v := raw.(type) {
	case nil:
		return runtime.Null()
	case bool:
		return runtime.Bool(v)
	case float64:
		if v == float64(int64(v)) {
			return runtime.Int(int64(v))
		}
		return runtime.Float(v)
	case string:
		return runtime.String(v)
	case []interface{}:
		items := make([]*runtime.Value, len(v))
		for i, e := range v {
			items[i] = fromJSON(e)
		}
		return runtime.List(items)
	case map[string]interface{}:
		d := runtime.NewOrderedDict()
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			d.Set(k, fromJSON(v[k]))
		}
		return runtime.Dict(d)
	default:
		return runtime.String(fmt.Sprintf("%v", v))
	}
}

// toJSON maps a runtime Value onto encoding/json's native shapes; structs
// serialize as objects keyed by field name.
func toJSON(v *runtime.Value) interface{} {
	switch v.Kind {
	case runtime.KNull:
		return nil
	case runtime.KInt:
		return v.I
	case runtime.KFloat:
		return v.F
	case runtime.KBool:
		return v.B
	case runtime.KString:
		return v.Str
	case runtime.KList:
		out := make([]interface{}, len(v.List))
		for i, e := range v.List {
			out[i] = toJSON(e)
		}
		return out
	case runtime.KDict:
		out := make(map[string]interface{}, v.Dict.Len())
		for _, k := range v.Dict.Keys() {
			val, _ := v.Dict.Get(k)
			out[k] = toJSON(val)
		}
		return out
	case runtime.KStruct:
		out := make(map[string]interface{}, v.Struct.Fields.Len())
		for _, k := range v.Struct.Fields.Keys() {
			val, _ := v.Struct.Fields.Get(k)
			out[k] = toJSON(val)
		}
		return out
	default:
		return v.ToString()
	}
}
