package stdlib

import (
	"github.com/b-macker/naab/internal/runtime"
)

type debugModule struct{}

func (*debugModule) Name() string { return "debug" }

func (m *debugModule) Call(fn string, args []*runtime.Value) (*runtime.Value, error) {
	switch fn {
	case "inspect":
		if len(args) == 0 {
			return runtime.String("null"), nil
		}
		return runtime.String(args[0].TypeOf().String() + ": " + args[0].ToString()), nil
	case "type_of":
		if len(args) == 0 {
			return runtime.String("null"), nil
		}
		return runtime.String(args[0].TypeOf().String()), nil
	case "fields":
		// Struct field introspection, mirroring the RTTI-style helpers of
		// the runtime's debug surface.
		if len(args) == 0 || args[0].Kind != runtime.KStruct {
			return runtime.List(nil), nil
		}
		keys := args[0].Struct.Fields.Keys()
		items := make([]*runtime.Value, len(keys))
		for i, k := range keys {
			items[i] = runtime.String(k)
		}
		return runtime.List(items), nil
	case "is_null":
		return runtime.Bool(len(args) == 0 || args[0].Kind == runtime.KNull), nil
	default:
		return nil, errUnknown("debug", fn)
	}
}
