package stdlib

import (
	"github.com/b-macker/naab/internal/diag"
	"github.com/b-macker/naab/internal/runtime"
)

type collectionsModule struct{}

func (*collectionsModule) Name() string { return "collections" }

func (m *collectionsModule) Call(fn string, args []*runtime.Value) (*runtime.Value, error) {
	switch fn {
	case "keys":
		d, err := wantDict(fn, args)
		if err != nil {
			return nil, err
		}
		items := make([]*runtime.Value, 0, d.Len())
		for _, k := range d.Keys() {
			items = append(items, runtime.String(k))
		}
		return runtime.List(items), nil
	case "values":
		d, err := wantDict(fn, args)
		if err != nil {
			return nil, err
		}
		items := make([]*runtime.Value, 0, d.Len())
		for _, k := range d.Keys() {
			v, _ := d.Get(k)
			items = append(items, v)
		}
		return runtime.List(items), nil
	case "has_key":
		d, err := wantDict(fn, args)
		if err != nil {
			return nil, err
		}
		_, ok := d.Get(argString(args, 1))
		return runtime.Bool(ok), nil
	case "merge":
		a, err := wantDict(fn, args)
		if err != nil {
			return nil, err
		}
		if len(args) < 2 || args[1].Kind != runtime.KDict {
			return nil, diag.New(diag.TypeError, "collections.merge expects two dicts")
		}
		out := runtime.NewOrderedDict()
		for _, k := range a.Keys() {
			v, _ := a.Get(k)
			out.Set(k, v)
		}
		for _, k := range args[1].Dict.Keys() {
			v, _ := args[1].Dict.Get(k)
			out.Set(k, v)
		}
		return runtime.Dict(out), nil
	case "unique":
		if len(args) == 0 || args[0].Kind != runtime.KList {
			return nil, diag.New(diag.TypeError, "collections.unique expects a list")
		}
		seen := make(map[string]bool)
		var out []*runtime.Value
		for _, e := range args[0].List {
			key := e.ToString()
			if !seen[key] {
				seen[key] = true
				out = append(out, e)
			}
		}
		return runtime.List(out), nil
	case "flatten":
		if len(args) == 0 || args[0].Kind != runtime.KList {
			return nil, diag.New(diag.TypeError, "collections.flatten expects a list")
		}
		var out []*runtime.Value
		for _, e := range args[0].List {
			if e.Kind == runtime.KList {
				out = append(out, e.List...)
			} else {
				out = append(out, e)
			}
		}
		return runtime.List(out), nil
	case "zip":
		if len(args) < 2 || args[0].Kind != runtime.KList || args[1].Kind != runtime.KList {
			return nil, diag.New(diag.TypeError, "collections.zip expects two lists")
		}
		n := len(args[0].List)
		if len(args[1].List) < n {
			n = len(args[1].List)
		}
		out := make([]*runtime.Value, n)
		for i := 0; i < n; i++ {
			out[i] = runtime.List([]*runtime.Value{args[0].List[i], args[1].List[i]})
		}
		return runtime.List(out), nil
	case "counter":
		if len(args) == 0 || args[0].Kind != runtime.KList {
			return nil, diag.New(diag.TypeError, "collections.counter expects a list")
		}
		d := runtime.NewOrderedDict()
		for _, e := range args[0].List {
			key := e.ToString()
			if prev, ok := d.Get(key); ok {
				d.Set(key, runtime.Int(prev.I+1))
			} else {
				d.Set(key, runtime.Int(1))
			}
		}
		return runtime.Dict(d), nil
	default:
		return nil, errUnknown("collections", fn)
	}
}

func wantDict(fn string, args []*runtime.Value) (*runtime.OrderedDict, error) {
	if len(args) == 0 || args[0].Kind != runtime.KDict {
		return nil, diag.New(diag.TypeError, "collections.%s expects a dict as its first argument", fn)
	}
	return args[0].Dict, nil
}
