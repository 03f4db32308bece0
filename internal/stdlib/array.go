package stdlib

import (
	"sort"

	"github.com/b-macker/naab/internal/diag"
	"github.com/b-macker/naab/internal/runtime"
)

// arrayModule carries the host so its higher-order operations (map_fn,
// filter_fn, reduce_fn) can invoke user functions through the
// function-evaluator callback.
type arrayModule struct {
	host *Host
}

func (*arrayModule) Name() string { return "array" }

func (m *arrayModule) list(args []*runtime.Value, fn string) (*runtime.Value, error) {
	if len(args) == 0 || args[0].Kind != runtime.KList {
		return nil, diag.New(diag.TypeError, "array.%s expects a list as its first argument", fn)
	}
	return args[0], nil
}

func (m *arrayModule) Call(fn string, args []*runtime.Value) (*runtime.Value, error) {
	switch fn {
	case "len", "length":
		lst, err := m.list(args, fn)
		if err != nil {
			return nil, err
		}
		return runtime.Int(int64(len(lst.List))), nil
	case "push":
		lst, err := m.list(args, fn)
		if err != nil {
			return nil, err
		}
		if err := argCount("array", fn, args, 2); err != nil {
			return nil, err
		}
		lst.List = append(lst.List, args[1])
		return lst, nil
	case "pop":
		lst, err := m.list(args, fn)
		if err != nil {
			return nil, err
		}
		if len(lst.List) == 0 {
			return nil, diag.New(diag.RuntimeError, "array.pop on an empty list")
		}
		last := lst.List[len(lst.List)-1]
		lst.List = lst.List[:len(lst.List)-1]
		return last, nil
	case "first":
		lst, err := m.list(args, fn)
		if err != nil {
			return nil, err
		}
		if len(lst.List) == 0 {
			return runtime.Null(), nil
		}
		return lst.List[0], nil
	case "last":
		lst, err := m.list(args, fn)
		if err != nil {
			return nil, err
		}
		if len(lst.List) == 0 {
			return runtime.Null(), nil
		}
		return lst.List[len(lst.List)-1], nil
	case "slice":
		lst, err := m.list(args, fn)
		if err != nil {
			return nil, err
		}
		start, _ := args[1].ToInt()
		end := int64(len(lst.List))
		if len(args) > 2 {
			end, _ = args[2].ToInt()
		}
		if start < 0 || end > int64(len(lst.List)) || start > end {
			return nil, diag.New(diag.RuntimeError, "array.slice range [%d, %d) out of bounds for length %d", start, end, len(lst.List))
		}
		return runtime.List(append([]*runtime.Value(nil), lst.List[start:end]...)), nil
	case "concat":
		lst, err := m.list(args, fn)
		if err != nil {
			return nil, err
		}
		if len(args) < 2 || args[1].Kind != runtime.KList {
			return nil, diag.New(diag.TypeError, "array.concat expects two lists")
		}
		out := append(append([]*runtime.Value(nil), lst.List...), args[1].List...)
		return runtime.List(out), nil
	case "contains":
		lst, err := m.list(args, fn)
		if err != nil {
			return nil, err
		}
		needle := argString(args, 1)
		for _, e := range lst.List {
			if e.ToString() == needle {
				return runtime.Bool(true), nil
			}
		}
		return runtime.Bool(false), nil
	case "index_of":
		lst, err := m.list(args, fn)
		if err != nil {
			return nil, err
		}
		needle := argString(args, 1)
		for i, e := range lst.List {
			if e.ToString() == needle {
				return runtime.Int(int64(i)), nil
			}
		}
		return runtime.Int(-1), nil
	case "reverse":
		lst, err := m.list(args, fn)
		if err != nil {
			return nil, err
		}
		out := make([]*runtime.Value, len(lst.List))
		for i, e := range lst.List {
			out[len(lst.List)-1-i] = e
		}
		return runtime.List(out), nil
	case "sort":
		lst, err := m.list(args, fn)
		if err != nil {
			return nil, err
		}
		out := append([]*runtime.Value(nil), lst.List...)
		sort.SliceStable(out, func(i, j int) bool {
			fi, iok := out[i].ToFloat()
			fj, jok := out[j].ToFloat()
			if iok && jok {
				return fi < fj
			}
			return out[i].ToString() < out[j].ToString()
		})
		return runtime.List(out), nil
	case "sum":
		lst, err := m.list(args, fn)
		if err != nil {
			return nil, err
		}
		var total float64
		allInt := true
		for _, e := range lst.List {
			f, ok := e.ToFloat()
			if !ok {
				return nil, diag.New(diag.TypeError, "array.sum: non-numeric element %s", e.ToString())
			}
			if e.Kind != runtime.KInt {
				allInt = false
			}
			total += f
		}
		if allInt {
			return runtime.Int(int64(total)), nil
		}
		return runtime.Float(total), nil
	case "map_fn", "filter_fn", "reduce_fn":
		return m.higherOrder(fn, args)
	default:
		return nil, errUnknown("array", fn)
	}
}

func (m *arrayModule) higherOrder(fn string, args []*runtime.Value) (*runtime.Value, error) {
	if m.host.caller == nil {
		return nil, diag.New(diag.RuntimeError, "array.%s requires a function evaluator", fn)
	}
	lst, err := m.list(args, fn)
	if err != nil {
		return nil, err
	}
	if len(args) < 2 || args[1].Kind != runtime.KFunction {
		return nil, diag.New(diag.TypeError, "array.%s expects a function as its second argument", fn)
	}
	f := args[1]
	switch fn {
	case "map_fn":
		out := make([]*runtime.Value, len(lst.List))
		for i, e := range lst.List {
			v, err := m.host.caller(f, []*runtime.Value{e})
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return runtime.List(out), nil
	case "filter_fn":
		var out []*runtime.Value
		for _, e := range lst.List {
			v, err := m.host.caller(f, []*runtime.Value{e})
			if err != nil {
				return nil, err
			}
			if v.ToBool() {
				out = append(out, e)
			}
		}
		return runtime.List(out), nil
	default: // reduce_fn
		if len(args) < 3 {
			return nil, diag.New(diag.RuntimeError, "array.reduce_fn expects (list, fn, initial)")
		}
		acc := args[2]
		for _, e := range lst.List {
			v, err := m.host.caller(f, []*runtime.Value{acc, e})
			if err != nil {
				return nil, err
			}
			acc = v
		}
		return acc, nil
	}
}
