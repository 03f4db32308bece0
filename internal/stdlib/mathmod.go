package stdlib

import (
	"math"
	"math/rand"

	"github.com/b-macker/naab/internal/diag"
	"github.com/b-macker/naab/internal/runtime"
)

type mathModule struct{}

func (*mathModule) Name() string { return "math" }

func (m *mathModule) Call(fn string, args []*runtime.Value) (*runtime.Value, error) {
	unary := func(f func(float64) float64) (*runtime.Value, error) {
		if len(args) == 0 {
			return nil, diag.New(diag.RuntimeError, "math.%s expects a number", fn)
		}
		x, ok := args[0].ToFloat()
		if !ok {
			return nil, diag.New(diag.TypeError, "math.%s expects a number, got %s", fn, args[0].TypeOf())
		}
		return runtime.Float(f(x)), nil
	}
	switch fn {
	case "pi":
		return runtime.Float(math.Pi), nil
	case "e":
		return runtime.Float(math.E), nil
	case "abs":
		if len(args) > 0 && args[0].Kind == runtime.KInt {
			i := args[0].I
			if i < 0 {
				i = -i
			}
			return runtime.Int(i), nil
		}
		return unary(math.Abs)
	case "floor":
		v, err := unary(math.Floor)
		if err != nil {
			return nil, err
		}
		return runtime.Int(int64(v.F)), nil
	case "ceil":
		v, err := unary(math.Ceil)
		if err != nil {
			return nil, err
		}
		return runtime.Int(int64(v.F)), nil
	case "round":
		v, err := unary(math.Round)
		if err != nil {
			return nil, err
		}
		return runtime.Int(int64(v.F)), nil
	case "sqrt":
		return unary(math.Sqrt)
	case "sin":
		return unary(math.Sin)
	case "cos":
		return unary(math.Cos)
	case "tan":
		return unary(math.Tan)
	case "log":
		return unary(math.Log)
	case "exp":
		return unary(math.Exp)
	case "pow":
		if err := argCount("math", fn, args, 2); err != nil {
			return nil, err
		}
		x, _ := args[0].ToFloat()
		y, _ := args[1].ToFloat()
		r := math.Pow(x, y)
		if args[0].Kind == runtime.KInt && args[1].Kind == runtime.KInt && y >= 0 && r == math.Trunc(r) {
			return runtime.Int(int64(r)), nil
		}
		return runtime.Float(r), nil
	case "min", "max":
		if len(args) == 0 {
			return nil, diag.New(diag.RuntimeError, "math.%s expects at least one number", fn)
		}
		best, ok := args[0].ToFloat()
		if !ok {
			return nil, diag.New(diag.TypeError, "math.%s expects numbers", fn)
		}
		allInt := args[0].Kind == runtime.KInt
		for _, a := range args[1:] {
			x, ok := a.ToFloat()
			if !ok {
				return nil, diag.New(diag.TypeError, "math.%s expects numbers", fn)
			}
			if a.Kind != runtime.KInt {
				allInt = false
			}
			if (fn == "min" && x < best) || (fn == "max" && x > best) {
				best = x
			}
		}
		if allInt {
			return runtime.Int(int64(best)), nil
		}
		return runtime.Float(best), nil
	case "random":
		return runtime.Float(rand.Float64()), nil
	case "random_int":
		if err := argCount("math", fn, args, 2); err != nil {
			return nil, err
		}
		lo, _ := args[0].ToInt()
		hi, _ := args[1].ToInt()
		if hi <= lo {
			return runtime.Int(lo), nil
		}
		return runtime.Int(lo + rand.Int63n(hi-lo)), nil
	default:
		return nil, errUnknown("math", fn)
	}
}
