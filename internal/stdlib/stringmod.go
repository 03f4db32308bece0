package stdlib

import (
	"strconv"
	"strings"

	"github.com/b-macker/naab/internal/diag"
	"github.com/b-macker/naab/internal/runtime"
)

type stringModule struct{}

func (*stringModule) Name() string { return "string" }

func (m *stringModule) Call(fn string, args []*runtime.Value) (*runtime.Value, error) {
	switch fn {
	case "upper":
		return runtime.String(strings.ToUpper(argString(args, 0))), nil
	case "lower":
		return runtime.String(strings.ToLower(argString(args, 0))), nil
	case "trim":
		return runtime.String(strings.TrimSpace(argString(args, 0))), nil
	case "len", "length":
		return runtime.Int(int64(len([]rune(argString(args, 0))))), nil
	case "contains":
		return runtime.Bool(strings.Contains(argString(args, 0), argString(args, 1))), nil
	case "starts_with":
		return runtime.Bool(strings.HasPrefix(argString(args, 0), argString(args, 1))), nil
	case "ends_with":
		return runtime.Bool(strings.HasSuffix(argString(args, 0), argString(args, 1))), nil
	case "index_of":
		runes := []rune(argString(args, 0))
		idx := strings.Index(string(runes), argString(args, 1))
		if idx < 0 {
			return runtime.Int(-1), nil
		}
		return runtime.Int(int64(len([]rune(string(runes)[:idx])))), nil
	case "replace":
		if err := argCount("string", fn, args, 3); err != nil {
			return nil, err
		}
		return runtime.String(strings.ReplaceAll(argString(args, 0), argString(args, 1), argString(args, 2))), nil
	case "split":
		parts := strings.Split(argString(args, 0), argString(args, 1))
		items := make([]*runtime.Value, len(parts))
		for i, p := range parts {
			items[i] = runtime.String(p)
		}
		return runtime.List(items), nil
	case "join":
		if err := argCount("string", fn, args, 2); err != nil {
			return nil, err
		}
		if args[0].Kind != runtime.KList {
			return nil, diag.New(diag.TypeError, "string.join expects a list, got %s", args[0].TypeOf())
		}
		parts := make([]string, len(args[0].List))
		for i, e := range args[0].List {
			parts[i] = e.ToString()
		}
		return runtime.String(strings.Join(parts, argString(args, 1))), nil
	case "substring":
		runes := []rune(argString(args, 0))
		start, _ := args[1].ToInt()
		end := int64(len(runes))
		if len(args) > 2 {
			end, _ = args[2].ToInt()
		}
		if start < 0 || end > int64(len(runes)) || start > end {
			return nil, diag.New(diag.RuntimeError, "string.substring range [%d, %d) out of bounds for length %d", start, end, len(runes))
		}
		return runtime.String(string(runes[start:end])), nil
	case "repeat":
		n, _ := args[1].ToInt()
		if n < 0 {
			n = 0
		}
		return runtime.String(strings.Repeat(argString(args, 0), int(n))), nil
	case "chars":
		runes := []rune(argString(args, 0))
		items := make([]*runtime.Value, len(runes))
		for i, r := range runes {
			items[i] = runtime.String(string(r))
		}
		return runtime.List(items), nil
	case "to_int":
		i, err := strconv.ParseInt(strings.TrimSpace(argString(args, 0)), 10, 64)
		if err != nil {
			return nil, diag.New(diag.TypeError, "string.to_int: %q is not an integer", argString(args, 0))
		}
		return runtime.Int(i), nil
	case "to_float":
		f, err := strconv.ParseFloat(strings.TrimSpace(argString(args, 0)), 64)
		if err != nil {
			return nil, diag.New(diag.TypeError, "string.to_float: %q is not a number", argString(args, 0))
		}
		return runtime.Float(f), nil
	default:
		return nil, errUnknown("string", fn)
	}
}
