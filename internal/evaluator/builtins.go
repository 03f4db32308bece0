package evaluator

import (
	"fmt"
	"strings"

	"github.com/b-macker/naab/internal/diag"
	"github.com/b-macker/naab/internal/lexer"
	"github.com/b-macker/naab/internal/runtime"
)

// builtinNames are the callable names resolved when no binding shadows
// them: print, len, type, typeof, gc_collect, plus struct introspection
// and assert.
var builtinNames = map[string]bool{
	"print":      true,
	"len":        true,
	"type":       true,
	"typeof":     true,
	"gc_collect": true,
	"fields":     true,
	"assert":     true,
}

func isBuiltin(name string) bool { return builtinNames[name] }

func (i *Interp) callBuiltin(env *runtime.Environment, name string, args []*runtime.Value, pos lexer.Position) (*runtime.Value, error) {
	switch name {
	case "print":
		parts := make([]string, len(args))
		for idx, a := range args {
			parts[idx] = a.ToString()
		}
		fmt.Fprintln(i.out, strings.Join(parts, " "))
		return runtime.Null(), nil
	case "len":
		if len(args) != 1 {
			return nil, i.fail(diag.RuntimeError, pos, "len expects 1 argument, got %d", len(args))
		}
		switch args[0].Kind {
		case runtime.KString:
			return runtime.Int(int64(len([]rune(args[0].Str)))), nil
		case runtime.KList:
			return runtime.Int(int64(len(args[0].List))), nil
		case runtime.KDict:
			return runtime.Int(int64(args[0].Dict.Len())), nil
		default:
			return nil, i.fail(diag.TypeError, pos, "len expects a string, list, or dict, got %s", describeValue(args[0]))
		}
	case "type", "typeof":
		if len(args) != 1 {
			return nil, i.fail(diag.RuntimeError, pos, "%s expects 1 argument, got %d", name, len(args))
		}
		return runtime.String(args[0].TypeOf().String()), nil
	case "gc_collect":
		// Forces an immediate cycle collection and reports the number
		// of cycles severed.
		return runtime.Int(int64(i.gc.Collect())), nil
	case "fields":
		if len(args) != 1 || args[0].Kind != runtime.KStruct {
			return nil, i.fail(diag.TypeError, pos, "fields expects a struct value")
		}
		keys := args[0].Struct.Fields.Keys()
		items := make([]*runtime.Value, len(keys))
		for idx, k := range keys {
			items[idx] = runtime.String(k)
		}
		return i.alloc(runtime.List(items)), nil
	case "assert":
		if len(args) == 0 {
			return nil, i.fail(diag.RuntimeError, pos, "assert expects a condition")
		}
		if !args[0].ToBool() {
			msg := "assertion failed"
			if len(args) > 1 {
				msg = args[1].ToString()
			}
			return nil, i.fail(diag.AssertionError, pos, "%s", msg)
		}
		return runtime.Null(), nil
	default:
		return nil, i.undefined(env, pos, name)
	}
}
