package stdlib_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/b-macker/naab/internal/runtime"
	"github.com/b-macker/naab/internal/stdlib"
)

func newHost() (*stdlib.Host, *bytes.Buffer) {
	var out bytes.Buffer
	return stdlib.NewHost(&out, strings.NewReader("")), &out
}

func call(t *testing.T, h *stdlib.Host, module, fn string, args ...*runtime.Value) *runtime.Value {
	t.Helper()
	v, err := h.Call(module, fn, args)
	require.NoError(t, err)
	return v
}

func TestHostRegistersEveryModule(t *testing.T) {
	h, _ := newHost()
	for _, name := range []string{"io", "string", "array", "json", "time", "math",
		"fs", "env", "http", "regex", "crypto", "collections", "csv", "debug"} {
		require.True(t, h.Has(name), "module %s missing", name)
	}
}

func TestUnknownModuleAndFunction(t *testing.T) {
	h, _ := newHost()
	_, err := h.Call("nosuch", "f", nil)
	require.Error(t, err)
	_, err = h.Call("string", "nosuch", nil)
	require.Error(t, err)
}

func TestIoWrite(t *testing.T) {
	h, out := newHost()
	call(t, h, "io", "write", runtime.String("hello"), runtime.Int(2))
	require.Equal(t, "hello 2\n", out.String())
}

func TestStringFunctions(t *testing.T) {
	h, _ := newHost()
	require.Equal(t, "ABC", call(t, h, "string", "upper", runtime.String("abc")).Str)
	require.Equal(t, int64(3), call(t, h, "string", "len", runtime.String("abc")).I)
	require.True(t, call(t, h, "string", "contains", runtime.String("abc"), runtime.String("b")).B)

	parts := call(t, h, "string", "split", runtime.String("a,b"), runtime.String(","))
	require.Equal(t, runtime.KList, parts.Kind)
	require.Len(t, parts.List, 2)

	joined := call(t, h, "string", "join", parts, runtime.String("-"))
	require.Equal(t, "a-b", joined.Str)

	n := call(t, h, "string", "to_int", runtime.String(" 42 "))
	require.Equal(t, int64(42), n.I)

	_, err := h.Call("string", "to_int", []*runtime.Value{runtime.String("xyz")})
	require.Error(t, err)
}

func TestArrayBasics(t *testing.T) {
	h, _ := newHost()
	lst := runtime.List([]*runtime.Value{runtime.Int(3), runtime.Int(1), runtime.Int(2)})

	sorted := call(t, h, "array", "sort", lst)
	require.Equal(t, "[1, 2, 3]", sorted.ToString())

	require.Equal(t, int64(6), call(t, h, "array", "sum", lst).I)
	require.Equal(t, int64(3), call(t, h, "array", "len", lst).I)

	call(t, h, "array", "push", lst, runtime.Int(9))
	require.Len(t, lst.List, 4)

	popped := call(t, h, "array", "pop", lst)
	require.Equal(t, int64(9), popped.I)
}

func TestArrayHigherOrderUsesCaller(t *testing.T) {
	h, _ := newHost()
	h.SetCaller(func(fn *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
		// The test caller doubles integers without a real evaluator.
		return runtime.Int(args[0].I * 2), nil
	})
	lst := runtime.List([]*runtime.Value{runtime.Int(1), runtime.Int(2)})
	fn := runtime.Function(&runtime.FunctionValue{})
	doubled := call(t, h, "array", "map_fn", lst, fn)
	require.Equal(t, "[2, 4]", doubled.ToString())
}

func TestJSONRoundTrip(t *testing.T) {
	h, _ := newHost()
	parsed := call(t, h, "json", "parse", runtime.String(`{"a": 1, "b": [true, null], "c": 1.5}`))
	require.Equal(t, runtime.KDict, parsed.Kind)
	a, _ := parsed.Dict.Get("a")
	require.Equal(t, runtime.KInt, a.Kind)
	c, _ := parsed.Dict.Get("c")
	require.Equal(t, runtime.KFloat, c.Kind)

	text := call(t, h, "json", "stringify", parsed)
	reparsed := call(t, h, "json", "parse", text)
	require.Equal(t, parsed.ToString(), reparsed.ToString())
}

func TestMathFunctions(t *testing.T) {
	h, _ := newHost()
	require.Equal(t, int64(3), call(t, h, "math", "abs", runtime.Int(-3)).I)
	require.Equal(t, int64(2), call(t, h, "math", "floor", runtime.Float(2.9)).I)
	require.Equal(t, int64(8), call(t, h, "math", "pow", runtime.Int(2), runtime.Int(3)).I)
	require.Equal(t, int64(1), call(t, h, "math", "min", runtime.Int(3), runtime.Int(1), runtime.Int(2)).I)
	require.InDelta(t, 1.4142, call(t, h, "math", "sqrt", runtime.Float(2)).F, 0.001)
}

func TestEnvArgs(t *testing.T) {
	h, _ := newHost()
	h.SetArgs([]string{"one", "two"})
	args := call(t, h, "env", "get_args")
	require.Equal(t, "[one, two]", args.ToString())
}

func TestRegexFunctions(t *testing.T) {
	h, _ := newHost()
	require.True(t, call(t, h, "regex", "match", runtime.String(`\d+`), runtime.String("a1b")).B)
	all := call(t, h, "regex", "find_all", runtime.String(`\d`), runtime.String("a1b2"))
	require.Equal(t, "[1, 2]", all.ToString())
	replaced := call(t, h, "regex", "replace", runtime.String(`\d`), runtime.String("a1"), runtime.String("#"))
	require.Equal(t, "a#", replaced.Str)
	_, err := h.Call("regex", "match", []*runtime.Value{runtime.String(`(`), runtime.String("x")})
	require.Error(t, err)
}

func TestCryptoFunctions(t *testing.T) {
	h, _ := newHost()
	sum := call(t, h, "crypto", "sha256", runtime.String("abc"))
	require.Equal(t, "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad", sum.Str)

	enc := call(t, h, "crypto", "base64_encode", runtime.String("hi"))
	dec := call(t, h, "crypto", "base64_decode", enc)
	require.Equal(t, "hi", dec.Str)

	id := call(t, h, "crypto", "uuid")
	require.Len(t, id.Str, 36)
}

func TestCollectionsFunctions(t *testing.T) {
	h, _ := newHost()
	d := runtime.NewOrderedDict()
	d.Set("a", runtime.Int(1))
	d.Set("b", runtime.Int(2))
	dict := runtime.Dict(d)

	require.Equal(t, "[a, b]", call(t, h, "collections", "keys", dict).ToString())
	require.True(t, call(t, h, "collections", "has_key", dict, runtime.String("a")).B)

	lst := runtime.List([]*runtime.Value{runtime.Int(1), runtime.Int(1), runtime.Int(2)})
	require.Equal(t, "[1, 2]", call(t, h, "collections", "unique", lst).ToString())
	counted := call(t, h, "collections", "counter", lst)
	one, _ := counted.Dict.Get("1")
	require.Equal(t, int64(2), one.I)
}

func TestCSVRoundTrip(t *testing.T) {
	h, _ := newHost()
	rows := call(t, h, "csv", "parse", runtime.String("a,b\n1,2\n"))
	require.Len(t, rows.List, 2)

	dicts := call(t, h, "csv", "parse_dicts", runtime.String("name,age\nada,36\n"))
	require.Len(t, dicts.List, 1)
	name, _ := dicts.List[0].Dict.Get("name")
	require.Equal(t, "ada", name.Str)

	text := call(t, h, "csv", "stringify", rows)
	require.Equal(t, "a,b\n1,2\n", text.Str)
}

func TestFSFunctions(t *testing.T) {
	h, _ := newHost()
	dir := t.TempDir()
	path := dir + "/f.txt"

	call(t, h, "fs", "write_file", runtime.String(path), runtime.String("data"))
	require.True(t, call(t, h, "fs", "exists", runtime.String(path)).B)
	require.Equal(t, "data", call(t, h, "fs", "read_file", runtime.String(path)).Str)
	call(t, h, "fs", "append_file", runtime.String(path), runtime.String("+"))
	require.Equal(t, "data+", call(t, h, "fs", "read_file", runtime.String(path)).Str)

	names := call(t, h, "fs", "list_dir", runtime.String(dir))
	require.Equal(t, "[f.txt]", names.ToString())
}

func TestDebugFunctions(t *testing.T) {
	h, _ := newHost()
	v := call(t, h, "debug", "inspect", runtime.Int(7))
	require.Equal(t, "int: 7", v.Str)
	require.True(t, call(t, h, "debug", "is_null", runtime.Null()).B)
}
