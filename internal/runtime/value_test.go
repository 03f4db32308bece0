package runtime_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/b-macker/naab/internal/runtime"
)

func TestTruthiness(t *testing.T) {
	falsy := []*runtime.Value{
		runtime.Null(),
		runtime.Int(0),
		runtime.Float(0),
		runtime.Bool(false),
		runtime.String(""),
	}
	for _, v := range falsy {
		require.False(t, v.ToBool(), "%s should be falsy", v.ToString())
	}
	truthy := []*runtime.Value{
		runtime.Int(-1),
		runtime.Float(0.1),
		runtime.Bool(true),
		runtime.String("0"),
		runtime.List([]*runtime.Value{runtime.Null()}),
	}
	for _, v := range truthy {
		require.True(t, v.ToBool(), "%s should be truthy", v.ToString())
	}
}

func TestToStringRendering(t *testing.T) {
	d := runtime.NewOrderedDict()
	d.Set("b", runtime.Int(1))
	d.Set("a", runtime.Int(2))
	require.Equal(t, "{b: 1, a: 2}", runtime.Dict(d).ToString())

	lst := runtime.List([]*runtime.Value{runtime.Int(1), runtime.String("x")})
	require.Equal(t, "[1, x]", lst.ToString())

	require.Equal(t, "1..=3", runtime.Range(1, 3, true).ToString())
	require.Equal(t, "Color.Red", runtime.EnumMember("Color", "Red", 0).ToString())
}

func TestDeepCopyIndependence(t *testing.T) {
	inner := runtime.List([]*runtime.Value{runtime.Int(1)})
	outer := runtime.List([]*runtime.Value{inner})

	cp := outer.DeepCopy()
	inner.List[0] = runtime.Int(99)
	require.Equal(t, int64(1), cp.List[0].List[0].I)
}

func TestDeepCopyTerminatesOnCycles(t *testing.T) {
	a := runtime.List(nil)
	a.List = append(a.List, a)

	cp := a.DeepCopy()
	require.Len(t, cp.List, 1)
	require.Same(t, cp, cp.List[0], "cycle structure is preserved in the copy")
}

func TestDeepCopyPreservesAliasing(t *testing.T) {
	shared := runtime.List([]*runtime.Value{runtime.Int(1)})
	outer := runtime.List([]*runtime.Value{shared, shared})

	cp := outer.DeepCopy()
	require.Same(t, cp.List[0], cp.List[1])
}

func TestTraverseVisitsDirectChildrenOnly(t *testing.T) {
	inner := runtime.List([]*runtime.Value{runtime.Int(1)})
	outer := runtime.List([]*runtime.Value{inner, runtime.String("s")})

	var seen []*runtime.Value
	outer.Traverse(func(v *runtime.Value) { seen = append(seen, v) })
	require.Len(t, seen, 2)
	require.Same(t, inner, seen[0])
}

func TestOrderedDictDelete(t *testing.T) {
	d := runtime.NewOrderedDict()
	d.Set("a", runtime.Int(1))
	d.Set("b", runtime.Int(2))
	d.Delete("a")
	require.Equal(t, []string{"b"}, d.Keys())
	_, ok := d.Get("a")
	require.False(t, ok)
}

func TestBlockWithMemberSharesHandle(t *testing.T) {
	handle := &struct{}{}
	b := &runtime.BlockValue{Language: "python", Handle: handle}
	acc := b.WithMember("math").WithMember("sqrt")
	require.Equal(t, []string{"math", "sqrt"}, acc.MemberPath)
	require.Same(t, handle, acc.Handle)
	require.Empty(t, b.MemberPath, "accessor must not mutate the original")
}
