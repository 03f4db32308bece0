package structs_test

import (
	"testing"

	"github.com/b-macker/naab/internal/structs"
	"github.com/b-macker/naab/internal/types"
	"github.com/stretchr/testify/require"
)

func TestRegisterAcceptsAcyclicStruct(t *testing.T) {
	r := structs.NewRegistry()
	err := r.Register(&structs.Def{
		Name:   "Point",
		Fields: []structs.FieldDef{{Name: "x", Type: types.Int()}, {Name: "y", Type: types.Int()}},
	})
	require.NoError(t, err)
	def, ok := r.Get("Point")
	require.True(t, ok)
	require.Equal(t, 0, def.FieldIndex["x"])
	require.Equal(t, 1, def.FieldIndex["y"])
}

func TestRegisterRejectsNonNullableSelfReference(t *testing.T) {
	r := structs.NewRegistry()
	err := r.Register(&structs.Def{
		Name:   "A",
		Fields: []structs.FieldDef{{Name: "x", Type: types.Struct("A", nil, "")}},
	})
	require.Error(t, err)
}

func TestRegisterAllowsNullableSelfReference(t *testing.T) {
	r := structs.NewRegistry()
	err := r.Register(&structs.Def{
		Name:   "Node",
		Fields: []structs.FieldDef{{Name: "next", Type: types.Struct("Node", nil, "").Nullable()}},
	})
	require.NoError(t, err)
}

func TestGenericDefinitionSkipsCycleCheck(t *testing.T) {
	r := structs.NewRegistry()
	err := r.Register(&structs.Def{
		Name:           "Box",
		TypeParameters: []string{"T"},
		Fields:         []structs.FieldDef{{Name: "value", Type: types.TypeParameter("T")}},
	})
	require.NoError(t, err)
}

func TestSpecializeIsIdempotentForSameTypeArgs(t *testing.T) {
	r := structs.NewRegistry()
	base := &structs.Def{Name: "Box", TypeParameters: []string{"T"}}
	_ = r.Register(base)

	fields := []structs.FieldDef{{Name: "value", Type: types.Int()}}
	d1, isNew1, err := r.Specialize(base, []*types.Type{types.Int()}, fields)
	require.NoError(t, err)
	require.True(t, isNew1)
	require.Equal(t, "Box_int", d1.Name)

	d2, isNew2, err := r.Specialize(base, []*types.Type{types.Int()}, fields)
	require.NoError(t, err)
	require.False(t, isNew2)
	require.Same(t, d1, d2)
}

func TestSpecializeProducesDistinctDefsPerTypeArg(t *testing.T) {
	r := structs.NewRegistry()
	base := &structs.Def{Name: "Box", TypeParameters: []string{"T"}}
	_ = r.Register(base)

	dInt, _, _ := r.Specialize(base, []*types.Type{types.Int()}, []structs.FieldDef{{Name: "value", Type: types.Int()}})
	dStr, _, _ := r.Specialize(base, []*types.Type{types.String()}, []structs.FieldDef{{Name: "value", Type: types.String()}})
	require.NotEqual(t, dInt.Name, dStr.Name)
}
