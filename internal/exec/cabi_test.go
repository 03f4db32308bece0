package exec_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/b-macker/naab/internal/exec"
	"github.com/b-macker/naab/internal/runtime"
)

func TestTagValuesAreStable(t *testing.T) {
	// The numeric tags are part of the C ABI wire contract.
	require.EqualValues(t, 0, exec.NaabNull)
	require.EqualValues(t, 1, exec.NaabInt)
	require.EqualValues(t, 2, exec.NaabDouble)
	require.EqualValues(t, 3, exec.NaabBool)
	require.EqualValues(t, 4, exec.NaabString)
	require.EqualValues(t, 5, exec.NaabArray)
	require.EqualValues(t, 6, exec.NaabDict)
	require.EqualValues(t, 7, exec.NaabBlock)
	require.EqualValues(t, 8, exec.NaabFunction)
	require.EqualValues(t, 9, exec.NaabForeignObject)
	require.EqualValues(t, 10, exec.NaabStruct)
}

func TestTagOf(t *testing.T) {
	require.Equal(t, exec.NaabInt, exec.TagOf(runtime.Int(1)))
	require.Equal(t, exec.NaabDouble, exec.TagOf(runtime.Float(1)))
	require.Equal(t, exec.NaabArray, exec.TagOf(runtime.List(nil)))
	require.Equal(t, exec.NaabNull, exec.TagOf(runtime.Null()))
}

func TestStructAccessors(t *testing.T) {
	sv, err := exec.CreateStruct("Point",
		[]string{"x", "y"},
		[]*runtime.Value{runtime.Int(1), runtime.Int(2)})
	require.NoError(t, err)

	require.Equal(t, "Point", exec.GetStructTypeName(sv))
	require.Equal(t, 2, exec.GetStructFieldCount(sv))
	require.Equal(t, "x", exec.GetStructFieldName(sv, 0))
	require.Equal(t, "y", exec.GetStructFieldName(sv, 1))
	require.Equal(t, "", exec.GetStructFieldName(sv, 2))

	require.Equal(t, int64(1), exec.GetStructField(sv, "x").I)
	require.Nil(t, exec.GetStructField(sv, "z"))

	require.NoError(t, exec.SetStructField(sv, "x", runtime.Int(9)))
	require.Equal(t, int64(9), exec.GetStructField(sv, "x").I)
	require.Error(t, exec.SetStructField(sv, "z", runtime.Int(0)))

	notStruct := runtime.Int(3)
	require.Equal(t, -1, exec.GetStructFieldCount(notStruct))
	require.Equal(t, "", exec.GetStructTypeName(notStruct))
}

func TestCreateStructMismatchedArity(t *testing.T) {
	_, err := exec.CreateStruct("P", []string{"x"}, nil)
	require.Error(t, err)
}
