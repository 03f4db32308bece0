package polyglot

import (
	"testing"

	"github.com/b-macker/naab/internal/runtime"
	"github.com/stretchr/testify/require"
)

func TestNormalizeIndentStripsCommonLeadingWhitespaceExceptFirstLine(t *testing.T) {
	code := "x = 1\n    y = 2\n    z = 3"
	got := NormalizeIndent(code)
	require.Equal(t, "x = 1\ny = 2\nz = 3", got)
}

func TestNormalizeIndentLeavesUnindentedCodeAlone(t *testing.T) {
	code := "a\nb\nc"
	require.Equal(t, code, NormalizeIndent(code))
}

func TestSerializeBoundVarPython(t *testing.T) {
	line, err := serializeBoundVar("python", "x", runtime.Int(21))
	require.NoError(t, err)
	require.Equal(t, "x = 21", line)
}

func TestSerializeBoundVarJavaScriptUsesConstDeclaration(t *testing.T) {
	line, err := serializeBoundVar("javascript", "name", runtime.String("ada"))
	require.NoError(t, err)
	require.Equal(t, `const name = "ada";`, line)
}

func TestSerializeBoundVarBashUsesEnvStyleAssignment(t *testing.T) {
	line, err := serializeBoundVar("bash", "msg", runtime.String("hi"))
	require.NoError(t, err)
	require.Equal(t, `msg="hi"`, line)
}

func TestLiteralForListIsJSONShaped(t *testing.T) {
	list := runtime.List([]*runtime.Value{runtime.Int(1), runtime.Int(2)})
	lit, err := literalFor("python", list)
	require.NoError(t, err)
	require.Equal(t, "[1, 2]", lit)
}

func TestLiteralForStructEmitsFieldKeyedObject(t *testing.T) {
	fields := runtime.NewOrderedDict()
	fields.Set("x", runtime.Int(1))
	fields.Set("y", runtime.Int(2))
	sv := &runtime.StructValue{TypeName: "Point", Fields: fields}
	lit, err := literalFor("javascript", runtime.Struct(sv))
	require.NoError(t, err)
	require.Equal(t, `{"x": 1, "y": 2}`, lit)
}

func TestNullLiteralVariesByTarget(t *testing.T) {
	require.Equal(t, "None", nullLiteral("python"))
	require.Equal(t, "nil", nullLiteral("ruby"))
	require.Equal(t, "null", nullLiteral("javascript"))
	require.Equal(t, "nullptr", nullLiteral("cpp"))
}

func TestBoolLiteralUsesPythonCapitalization(t *testing.T) {
	require.Equal(t, "True", boolLiteral("python", true))
	require.Equal(t, "true", boolLiteral("rust", true))
}
