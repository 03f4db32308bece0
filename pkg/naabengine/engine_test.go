package naabengine_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/b-macker/naab/pkg/naabengine"
)

func TestParseReportsPositionedErrors(t *testing.T) {
	_, errs := naabengine.Parse(`main { let = 5 }`)
	require.NotEmpty(t, errs)
	require.Greater(t, errs[0].Pos.Line, 0)
	require.Greater(t, errs[0].Pos.Column, 0)
}

func TestCheckValidProgram(t *testing.T) {
	require.NoError(t, naabengine.Check(`main { print("ok") }`, "x.naab"))
	require.Error(t, naabengine.Check(`fn main() {}`, "x.naab"))
}

func TestRunCapturesOutput(t *testing.T) {
	var out bytes.Buffer
	e := naabengine.New(naabengine.WithOutput(&out), naabengine.WithErrorOutput(&bytes.Buffer{}))
	require.NoError(t, e.Run(`main { print(1 + 2) }`, "x.naab"))
	require.Equal(t, "3\n", out.String())
}

func TestRunFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "prog.naab")
	require.NoError(t, os.WriteFile(path, []byte(`main { print("from file") }`), 0o644))

	var out bytes.Buffer
	e := naabengine.New(naabengine.WithOutput(&out), naabengine.WithErrorOutput(&bytes.Buffer{}))
	require.NoError(t, e.RunFile(path))
	require.Equal(t, "from file\n", out.String())
}

func TestRunFileWithModuleImport(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "mathutil.naab"),
		[]byte("export fn square(n: int) -> int { return n * n }"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "prog.naab"),
		[]byte("import { square } from \"mathutil\"\nmain { print(square(6)) }"), 0o644))

	var out bytes.Buffer
	e := naabengine.New(naabengine.WithOutput(&out), naabengine.WithErrorOutput(&bytes.Buffer{}))
	require.NoError(t, e.RunFile(filepath.Join(dir, "prog.naab")))
	require.Equal(t, "36\n", out.String())
}

func TestRunFileWithUseModule(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "greeter.naab"),
		[]byte("export fn hello(name: string) -> string { return \"hi \" + name }"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "prog.naab"),
		[]byte("use \"greeter\"\nmain { print(greeter.hello(\"naab\")) }"), 0o644))

	var out bytes.Buffer
	e := naabengine.New(naabengine.WithOutput(&out), naabengine.WithErrorOutput(&bytes.Buffer{}))
	require.NoError(t, e.RunFile(filepath.Join(dir, "prog.naab")))
	require.Equal(t, "hi naab\n", out.String())
}

func TestImportCycleSurfacesAsError(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.naab"), []byte(`use "b"`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.naab"), []byte(`use "a"`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "prog.naab"),
		[]byte("use \"a\"\nmain { print(\"never\") }"), 0o644))

	var out bytes.Buffer
	e := naabengine.New(naabengine.WithOutput(&out), naabengine.WithErrorOutput(&bytes.Buffer{}))
	err := e.RunFile(filepath.Join(dir, "prog.naab"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "cycle")
	require.Empty(t, out.String())
}
