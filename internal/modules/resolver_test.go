package modules_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"
	"github.com/stretchr/testify/require"

	"github.com/b-macker/naab/internal/diag"
	"github.com/b-macker/naab/internal/modules"
	"github.com/b-macker/naab/internal/runtime"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func newResolver(executed *[]string) *modules.Resolver {
	newEnv := func() *runtime.Environment { return runtime.NewEnvironment() }
	execute := func(m *modules.Module) error {
		*executed = append(*executed, m.Basename())
		return nil
	}
	return modules.NewResolver(newEnv, execute,
		modules.WithUserDir(""), modules.WithSystemDir(""))
}

func TestLoadExecutesLeavesFirst(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "leaf.naab", `fn one() -> int { return 1 }`)
	writeFile(t, dir, "mid.naab", `use "leaf"
fn two() -> int { return 2 }`)
	writeFile(t, dir, "top.naab", `use "mid"
use "leaf"`)

	var executed []string
	r := newResolver(&executed)
	m, err := r.Load("top", dir)
	require.NoError(t, err)
	require.Equal(t, []string{"leaf", "mid", "top"}, executed)
	require.Equal(t, modules.Executed, m.State)
}

func TestLoadIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "once.naab", `fn f() -> int { return 1 }`)

	var executed []string
	r := newResolver(&executed)
	first, err := r.Load("once", dir)
	require.NoError(t, err)
	second, err := r.Load("once", dir)
	require.NoError(t, err)
	require.Same(t, first, second)
	require.Equal(t, []string{"once"}, executed, "a module executes exactly once")
}

func TestImportCycleIsFatal(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.naab", `use "b"`)
	writeFile(t, dir, "b.naab", `use "a"`)

	var executed []string
	r := newResolver(&executed)
	_, err := r.Load("a", dir)
	require.Error(t, err)
	d, ok := err.(*diag.Diagnostic)
	require.True(t, ok)
	require.Equal(t, diag.ImportError, d.Kind)
	require.Contains(t, d.Message, "cycle")
	require.Empty(t, executed, "no module declarations applied when the graph has a cycle")
}

func TestSelfImportCycle(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "selfy.naab", `use "selfy"`)

	var executed []string
	r := newResolver(&executed)
	_, err := r.Load("selfy", dir)
	require.Error(t, err)
	require.Equal(t, diag.ImportError, err.(*diag.Diagnostic).Kind)
}

func TestParseErrorBecomesImportError(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "broken.naab", `fn { nope`)

	var executed []string
	r := newResolver(&executed)
	_, err := r.Load("broken", dir)
	require.Error(t, err)
	require.Equal(t, diag.ImportError, err.(*diag.Diagnostic).Kind)
}

func TestMissingModuleIsImportError(t *testing.T) {
	var executed []string
	r := newResolver(&executed)
	_, err := r.Load("ghost", t.TempDir())
	require.Error(t, err)
	require.Equal(t, diag.ImportError, err.(*diag.Diagnostic).Kind)
}

func TestNaabModulesSubtreeSearch(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "naab_modules/vendor/pkg/util.naab", `fn u() -> int { return 1 }`)
	writeFile(t, dir, "app.naab", `use "pkg/util"`)

	var executed []string
	r := newResolver(&executed)
	_, err := r.Load("app", dir)
	require.NoError(t, err)
	require.Equal(t, []string{"util", "app"}, executed)
}

func TestUserDirSearch(t *testing.T) {
	userDir := t.TempDir()
	writeFile(t, userDir, "shared.naab", `fn s() -> int { return 1 }`)

	var executed []string
	newEnv := func() *runtime.Environment { return runtime.NewEnvironment() }
	execute := func(m *modules.Module) error {
		executed = append(executed, m.Basename())
		return nil
	}
	r := modules.NewResolver(newEnv, execute,
		modules.WithUserDir(userDir), modules.WithSystemDir(""))

	_, err := r.Load("shared", t.TempDir())
	require.NoError(t, err)
	require.Equal(t, []string{"shared"}, executed)
}

func TestCanonicalizationDeduplicatesAliases(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "dup.naab", `fn f() -> int { return 1 }`)
	writeFile(t, dir, "x.naab", `use "dup"
use "./dup"`)

	var executed []string
	r := newResolver(&executed)
	_, err := r.Load("x", dir)
	require.NoError(t, err)
	require.Equal(t, []string{"dup", "x"}, executed)
}

func TestDependencyReportSnapshot(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "leaf.naab", `fn one() -> int { return 1 }`)
	writeFile(t, dir, "mid.naab", `use "leaf"`)
	writeFile(t, dir, "top.naab", `use "mid"
use "leaf"`)

	var executed []string
	r := newResolver(&executed)
	m, err := r.Load("top", dir)
	require.NoError(t, err)
	snaps.MatchSnapshot(t, modules.DependencyReport(m))
}
