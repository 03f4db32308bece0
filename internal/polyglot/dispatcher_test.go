package polyglot

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/b-macker/naab/internal/exec"
	"github.com/b-macker/naab/internal/runtime"
	"github.com/stretchr/testify/require"
)

// fakeExecutor is a test double recording what it was asked to run, so the
// dispatcher's prelude-building and output-flushing can be checked without
// spawning a real process.
type fakeExecutor struct {
	kind        exec.Kind
	lastCode    string
	returnValue *runtime.Value
	output      string
	callPath    string
	callArgs    []*runtime.Value
	err         error
}

func (f *fakeExecutor) Execute(code string) error {
	f.lastCode = code
	return f.err
}

func (f *fakeExecutor) ExecuteWithReturn(code string) (*runtime.Value, error) {
	f.lastCode = code
	if f.err != nil {
		return nil, f.err
	}
	return f.returnValue, nil
}

func (f *fakeExecutor) CallFunction(path string, args []*runtime.Value) (*runtime.Value, error) {
	f.callPath = path
	f.callArgs = args
	if f.err != nil {
		return nil, f.err
	}
	return f.returnValue, nil
}

func (f *fakeExecutor) GetCapturedOutput() string {
	out := f.output
	f.output = ""
	return out
}

func (f *fakeExecutor) SupportedLanguages() []string { return []string{"fake"} }

func (f *fakeExecutor) ExecutorKind() exec.Kind { return f.kind }

func newFakeRegistry(f *fakeExecutor) map[string]exec.Executor {
	return map[string]exec.Executor{"fake": f}
}

func TestExecuteInlinePrependsBoundVariablePrelude(t *testing.T) {
	f := &fakeExecutor{returnValue: runtime.Int(1)}
	var buf bytes.Buffer
	d := New(newFakeRegistry(f), &buf)

	lookup := func(name string) (*runtime.Value, bool) {
		if name == "x" {
			return runtime.Int(7), true
		}
		return nil, false
	}
	_, err := d.ExecuteInline("fake", "print(x)", []string{"x"}, lookup)
	require.NoError(t, err)
	require.True(t, strings.Contains(f.lastCode, "x = 7"))
	require.True(t, strings.HasSuffix(f.lastCode, "print(x)"))
}

func TestExecuteInlineErrorsWhenBoundVariableIsUndefined(t *testing.T) {
	f := &fakeExecutor{}
	d := New(newFakeRegistry(f), nil)
	lookup := func(name string) (*runtime.Value, bool) { return nil, false }
	_, err := d.ExecuteInline("fake", "x", []string{"missing"}, lookup)
	require.Error(t, err)
}

func TestExecuteInlineFlushesCapturedOutputToHostWriter(t *testing.T) {
	f := &fakeExecutor{returnValue: runtime.Null(), output: "hello\n"}
	var buf bytes.Buffer
	d := New(newFakeRegistry(f), &buf)
	_, err := d.ExecuteInline("fake", "noop", nil, nil)
	require.NoError(t, err)
	require.Equal(t, "hello\n", buf.String())
}

func TestExecuteForEffectPropagatesExecutorError(t *testing.T) {
	f := &fakeExecutor{err: errors.New("executor exploded")}
	d := New(newFakeRegistry(f), nil)
	err := d.ExecuteForEffect("fake", "noop", nil, nil)
	require.Error(t, err)
}

func TestCallMemberRoutesPathAndArgsToExecutor(t *testing.T) {
	f := &fakeExecutor{returnValue: runtime.String("ok")}
	d := New(newFakeRegistry(f), nil)
	v, err := d.CallMember("fake", "obj.method", []*runtime.Value{runtime.Int(3)})
	require.NoError(t, err)
	require.Equal(t, "obj.method", f.callPath)
	require.Equal(t, int64(3), f.callArgs[0].I)
	require.Equal(t, "ok", v.Str)
}

func TestExecutorForUnknownLanguageReturnsError(t *testing.T) {
	d := New(map[string]exec.Executor{}, nil)
	_, err := d.ExecuteInline("cobol", "x", nil, nil)
	require.Error(t, err)
}

func TestSharedExecutorsAreSerializedByDispatcher(t *testing.T) {
	f := &fakeExecutor{kind: exec.Shared, returnValue: runtime.Null()}
	d := New(newFakeRegistry(f), nil)
	_, err1 := d.ExecuteInline("fake", "a", nil, nil)
	_, err2 := d.ExecuteInline("fake", "b", nil, nil)
	require.NoError(t, err1)
	require.NoError(t, err2)
}

func TestExecuteInlineWrapsTrailingExpressionForKnownLanguage(t *testing.T) {
	f := &fakeExecutor{returnValue: runtime.Int(42)}
	d := New(map[string]exec.Executor{"python": f}, nil)

	lookup := func(name string) (*runtime.Value, bool) { return runtime.Int(21), name == "x" }
	_, err := d.ExecuteInline("python", "x * 2", []string{"x"}, lookup)
	require.NoError(t, err)
	require.Contains(t, f.lastCode, "x = 21")
	require.Contains(t, f.lastCode, exec.ReturnMarker,
		"the trailing expression must be rewritten into a marker print")
	require.True(t, strings.Contains(f.lastCode, "print(\""+exec.ReturnMarker+"\" + str(x * 2))"))
}

func TestExecuteForEffectDoesNotWrapAPrint(t *testing.T) {
	f := &fakeExecutor{}
	d := New(map[string]exec.Executor{"python": f}, nil)
	err := d.ExecuteForEffect("python", "print(1)", nil, nil)
	require.NoError(t, err)
	require.NotContains(t, f.lastCode, exec.ReturnMarker)
}
