package evaluator_test

import (
	"bytes"
	"errors"
	osexec "os/exec"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/b-macker/naab/internal/diag"
	"github.com/b-macker/naab/internal/evaluator"
	"github.com/b-macker/naab/internal/exec"
	"github.com/b-macker/naab/internal/lexer"
	"github.com/b-macker/naab/internal/parser"
	"github.com/b-macker/naab/internal/runtime"
)

// scriptExecutor is an in-process test double that behaves like a real
// script interpreter run: assignments bind variables, print(...) writes
// to stdout, and a bare trailing expression evaluates silently — so a
// block only yields a value if the dispatcher rewrote its trailing
// expression into the marker print, exactly as python3 would behave.
type scriptExecutor struct {
	mu       sync.Mutex
	captured strings.Builder
	executed []string
	fail     bool
}

func (s *scriptExecutor) ExecutorKind() exec.Kind      { return exec.Shared }
func (s *scriptExecutor) SupportedLanguages() []string { return []string{"python"} }

func (s *scriptExecutor) GetCapturedOutput() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.captured.String()
	s.captured.Reset()
	return out
}

func (s *scriptExecutor) Execute(code string) error {
	_, _, err := s.interpret(code)
	return err
}

func (s *scriptExecutor) ExecuteWithReturn(code string) (*runtime.Value, error) {
	stdout, marker, err := s.interpret(code)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.captured.WriteString(stdout)
	s.mu.Unlock()
	if marker == nil {
		return runtime.Null(), nil
	}
	return marker, nil
}

// interpret runs the tiny script dialect: `name = <int>` assignments,
// `print(<expr>)` statements, and the dispatcher's marker print
// `print("<marker>" + str(<expr>))`. Anything else — in particular a
// bare expression — produces no output, like a real script run.
func (s *scriptExecutor) interpret(code string) (stdout string, marker *runtime.Value, err error) {
	s.mu.Lock()
	s.executed = append(s.executed, code)
	fail := s.fail
	s.mu.Unlock()
	if fail {
		return "", nil, errors.New("script runtime exploded")
	}

	vars := map[string]int64{}
	markerPrefix := `print("` + exec.ReturnMarker + `" + str(`
	var out strings.Builder
	for _, line := range strings.Split(code, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case line == "":
		case strings.HasPrefix(line, markerPrefix) && strings.HasSuffix(line, "))"):
			expr := line[len(markerPrefix) : len(line)-2]
			n, ok := evalIntExpr(expr, vars)
			if !ok {
				return "", nil, errors.New("script cannot evaluate " + expr)
			}
			marker = runtime.Int(n)
		case strings.HasPrefix(line, "print(") && strings.HasSuffix(line, ")"):
			expr := line[len("print(") : len(line)-1]
			if n, ok := evalIntExpr(expr, vars); ok {
				out.WriteString(strconv.FormatInt(n, 10) + "\n")
			} else {
				out.WriteString(strings.Trim(expr, `"`) + "\n")
			}
		default:
			if name, val, ok := strings.Cut(line, " = "); ok && !strings.Contains(name, " ") {
				if n, perr := strconv.ParseInt(val, 10, 64); perr == nil {
					vars[name] = n
				}
			}
			// A bare expression evaluates and is discarded: no stdout.
		}
	}
	return out.String(), marker, nil
}

// evalIntExpr handles `<int>`, `<name>`, and `<a> * <b>` operands.
func evalIntExpr(expr string, vars map[string]int64) (int64, bool) {
	operand := func(tok string) (int64, bool) {
		tok = strings.TrimSpace(tok)
		if n, err := strconv.ParseInt(tok, 10, 64); err == nil {
			return n, true
		}
		n, ok := vars[tok]
		return n, ok
	}
	if lhs, rhs, ok := strings.Cut(expr, " * "); ok {
		l, lok := operand(lhs)
		r, rok := operand(rhs)
		if lok && rok {
			return l * r, true
		}
		return 0, false
	}
	return operand(expr)
}

func (s *scriptExecutor) CallFunction(path string, args []*runtime.Value) (*runtime.Value, error) {
	return runtime.String(path), nil
}

func runWithScript(t *testing.T, source string, stub *scriptExecutor) (string, error) {
	t.Helper()
	p := parser.New(lexer.New(source))
	prog := p.ParseProgram()
	require.Empty(t, p.Errors())

	var out bytes.Buffer
	i := evaluator.New(
		evaluator.WithOut(&out),
		evaluator.WithErrOut(&bytes.Buffer{}),
		evaluator.WithExecutors(map[string]exec.Executor{"python": stub}),
	)
	err := i.Run(prog, "test.naab", source)
	return out.String(), err
}

func TestPolyglotRoundTrip(t *testing.T) {
	stub := &scriptExecutor{}
	out, err := runWithScript(t, `
main {
	let x = 21
	let y = <<python[x] x * 2 >>
	print(y)
}`, stub)
	require.NoError(t, err)
	require.Equal(t, "42\n", out)

	// The bound variable was injected as a prelude declaration and the
	// trailing expression was rewritten into the marker print — without
	// that rewrite the script would run silently and y would be null.
	require.Len(t, stub.executed, 1)
	require.Contains(t, stub.executed[0], "x = 21")
	require.Contains(t, stub.executed[0], exec.ReturnMarker)
}

func TestPolyglotBlockOutputFlushesWithoutMarkerLine(t *testing.T) {
	// A print inside the block reaches host stdout exactly once; the
	// marker line stays on the return channel.
	stub := &scriptExecutor{}
	out, err := runWithScript(t, `
main {
	let y = <<python print(7)
	3 >>
	print(y)
}`, stub)
	require.NoError(t, err)
	require.Equal(t, "7\n3\n", out)
}

func TestPolyglotFailureIsBlockError(t *testing.T) {
	stub := &scriptExecutor{fail: true}
	_, err := runWithScript(t, `
main {
	let y = <<python 1 >>
	print(y)
}`, stub)
	require.Error(t, err)
	d := err.(*diag.Diagnostic)
	require.Equal(t, diag.BlockError, d.Kind)
}

func TestPolyglotUnknownBoundVariable(t *testing.T) {
	stub := &scriptExecutor{}
	_, err := runWithScript(t, `
main {
	let y = <<python[missing] missing * 2 >>
	print(y)
}`, stub)
	require.Error(t, err)
	require.Contains(t, err.Error(), "missing")
}

func TestParallelBlocksIndependentGroupRuns(t *testing.T) {
	stub := &scriptExecutor{}
	source := `
main {
	let a = 1
	let b = 2
	let x = <<python[a] a * 10 >>
	let y = <<python[b] b * 10 >>
	print(x + y)
}`
	p := parser.New(lexer.New(source))
	prog := p.ParseProgram()
	require.Empty(t, p.Errors())

	var out bytes.Buffer
	i := evaluator.New(
		evaluator.WithOut(&out),
		evaluator.WithErrOut(&bytes.Buffer{}),
		evaluator.WithExecutors(map[string]exec.Executor{"python": stub}),
		evaluator.WithParallelBlocks(true),
	)
	require.NoError(t, i.Run(prog, "test.naab", source))
	require.Equal(t, "30\n", out.String())
	require.Len(t, stub.executed, 2)
}

func TestParallelBlocksDependentStaySequential(t *testing.T) {
	stub := &scriptExecutor{}
	source := `
main {
	let a = 3
	let x = <<python[a] a * 2 >>
	let y = <<python[x] x * 10 >>
	print(y)
}`
	p := parser.New(lexer.New(source))
	prog := p.ParseProgram()
	require.Empty(t, p.Errors())

	var out bytes.Buffer
	i := evaluator.New(
		evaluator.WithOut(&out),
		evaluator.WithErrOut(&bytes.Buffer{}),
		evaluator.WithExecutors(map[string]exec.Executor{"python": stub}),
		evaluator.WithParallelBlocks(true),
	)
	require.NoError(t, i.Run(prog, "test.naab", source))
	// x = 6 computed first, then y reads it: 60.
	require.Equal(t, "60\n", out.String())
}

// TestPolyglotRoundTripWithRealPython drives the production default path
// end to end: DefaultRegistry's python entry shells out to python3, so
// the dispatcher's wrapping, the subprocess executor's marker split, and
// the host's reparse are all exercised against a real interpreter.
func TestPolyglotRoundTripWithRealPython(t *testing.T) {
	if _, err := osexec.LookPath("python3"); err != nil {
		t.Skip("python3 not installed")
	}
	source := `
main {
	let x = 21
	let y = <<python[x] x * 2 >>
	print(y)
}`
	p := parser.New(lexer.New(source))
	prog := p.ParseProgram()
	require.Empty(t, p.Errors())

	var out bytes.Buffer
	i := evaluator.New(
		evaluator.WithOut(&out),
		evaluator.WithErrOut(&bytes.Buffer{}),
		evaluator.WithExecutors(exec.DefaultRegistry()),
	)
	require.NoError(t, i.Run(prog, "test.naab", source))
	require.Equal(t, "42\n", out.String())
}
