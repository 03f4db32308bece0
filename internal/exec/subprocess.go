package exec

import (
	"bytes"
	"fmt"
	"os"
	osexec "os/exec"
	"strconv"
	"strings"
	"sync"

	"github.com/b-macker/naab/internal/runtime"
)

// CommandBuilder produces the command line used to run a source file
// written to disk with the given extension. The reference implementations
// for all eight target languages are built from this one shape so the
// rest of the package (buffering, output capture, return-value reparsing)
// is written once.
type CommandBuilder func(file string) *osexec.Cmd

// SubprocessExecutor is a reference Executor that writes the
// (already bound-variable-injected) foreign source to a temp file and
// shells out to an interpreter or compiler. It is intentionally the
// simplest thing that satisfies the contract: production deployments are
// expected to swap in a persistent-process or embedded-runtime
// implementation per language (see doc.go for the Go-specific note).
type SubprocessExecutor struct {
	language string
	ext      string
	kind     Kind
	build    CommandBuilder

	mu       sync.Mutex
	captured bytes.Buffer
}

// NewSubprocessExecutor constructs a reference executor for language,
// writing source to a temp file with extension ext and invoking build to
// produce the command that runs it.
func NewSubprocessExecutor(language, ext string, kind Kind, build CommandBuilder) *SubprocessExecutor {
	return &SubprocessExecutor{language: language, ext: ext, kind: kind, build: build}
}

func (e *SubprocessExecutor) ExecutorKind() Kind { return e.kind }

func (e *SubprocessExecutor) SupportedLanguages() []string { return []string{e.language} }

// Execute runs code for side effects, capturing everything it writes to
// stdout for a later GetCapturedOutput call.
func (e *SubprocessExecutor) Execute(code string) error {
	out, err := e.run(code)
	if err != nil {
		return err
	}
	e.capture(out)
	return nil
}

// ExecuteWithReturn runs code already wrapped by the dispatcher so that
// its trailing expression was printed behind ReturnMarker, then splits
// that marker line back out of stdout: the payload is reparsed as int,
// float, or string, and only the remaining (genuine user) output lands
// in the capture buffer. Code that never printed a marker line returns
// Null.
func (e *SubprocessExecutor) ExecuteWithReturn(code string) (*runtime.Value, error) {
	out, err := e.run(code)
	if err != nil {
		return nil, err
	}
	rest, payload, found := splitReturnMarker(out)
	e.capture(rest)
	if !found {
		return runtime.Null(), nil
	}
	return reparseScalar(payload), nil
}

// CallFunction is unimplemented by the subprocess reference executor: a
// member-call against a resumable block requires a persistent process
// ("shared" executors), which this simple per-call shim does
// not provide.
func (e *SubprocessExecutor) CallFunction(path string, args []*runtime.Value) (*runtime.Value, error) {
	return nil, fmt.Errorf("%s: member-call protocol requires a persistent executor, not the subprocess reference implementation", e.language)
}

func (e *SubprocessExecutor) GetCapturedOutput() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := e.captured.String()
	e.captured.Reset()
	return out
}

func (e *SubprocessExecutor) capture(out string) {
	if out == "" {
		return
	}
	e.mu.Lock()
	e.captured.WriteString(out)
	e.mu.Unlock()
}

func (e *SubprocessExecutor) run(code string) (string, error) {
	f, err := os.CreateTemp("", "naab-block-*"+e.ext)
	if err != nil {
		return "", fmt.Errorf("%s: %w", e.language, err)
	}
	defer os.Remove(f.Name())
	if _, err := f.WriteString(code); err != nil {
		f.Close()
		return "", fmt.Errorf("%s: %w", e.language, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("%s: %w", e.language, err)
	}

	cmd := e.build(f.Name())
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("%s: %w: %s", e.language, err, out.String())
	}
	return out.String(), nil
}

// splitReturnMarker removes the last ReturnMarker-prefixed line from out,
// returning the remaining output and the marker's payload.
func splitReturnMarker(out string) (rest, payload string, found bool) {
	lines := strings.Split(out, "\n")
	markerAt := -1
	for i := len(lines) - 1; i >= 0; i-- {
		if strings.HasPrefix(strings.TrimSpace(lines[i]), ReturnMarker) {
			markerAt = i
			break
		}
	}
	if markerAt < 0 {
		return out, "", false
	}
	payload = strings.TrimPrefix(strings.TrimSpace(lines[markerAt]), ReturnMarker)
	rest = strings.Join(append(lines[:markerAt:markerAt], lines[markerAt+1:]...), "\n")
	return rest, payload, true
}

// reparseScalar parses a marker payload as int, then float, falling back
// to a raw string.
func reparseScalar(s string) *runtime.Value {
	s = strings.TrimSpace(s)
	if s == "" {
		return runtime.Null()
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return runtime.Int(i)
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return runtime.Float(f)
	}
	return runtime.String(s)
}
