// Package exec defines the Executor contract: the abstract interface
// internal/polyglot drives to run foreign source on behalf of a polyglot
// block, plus a small set of reference implementations good enough to
// exercise the dispatcher end to end.
//
// How a concrete language runtime is driven is opaque to the core; this
// package supplies the contract every Executor must satisfy and a
// stdlib-only subprocess shim as the in-repo reference implementation — a
// deliberately narrow conversion surface between host values and each
// foreign representation.
package exec

import "github.com/b-macker/naab/internal/runtime"

// ReturnMarker prefixes the stdout line that carries a block's return
// value. The dispatcher's executeWithReturn wrapping rewrites a block's
// trailing bare expression into a print of this marker plus the
// expression's value; executors split the marker line back out of the
// captured stream, so the value never mixes with the block's own output.
const ReturnMarker = "__naab_return__:"

// Kind distinguishes the two executor lifetimes the dispatcher chooses
// between.
type Kind int

const (
	// Shared is a single process-wide instance used for languages whose
	// runtime keeps incremental global state (e.g. Python, JavaScript).
	Shared Kind = iota
	// Owned is a fresh instance per block, used for compiled-per-block
	// languages (currently C++).
	Owned
)

// Executor is the contract every foreign-language backend implements
//. The dispatcher may invoke multiple executors
// concurrently when running a parallel block group; a Shared
// executor must serialize its own internal state.
type Executor interface {
	// Execute runs code for side effects only; any stdout it produces is
	// retrieved afterward via GetCapturedOutput.
	Execute(code string) error

	// ExecuteWithReturn runs code and delivers the value of its trailing
	// expression.
	ExecuteWithReturn(code string) (*runtime.Value, error)

	// CallFunction issues a member-call against a previously bound block
	// value: path is the dotted
	// accessor chain (BlockValue.member_path), args are already marshalled
	// runtime Values.
	CallFunction(path string, args []*runtime.Value) (*runtime.Value, error)

	// GetCapturedOutput returns everything written to stdout by the most
	// recent Execute/ExecuteWithReturn call and clears the buffer.
	GetCapturedOutput() string

	// SupportedLanguages reports the polyglot-block language tags this
	// executor answers to, for registry discovery.
	SupportedLanguages() []string
}

// KindOf reports the lifetime an Executor should be driven with. Executors
// that don't separately implement this are treated as Owned (the safer
// default: no shared state to corrupt across calls).
type KindReporter interface {
	ExecutorKind() Kind
}

func KindOf(e Executor) Kind {
	if kr, ok := e.(KindReporter); ok {
		return kr.ExecutorKind()
	}
	return Owned
}
