// Package runtime implements the NAAb value model and the
// lexically scoped Environment it evaluates against. Everything
// else the evaluator needs — the struct registry, the module registry,
// the diagnostic subsystem, the cycle collector, and the polyglot
// dispatcher — lives in its own sibling package so that internal/runtime
// stays a small, dependency-free core.
package runtime
