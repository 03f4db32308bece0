// See exec.go for the Executor contract and registry.go for the default,
// per-language reference implementations.
//
// On the Go executor specifically: an embedded Go interpreter would be
// the natural production choice for driving `<<go` blocks without
// forking a separate `go run` process per invocation. None is imported
// here on purpose: how a language runtime is actually driven is opaque
// to the core, and baking one concrete embedding strategy into this
// package would leak that implementation choice into a component that
// must stay pluggable behind Executor. DefaultRegistry's "go" entry is a
// stdlib-only `go run` shim for exactly that reason.
package exec
