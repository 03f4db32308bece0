package exec

import osexec "os/exec"

// DefaultRegistry returns the reference Executor for each of the eight
// polyglot languages names, keyed by the `<<lang` tag. Every
// executor here is the simple subprocess shim (SubprocessExecutor); a
// production deployment would swap individual entries for a
// persistent-process or embedded-runtime implementation without the
// dispatcher (internal/polyglot) needing to change, since it only ever
// depends on the Executor interface.
func DefaultRegistry() map[string]Executor {
	return map[string]Executor{
		"python": NewSubprocessExecutor("python", ".py", Shared, func(f string) *osexec.Cmd {
			return osexec.Command("python3", f)
		}),
		"javascript": NewSubprocessExecutor("javascript", ".js", Shared, func(f string) *osexec.Cmd {
			return osexec.Command("node", f)
		}),
		"js": NewSubprocessExecutor("js", ".js", Shared, func(f string) *osexec.Cmd {
			return osexec.Command("node", f)
		}),
		"ruby": NewSubprocessExecutor("ruby", ".rb", Shared, func(f string) *osexec.Cmd {
			return osexec.Command("ruby", f)
		}),
		"bash": NewSubprocessExecutor("bash", ".sh", Shared, func(f string) *osexec.Cmd {
			return osexec.Command("bash", f)
		}),
		"go": NewSubprocessExecutor("go", ".go", Owned, func(f string) *osexec.Cmd {
			// An embedded interpreter would avoid forking a separate
			// toolchain process per block; see doc.go for why the core
			// does not take that dependency directly.
			return osexec.Command("go", "run", f)
		}),
		"rust": NewSubprocessExecutor("rust", ".rs", Owned, func(f string) *osexec.Cmd {
			return osexec.Command("rust-script", f)
		}),
		"cpp": NewSubprocessExecutor("cpp", ".cpp", Owned, func(f string) *osexec.Cmd {
			return osexec.Command("cling", "--nologo", f)
		}),
		"csharp": NewSubprocessExecutor("csharp", ".csx", Owned, func(f string) *osexec.Cmd {
			return osexec.Command("dotnet-script", f)
		}),
	}
}
