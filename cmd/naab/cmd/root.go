package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Version information (set by build flags)
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var (
	flagVerbose      bool
	flagDebug        bool
	flagNoColor      bool
	flagProfile      bool
	flagExplain      bool
	flagPipe         bool
	flagSandboxLevel string
	flagTimeout      int
	flagMemoryLimit  int
	flagAllowNetwork bool
)

var rootCmd = &cobra.Command{
	Use:   "naab",
	Short: "NAAb polyglot orchestration language",
	Long: `naab is the tree-walking interpreter for the NAAb orchestration
language, whose distinguishing feature is polyglot code blocks:
lexically embedded fragments of Python, JavaScript, C++, Bash, Rust,
Go, Ruby, and C# that execute in foreign runtimes and exchange values
with the host program.`,
	Version: Version,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(`{{with .Name}}{{printf "%%s " .}}{{end}}{{printf "version %%s" .Version}}
Commit: %s
Built:  %s
`, GitCommit, BuildDate))

	pf := rootCmd.PersistentFlags()
	pf.BoolVarP(&flagVerbose, "verbose", "v", false, "verbose output")
	pf.BoolVar(&flagDebug, "debug", false, "trace execution")
	pf.BoolVar(&flagNoColor, "no-color", false, "disable colored diagnostics")
	pf.BoolVar(&flagProfile, "profile", false, "accepted for driver compatibility (profiler UI is external)")
	pf.BoolVar(&flagExplain, "explain", false, "accepted for driver compatibility")
	pf.BoolVar(&flagPipe, "pipe", false, "read the program from stdin")
	pf.StringVar(&flagSandboxLevel, "sandbox-level", "standard",
		"sandbox level (restricted|standard|elevated|unrestricted); enforcement is the sandbox layer's job")
	pf.IntVar(&flagTimeout, "timeout", 0, "per-block timeout in seconds; enforced by the sandbox layer")
	pf.IntVar(&flagMemoryLimit, "memory-limit", 0, "memory limit in MB; enforced by the sandbox layer")
	pf.BoolVar(&flagAllowNetwork, "allow-network", false, "allow network access; enforced by the sandbox layer")
}

func exitWithError(msg string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+msg+"\n", args...)
	os.Exit(1)
}

// scriptArgs filters --flags out of the positional arguments that follow
// the script path, per the documented CLI contract.
func scriptArgs(args []string) []string {
	var out []string
	for _, a := range args {
		if len(a) >= 2 && a[:2] == "--" {
			continue
		}
		out = append(out, a)
	}
	return out
}
