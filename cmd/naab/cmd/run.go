package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/b-macker/naab/internal/diag"
	"github.com/b-macker/naab/internal/evaluator"
	"github.com/b-macker/naab/pkg/naabengine"
)

var (
	showModules    bool
	parallelBlocks bool
)

var runCmd = &cobra.Command{
	Use:   "run <file> [args...]",
	Short: "Run a NAAb program",
	Long: `Execute a NAAb program from a file (or stdin with --pipe).

Examples:
  # Run a script file
  naab run script.naab

  # Pass arguments through to env.get_args()
  naab run script.naab one two three

  # Show the resolved module dependency graph after the run
  naab run --show-modules script.naab`,
	Args: cobra.ArbitraryArgs,
	RunE: runScript,
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().BoolVar(&showModules, "show-modules", false, "print the module dependency DAG in topological order")
	runCmd.Flags().BoolVar(&parallelBlocks, "parallel-blocks", false, "run independent top-level polyglot blocks concurrently")
}

func runScript(_ *cobra.Command, args []string) error {
	source, filename, rest, err := readProgram(args)
	if err != nil {
		return err
	}

	engine := naabengine.New(
		naabengine.WithOutput(os.Stdout),
		naabengine.WithErrorOutput(os.Stderr),
		naabengine.WithArgs(scriptArgs(rest)),
		naabengine.WithTracing(flagDebug),
		naabengine.WithParallelBlocks(parallelBlocks),
	)
	interp := engine.Interp()

	if err := engine.Run(source, filename); err != nil {
		printDiagnostic(err)
		os.Exit(1)
	}

	if showModules {
		printModuleReport(interp)
	}
	return nil
}

func readProgram(args []string) (source, filename string, rest []string, err error) {
	if flagPipe {
		data, rerr := io.ReadAll(os.Stdin)
		if rerr != nil {
			return "", "", nil, fmt.Errorf("failed to read stdin: %w", rerr)
		}
		return string(data), "<stdin>", args, nil
	}
	if len(args) == 0 {
		return "", "", nil, fmt.Errorf("provide a file path, or use --pipe to read from stdin")
	}
	content, rerr := os.ReadFile(args[0])
	if rerr != nil {
		return "", "", nil, fmt.Errorf("failed to read file %s: %w", args[0], rerr)
	}
	return string(content), args[0], args[1:], nil
}

// printDiagnostic renders a run failure as "Kind: message", stack
// frames, and a source snippet when available.
func printDiagnostic(err error) {
	if d, ok := err.(*diag.Diagnostic); ok {
		fmt.Fprintln(os.Stderr, d.Format())
		return
	}
	fmt.Fprintln(os.Stderr, err)
}

func printModuleReport(interp *evaluator.Interp) {
	mods := interp.Resolver().Modules()
	if len(mods) == 0 {
		fmt.Fprintln(os.Stderr, "no modules loaded")
		return
	}
	fmt.Fprintln(os.Stderr, "modules (leaves first):")
	for _, m := range mods {
		fmt.Fprintf(os.Stderr, "  %s [%s] %s\n", m.Basename(), m.State, m.Path)
	}
}
