package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/b-macker/naab/pkg/naabengine"
)

var dumpAST bool

var parseCmd = &cobra.Command{
	Use:   "parse <file>",
	Short: "Parse a NAAb file and report syntax errors",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		content, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read file %s: %w", args[0], err)
		}
		prog, errs := naabengine.Parse(string(content))
		if len(errs) > 0 {
			for _, e := range errs {
				fmt.Fprintf(os.Stderr, "SyntaxError: %s:%s: %s\n", args[0], e.Pos, e.Message)
			}
			os.Exit(1)
		}
		if dumpAST {
			fmt.Print(prog.String())
		} else if flagVerbose {
			fmt.Printf("%s: %d top-level statement(s)\n", args[0], len(prog.Statements))
		}
		return nil
	},
}

var checkCmd = &cobra.Command{
	Use:   "check <file>",
	Short: "Check a NAAb file for syntax errors without running it",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		content, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read file %s: %w", args[0], err)
		}
		if err := naabengine.Check(string(content), args[0]); err != nil {
			fmt.Fprintf(os.Stderr, "SyntaxError: %v\n", err)
			os.Exit(1)
		}
		if flagVerbose {
			fmt.Printf("%s: OK\n", args[0])
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(checkCmd)
	parseCmd.Flags().BoolVar(&dumpAST, "dump-ast", false, "print the parsed AST")
}
