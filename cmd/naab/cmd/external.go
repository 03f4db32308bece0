package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// The fmt, blocks, api, init, and manifest commands belong to external
// collaborators (the formatter, block-registry database, API server, and
// governance engine); the core accepts the command names so scripts and
// docs stay stable, but refers the user to the right tool.
func externalCmd(name, owner string) *cobra.Command {
	return &cobra.Command{
		Use:   name,
		Short: fmt.Sprintf("(external) handled by the %s", owner),
		RunE: func(_ *cobra.Command, _ []string) error {
			fmt.Fprintf(os.Stderr, "naab %s is provided by the %s, not by the core interpreter\n", name, owner)
			os.Exit(2)
			return nil
		},
	}
}

func init() {
	rootCmd.AddCommand(externalCmd("fmt", "formatter tool"))
	rootCmd.AddCommand(externalCmd("blocks", "block-registry driver"))
	rootCmd.AddCommand(externalCmd("api", "API server driver"))
	rootCmd.AddCommand(externalCmd("init", "project scaffolding driver"))
	rootCmd.AddCommand(externalCmd("manifest", "governance policy engine"))
}
