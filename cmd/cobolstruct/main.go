// Command cobolstruct reconstructs structured control flow (nested
// if/while/break/continue) from a legacy COBOL procedure division's gotos
// and performs.
package main

import (
	"os"

	"github.com/cobolstruct/cobolstruct/internal/version"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "cobolstruct",
	Short: "Reconstructs structured control flow from legacy COBOL",
	Long: `cobolstruct parses a COBOL procedure division's gotos and performs,
recovers its natural loops via dominator analysis, and flattens the result
into a structured tree of if/while/break/continue blocks.

Features:
  • Dominator-based natural loop recovery
  • Irreducible control flow detection with labeled-goto fallback
  • Cost-based duplicate-vs-goto join flattening
  • Text, JSON, Graphviz dot and COBOL-pseudocode output`,
	Version: version.Short(),
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output")

	rootCmd.AddCommand(NewRestructureCmd())
	rootCmd.AddCommand(NewCheckCmd())
	rootCmd.AddCommand(NewGraphCmd())
	rootCmd.AddCommand(NewInitCmd())
	rootCmd.AddCommand(NewVersionCmd())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
