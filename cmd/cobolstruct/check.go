package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/cobolstruct/cobolstruct/app"
	"github.com/cobolstruct/cobolstruct/domain"
	"github.com/cobolstruct/cobolstruct/service"
	"github.com/spf13/cobra"
)

// CheckCommand runs restructuring with CI-friendly defaults and an exit-code
// contract: 0 when clean, 1 when diagnostics were raised, 2 when analysis
// itself failed outright.
type CheckCommand struct {
	configPath string
	quiet      bool
	strict     bool
}

// NewCheckCommand creates a new check command.
func NewCheckCommand() *CheckCommand {
	return &CheckCommand{}
}

// CreateCobraCommand creates the cobra command for the CI check.
func (c *CheckCommand) CreateCobraCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [files or directories...]",
		Short: "Restructure and report diagnostics with a CI-friendly exit code",
		Long: `Runs the restructuring pipeline and reports whether the input raised
any diagnostics (unresolved labels, unsupported perform ranges, irreducible
control flow, cross-section gotos), without writing the structured tree.

Exit codes:
  0: restructuring completed with no diagnostics
  1: restructuring completed but raised diagnostics (warning or info)
  2: restructuring failed outright (unresolved label, unsupported perform
     range, missing file, etc.)

Examples:
  # Check current directory (typical CI usage)
  cobolstruct check .

  # Treat cross-section gotos as fatal
  cobolstruct check --strict-cross-section-goto src/`,
		Args: cobra.ArbitraryArgs,
		RunE: c.runCheck,
	}

	cmd.Flags().StringVarP(&c.configPath, "config", "c", "", "Configuration file path")
	cmd.Flags().BoolVarP(&c.quiet, "quiet", "q", false, "Suppress output unless issues found")
	cmd.Flags().BoolVar(&c.strict, "strict-cross-section-goto", false, "Treat cross-section gotos as fatal errors")

	return cmd
}

func (c *CheckCommand) runCheck(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		args = []string{"."}
	}

	if !c.quiet {
		fmt.Fprintf(cmd.ErrOrStderr(), "restructuring %v...\n", args)
	}

	req := domain.RestructureRequest{
		Paths:                  args,
		OutputFormat:           domain.OutputFormatText,
		OutputWriter:           io.Discard,
		ConfigPath:             c.configPath,
		Recursive:              true,
		IncludePatterns:        []string{"*.cbl", "*.cob"},
		StrictCrossSectionGoto: c.strict,
		Concurrent:             true,
	}

	fileReader := service.NewFileCollector()
	restructureService := service.NewRestructureService(fileReader)
	formatter := service.NewOutputFormatter()
	configLoader := service.NewConfigurationLoader()

	useCase := app.NewRestructureUseCase(restructureService, fileReader, formatter, configLoader, nil)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	resp, err := useCase.Execute(ctx, req)
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "analysis failed: %v\n", err)
		os.Exit(2)
	}

	if resp.HasFatalErrors() {
		fmt.Fprintf(cmd.ErrOrStderr(), "error: %v\n", resp.CombinedError())
		os.Exit(2)
	}

	issueCount := 0
	for _, fr := range resp.Results {
		if fr.Program == nil {
			continue
		}
		for _, d := range fr.Program.Diagnostics {
			issueCount++
			if !c.quiet {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s: %s\n", fr.Path, d.Kind, d.Message)
			}
		}
	}

	if issueCount > 0 {
		fmt.Fprintf(cmd.ErrOrStderr(), "found %d diagnostic(s)\n", issueCount)
		os.Exit(1)
	}

	if !c.quiet {
		fmt.Fprintln(cmd.ErrOrStderr(), "no diagnostics found")
	}
	return nil
}

// NewCheckCmd creates and returns the check cobra command.
func NewCheckCmd() *cobra.Command {
	return NewCheckCommand().CreateCobraCommand()
}
