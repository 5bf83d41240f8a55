package main

import (
	"context"
	"fmt"
	"os"

	"github.com/cobolstruct/cobolstruct/app"
	"github.com/cobolstruct/cobolstruct/domain"
	"github.com/cobolstruct/cobolstruct/service"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// RestructureCommand runs the full pipeline over one or more COBOL files
// and renders the structured result.
type RestructureCommand struct {
	format                 string
	outputPath             string
	configPath             string
	recursive              bool
	includePatterns        []string
	excludePatterns        []string
	strictCrossSectionGoto bool
	debug                  bool
	fixedOverhead          int
	duplicationWeight      int
	concurrent             bool
	quiet                  bool
}

// NewRestructureCommand creates a new restructure command.
func NewRestructureCommand() *RestructureCommand {
	return &RestructureCommand{
		format:          "text",
		recursive:       true,
		includePatterns: []string{"*.cbl", "*.cob"},
		concurrent:      true,
	}
}

// CreateCobraCommand creates the cobra command for restructuring.
func (r *RestructureCommand) CreateCobraCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "restructure [files or directories...]",
		Short: "Reconstruct structured control flow from COBOL source",
		Long: `Parses one or more COBOL source files, recovers natural loops and
branch structure from their procedure division's gotos and performs, and
renders the result as nested if/while/break/continue blocks.

Examples:
  # Restructure a single program, printing pseudocode to stdout
  cobolstruct restructure PAYROLL.cbl

  # Restructure a whole directory, writing JSON to a file
  cobolstruct restructure --format json --output out.json src/

  # Reject cross-section gotos as a hard error instead of a warning
  cobolstruct restructure --strict-cross-section-goto legacy/`,
		Args: cobra.MinimumNArgs(1),
		RunE: r.runRestructure,
	}

	cmd.Flags().StringVarP(&r.format, "format", "f", "text", "Output format: text, json, cobol, dot")
	cmd.Flags().StringVarP(&r.outputPath, "output", "o", "", "Write output to this file instead of stdout")
	cmd.Flags().StringVarP(&r.configPath, "config", "c", "", "Configuration file path")
	cmd.Flags().BoolVar(&r.recursive, "recursive", true, "Recurse into subdirectories")
	cmd.Flags().StringSliceVar(&r.includePatterns, "include", nil, "Glob patterns for files to include")
	cmd.Flags().StringSliceVar(&r.excludePatterns, "exclude", nil, "Glob patterns for files to exclude")
	cmd.Flags().BoolVar(&r.strictCrossSectionGoto, "strict-cross-section-goto", false, "Treat cross-section gotos as fatal errors")
	cmd.Flags().BoolVar(&r.debug, "debug", false, "Annotate some if/while/forever nodes with a one-line structuring rationale")
	cmd.Flags().IntVar(&r.fixedOverhead, "fixed-overhead", 0, "Fixed cost of emitting a labeled goto at a join (0 = use config default)")
	cmd.Flags().IntVar(&r.duplicationWeight, "duplication-weight", 0, "Per-statement cost of duplicating a join (0 = use config default)")
	cmd.Flags().BoolVar(&r.concurrent, "concurrent", true, "Structure independent sections concurrently")
	cmd.Flags().BoolVarP(&r.quiet, "quiet", "q", false, "Suppress progress output")

	return cmd
}

func (r *RestructureCommand) runRestructure(cmd *cobra.Command, args []string) error {
	var out *os.File = os.Stdout
	if r.outputPath != "" {
		f, err := os.Create(r.outputPath)
		if err != nil {
			return fmt.Errorf("creating output file %s: %w", r.outputPath, err)
		}
		defer f.Close()
		out = f
	}

	explicit := make(map[string]bool)
	cmd.Flags().Visit(func(f *pflag.Flag) { explicit[f.Name] = true })

	req := domain.RestructureRequest{
		Paths:                  args,
		OutputFormat:           domain.OutputFormat(r.format),
		OutputWriter:           out,
		ConfigPath:             r.configPath,
		Recursive:              r.recursive,
		IncludePatterns:        r.includePatterns,
		ExcludePatterns:        r.excludePatterns,
		StrictCrossSectionGoto: r.strictCrossSectionGoto,
		Debug:                  r.debug,
		FixedOverhead:          r.fixedOverhead,
		DuplicationWeight:      r.duplicationWeight,
		Concurrent:             r.concurrent,
		ExplicitFlags:          explicit,
	}

	fileReader := service.NewFileCollector()
	restructureService := service.NewRestructureService(fileReader)
	formatter := service.NewOutputFormatter()
	configLoader := service.NewConfigurationLoader()

	var progress domain.ProgressReporter
	if !r.quiet {
		progress = service.NewProgressReporter()
	}

	useCase := app.NewRestructureUseCase(restructureService, fileReader, formatter, configLoader, progress)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	resp, err := useCase.Execute(ctx, req)
	if err != nil {
		return err
	}

	if resp.HasFatalErrors() {
		fmt.Fprintf(cmd.ErrOrStderr(), "error: %v\n", resp.CombinedError())
		os.Exit(1)
	}

	return nil
}

// NewRestructureCmd creates and returns the restructure cobra command.
func NewRestructureCmd() *cobra.Command {
	return NewRestructureCommand().CreateCobraCommand()
}
