package main

import (
	"context"
	"fmt"
	"os"

	"github.com/cobolstruct/cobolstruct/domain"
	"github.com/cobolstruct/cobolstruct/internal/analyzer"
	"github.com/cobolstruct/cobolstruct/internal/reporter"
	"github.com/cobolstruct/cobolstruct/service"
	"github.com/spf13/cobra"
)

// GraphCommand renders one of the core pipeline's named intermediate graphs
// as Graphviz dot, for inspecting how a file is structured stage by stage.
type GraphCommand struct {
	stage      string
	section    string
	outputPath string
}

// NewGraphCommand creates a new graph command.
func NewGraphCommand() *GraphCommand {
	return &GraphCommand{stage: string(domain.StageStructureGraph)}
}

// CreateCobraCommand creates the cobra command for graph-stage rendering.
func (g *GraphCommand) CreateCobraCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "graph <file>",
		Short: "Render an intermediate pipeline graph as Graphviz dot",
		Long: `Renders one of the core pipeline's named intermediate graphs instead
of the final structured tree, for inspecting how a file is being structured.

Stages:
  full_stmt_graph  the raw Statement Graph Builder output, before pruning
  stmt_graph       the statement graph after unreachable-code pruning
  cobol_graph      the structure graph after linear-chain collapsing
  acyclic_graph    one section's DAG after loop recovery (use --section)
  scope_graph      one section's DAG after scope/exit annotation (use --section)

Examples:
  cobolstruct graph --stage stmt_graph PAYROLL.cbl | dot -Tpng -o stmt.png
  cobolstruct graph --stage acyclic_graph --section MAIN-PARA PAYROLL.cbl`,
		Args: cobra.ExactArgs(1),
		RunE: g.runGraph,
	}

	cmd.Flags().StringVar(&g.stage, "stage", string(domain.StageStructureGraph), "Graph stage to render")
	cmd.Flags().StringVar(&g.section, "section", "", "Section to render for per-section stages (default: first section)")
	cmd.Flags().StringVarP(&g.outputPath, "output", "o", "", "Write dot output to this file instead of stdout")

	return cmd
}

func (g *GraphCommand) runGraph(cmd *cobra.Command, args []string) error {
	path := args[0]

	fileReader := service.NewFileCollector()
	if !fileReader.IsValidCobolFile(path) {
		return fmt.Errorf("not a COBOL file: %s", path)
	}

	stageSvc := service.NewGraphStageService(fileReader)
	opts := analyzer.DefaultPipelineOptions()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	g2, err := stageSvc.RenderStage(ctx, path, domain.GraphStage(g.stage), g.section, opts)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if g.outputPath != "" {
		f, err := os.Create(g.outputPath)
		if err != nil {
			return fmt.Errorf("creating output file %s: %w", g.outputPath, err)
		}
		defer f.Close()
		out = f
	}

	return reporter.WriteGraphStageDot(out, g2, g.stage)
}

// NewGraphCmd creates and returns the graph cobra command.
func NewGraphCmd() *cobra.Command {
	return NewGraphCommand().CreateCobraCommand()
}
