package service

import (
	"context"

	"github.com/cobolstruct/cobolstruct/domain"
	"github.com/cobolstruct/cobolstruct/internal/analyzer"
	"github.com/cobolstruct/cobolstruct/internal/parser"
)

// GraphStageService renders one of the core pipeline's intermediate graphs
// instead of running it to completion, for the `graph` subcommand's
// pipeline-inspection use case. It duplicates the early portion of
// RestructureServiceImpl.RestructureFile rather than sharing code with it,
// since each requested stage needs to stop the pipeline at a different point.
type GraphStageService struct {
	fileReader domain.FileReader
}

// NewGraphStageService creates a GraphStageService.
func NewGraphStageService(fileReader domain.FileReader) *GraphStageService {
	return &GraphStageService{fileReader: fileReader}
}

// RenderStage parses path and runs the pipeline up to the requested stage,
// returning the resulting graph. StageFullStatementGraph, StageStatementGraph
// and StageStructureGraph cover the whole program in one shared graph; the
// per-section stages (StageAcyclicGraph, StageScopeGraph) recover loops
// independently per section, so section selects which one to render — when
// empty, the first section in the procedure (in source order) is used.
func (s *GraphStageService) RenderStage(ctx context.Context, path string, stage domain.GraphStage, section string, opts analyzer.PipelineOptions) (*analyzer.Graph, error) {
	source, err := s.fileReader.ReadFile(path)
	if err != nil {
		return nil, err
	}

	p := parser.New(path)
	proc, err := p.Parse(ctx, source)
	if err != nil {
		return nil, domain.NewParseError(path, err)
	}

	build, err := analyzer.BuildStatementGraph(proc, opts.Build)
	if err != nil {
		return nil, err
	}
	if stage == domain.StageFullStatementGraph {
		return build.Graph, nil
	}

	entries := make([]analyzer.NodeID, 0, len(build.SectionByID))
	for id := range build.SectionByID {
		entries = append(entries, id)
	}
	report := analyzer.PruneUnreachable(build.Graph, entries)
	pruned := report.Pruned(build.Graph)
	if stage == domain.StageStatementGraph {
		return pruned, nil
	}

	structured := analyzer.BuildStructureGraph(pruned)
	if stage == domain.StageStructureGraph {
		return structured, nil
	}

	entryID, sec, err := selectSection(proc, build.SectionByID, section)
	if err != nil {
		return nil, err
	}

	lf := analyzer.FindLoopsAndBuildDAG(structured, entryID, sec.Name)
	if stage == domain.StageAcyclicGraph {
		return lf.DAG, nil
	}
	analyzer.BuildScopeGraphs(lf.DAG, lf.Loops)
	return lf.DAG, nil
}

func selectSection(proc *analyzer.Procedure, sectionByID map[analyzer.NodeID]*analyzer.Section, name string) (analyzer.NodeID, *analyzer.Section, error) {
	entryBySectionName := make(map[string]analyzer.NodeID, len(sectionByID))
	for id, sec := range sectionByID {
		entryBySectionName[sec.Name] = id
	}

	if name != "" {
		id, ok := entryBySectionName[name]
		if !ok {
			return 0, nil, domain.NewInvalidInputError("no such section: "+name, nil)
		}
		return id, sectionByID[id], nil
	}

	for _, sec := range proc.Sections {
		if id, ok := entryBySectionName[sec.Name]; ok {
			return id, sec, nil
		}
	}
	return 0, nil, domain.NewInvalidInputError("procedure has no sections", nil)
}
