package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/cobolstruct/cobolstruct/domain"
	"github.com/cobolstruct/cobolstruct/internal/analyzer"
	"github.com/cobolstruct/cobolstruct/internal/parser"
)

// RestructureServiceImpl implements domain.RestructureService by running the
// parser and the core pipeline against each collected file. It carries a
// FileReader so it can read source bytes independently of whoever collected
// the file list.
type RestructureServiceImpl struct {
	fileReader domain.FileReader
}

// NewRestructureService creates a RestructureServiceImpl.
func NewRestructureService(fileReader domain.FileReader) *RestructureServiceImpl {
	return &RestructureServiceImpl{fileReader: fileReader}
}

// Restructure runs the pipeline over every file in the request, collecting
// per-file results rather than aborting the batch on the first failure.
func (s *RestructureServiceImpl) Restructure(ctx context.Context, req domain.RestructureRequest) (*domain.RestructureResponse, error) {
	resp := &domain.RestructureResponse{}
	for _, path := range req.Paths {
		program, err := s.RestructureFile(ctx, path, req)
		resp.Results = append(resp.Results, domain.FileResult{Path: path, Program: program, Err: err})
	}
	return resp, nil
}

// RestructureFile parses and structures a single COBOL source file.
func (s *RestructureServiceImpl) RestructureFile(ctx context.Context, path string, req domain.RestructureRequest) (*analyzer.StructuredProgram, error) {
	source, err := s.fileReader.ReadFile(path)
	if err != nil {
		return nil, err
	}

	p := parser.New(path)
	proc, err := p.Parse(ctx, source)
	if err != nil {
		return nil, domain.NewParseError(path, err)
	}

	opts := pipelineOptions(req)
	var program *analyzer.StructuredProgram
	if req.Concurrent {
		program, err = analyzer.RunConcurrent(proc, opts)
	} else {
		program, err = analyzer.Run(proc, opts)
	}
	if err != nil {
		return nil, wrapFatal(path, err)
	}
	return program, nil
}

// wrapFatal translates a fatal analyzer.FatalError into the corresponding
// domain.DomainError code, so a CLI/MCP caller can branch on err codes
// without importing internal/analyzer. Any other error (e.g. an I/O failure
// surfaced mid-build) falls back to a generic analysis error.
func wrapFatal(path string, err error) error {
	var fatal *analyzer.FatalError
	if !errors.As(err, &fatal) {
		return domain.NewAnalysisError(fmt.Sprintf("restructuring %s", path), err)
	}

	msg := fmt.Sprintf("%s: %s", path, fatal.Diagnostic.Message)
	switch fatal.Diagnostic.Kind {
	case analyzer.UnresolvedLabel:
		return domain.NewUnresolvedLabelError(msg, err)
	case analyzer.UnsupportedPerformRange:
		return domain.NewUnsupportedPerformRangeError(msg, err)
	case analyzer.IrreducibleControlFlow:
		return domain.NewIrreducibleControlFlowError(msg, err)
	default:
		return domain.NewAnalysisError(msg, err)
	}
}

func pipelineOptions(req domain.RestructureRequest) analyzer.PipelineOptions {
	opts := analyzer.DefaultPipelineOptions()
	opts.Build.StrictCrossSectionGoto = req.StrictCrossSectionGoto
	opts.Flatten.Debug = req.Debug
	if req.FixedOverhead > 0 {
		opts.Flatten.FixedOverhead = req.FixedOverhead
	}
	if req.DuplicationWeight > 0 {
		opts.Flatten.DuplicationWeight = req.DuplicationWeight
	}
	return opts
}
