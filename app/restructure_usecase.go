package app

import (
	"context"
	"fmt"

	"github.com/cobolstruct/cobolstruct/domain"
)

// RestructureUseCase orchestrates collecting source files, running the core
// pipeline, and writing the rendered output.
type RestructureUseCase struct {
	service      domain.RestructureService
	fileReader   domain.FileReader
	formatter    domain.OutputFormatter
	configLoader domain.ConfigurationLoader
	progress     domain.ProgressReporter
}

// NewRestructureUseCase wires the use case's ports together.
func NewRestructureUseCase(
	service domain.RestructureService,
	fileReader domain.FileReader,
	formatter domain.OutputFormatter,
	configLoader domain.ConfigurationLoader,
	progress domain.ProgressReporter,
) *RestructureUseCase {
	return &RestructureUseCase{
		service:      service,
		fileReader:   fileReader,
		formatter:    formatter,
		configLoader: configLoader,
		progress:     progress,
	}
}

// Execute runs the full restructure workflow: load config, collect files,
// run the pipeline over each, then format and write the result.
func (uc *RestructureUseCase) Execute(ctx context.Context, req domain.RestructureRequest) (*domain.RestructureResponse, error) {
	if err := uc.validateRequest(req); err != nil {
		return nil, domain.NewInvalidInputError("invalid request", err)
	}

	finalReq, err := uc.loadAndMergeConfig(req)
	if err != nil {
		return nil, domain.NewConfigError("failed to load configuration", err)
	}

	files, err := uc.fileReader.CollectFiles(finalReq.Paths, finalReq.Recursive, finalReq.IncludePatterns, finalReq.ExcludePatterns)
	if err != nil {
		return nil, domain.NewFileNotFoundError("failed to collect files", err)
	}
	if len(files) == 0 {
		return nil, domain.NewInvalidInputError("no COBOL files found in the specified paths", nil)
	}
	finalReq.Paths = files

	if uc.progress != nil {
		uc.progress.StartProgress(len(files))
		defer uc.progress.FinishProgress()
	}

	resp, err := uc.service.Restructure(ctx, finalReq)
	if err != nil {
		return nil, domain.NewAnalysisError("restructuring failed", err)
	}

	if finalReq.OutputWriter != nil {
		if err := uc.formatter.Write(resp, finalReq.OutputFormat, finalReq.OutputWriter); err != nil {
			return nil, domain.NewOutputError("failed to write output", err)
		}
	}

	return resp, nil
}

// ExecuteFile restructures a single file, skipping collection.
func (uc *RestructureUseCase) ExecuteFile(ctx context.Context, path string, req domain.RestructureRequest) (*domain.RestructureResponse, error) {
	if !uc.fileReader.IsValidCobolFile(path) {
		return nil, domain.NewInvalidInputError(fmt.Sprintf("not a COBOL file: %s", path), nil)
	}
	if ok, err := uc.fileReader.FileExists(path); !ok {
		return nil, domain.NewFileNotFoundError(path, err)
	}

	finalReq, err := uc.loadAndMergeConfig(req)
	if err != nil {
		return nil, domain.NewConfigError("failed to load configuration", err)
	}

	program, err := uc.service.RestructureFile(ctx, path, finalReq)
	if err != nil {
		return nil, domain.NewAnalysisError("file restructuring failed", err)
	}

	resp := &domain.RestructureResponse{Results: []domain.FileResult{{Path: path, Program: program}}}
	if finalReq.OutputWriter != nil {
		if err := uc.formatter.Write(resp, finalReq.OutputFormat, finalReq.OutputWriter); err != nil {
			return nil, domain.NewOutputError("failed to write output", err)
		}
	}
	return resp, nil
}

func (uc *RestructureUseCase) validateRequest(req domain.RestructureRequest) error {
	if len(req.Paths) == 0 {
		return fmt.Errorf("no input paths specified")
	}
	switch req.OutputFormat {
	case domain.OutputFormatText, domain.OutputFormatJSON, domain.OutputFormatCOBOL, domain.OutputFormatDOT:
	default:
		return fmt.Errorf("unsupported output format: %s", req.OutputFormat)
	}
	if req.DuplicationWeight < 0 || req.FixedOverhead < 0 {
		return fmt.Errorf("flattener cost weights cannot be negative")
	}
	return nil
}

func (uc *RestructureUseCase) loadAndMergeConfig(req domain.RestructureRequest) (domain.RestructureRequest, error) {
	if uc.configLoader == nil {
		return req, nil
	}

	var configReq *domain.RestructureRequest
	var err error
	if req.ConfigPath != "" {
		configReq, err = uc.configLoader.LoadConfig(req.ConfigPath)
		if err != nil {
			return req, fmt.Errorf("failed to load config from %s: %w", req.ConfigPath, err)
		}
	} else {
		configReq = uc.configLoader.LoadDefaultConfig()
	}

	if configReq != nil {
		merged := uc.configLoader.MergeConfig(configReq, &req)
		return *merged, nil
	}
	return req, nil
}
