package domain

import (
	"context"
	"fmt"
	"io"

	"github.com/cobolstruct/cobolstruct/internal/analyzer"
	"go.uber.org/multierr"
)

// OutputFormat is the set of formats a restructured program can be rendered
// as on the CLI's --format flag.
type OutputFormat string

const (
	OutputFormatText OutputFormat = "text"
	OutputFormatJSON OutputFormat = "json"
	OutputFormatCOBOL OutputFormat = "cobol"
	OutputFormatDOT OutputFormat = "dot"
)

// GraphStage names one of the intermediate graphs the `graph` subcommand can
// render instead of the final structured tree, for inspecting the pipeline.
type GraphStage string

const (
	StageFullStatementGraph GraphStage = "full_stmt_graph"
	StageStatementGraph GraphStage = "stmt_graph"
	StageStructureGraph GraphStage = "cobol_graph"
	StageAcyclicGraph GraphStage = "acyclic_graph"
	StageScopeGraph GraphStage = "scope_graph"
)

// RestructureRequest is one invocation of the restructuring pipeline over a
// set of COBOL source files.
type RestructureRequest struct {
	Paths []string

	OutputFormat OutputFormat
	OutputWriter io.Writer
	OutputPath string

	ConfigPath string

	Recursive bool
	IncludePatterns []string
	ExcludePatterns []string

	// StrictCrossSectionGoto promotes a goto that jumps between sections
	// from a warning to a fatal error (resolved in internal/config as a configurable default).
	StrictCrossSectionGoto bool

	// Debug requests decision-rationale annotations on the structured tree.
	Debug bool

	// FixedOverhead / DuplicationWeight tune the flattener's cost model for
	// choosing between duplicating code at a join and emitting a labeled goto.
	FixedOverhead int
	DuplicationWeight int

	// GraphStage, when non-empty, asks for an intermediate graph instead of
	// the final structured tree (the `graph` subcommand).
	GraphStage GraphStage

	// Concurrent structures independent sections in parallel.
	Concurrent bool

	// ExplicitFlags names the fields above that the caller set on purpose
	// (e.g. a CLI flag the user actually passed), so MergeConfig can tell
	// "left at zero" apart from "explicitly set to zero/false".
	ExplicitFlags map[string]bool
}

// FileResult pairs one source file with its pipeline outcome.
type FileResult struct {
	Path string
	Program *analyzer.StructuredProgram
	Err error
}

// RestructureResponse is the complete outcome of restructuring a batch of
// files.
type RestructureResponse struct {
	Results []FileResult

	GeneratedAt string
	Version string
}

// HasFatalErrors reports whether any file in the batch failed outright.
func (r *RestructureResponse) HasFatalErrors() bool {
	for _, fr := range r.Results {
		if fr.Err != nil {
			return true
		}
	}
	return false
}

// CombinedError aggregates every per-file fatal error in the batch into one
// error via multierr, for callers that want a single error value rather than
// walking Results themselves.
func (r *RestructureResponse) CombinedError() error {
	var err error
	for _, fr := range r.Results {
		if fr.Err != nil {
			err = multierr.Append(err, fmt.Errorf("%s: %w", fr.Path, fr.Err))
		}
	}
	return err
}

// HasWarnings reports whether any successfully processed file still carries
// a warning-level diagnostic; info-level diagnostics are not counted.
func (r *RestructureResponse) HasWarnings() bool {
	for _, fr := range r.Results {
		if fr.Program == nil {
			continue
		}
		for _, d := range fr.Program.Diagnostics {
			if d.Severity == analyzer.SeverityWarning {
				return true
			}
		}
	}
	return false
}

// RestructureService performs the core pipeline against already-collected
// source files (the port the app layer drives; internal/analyzer and
// internal/parser back the concrete implementation in service/).
type RestructureService interface {
	Restructure(ctx context.Context, req RestructureRequest) (*RestructureResponse, error)
	RestructureFile(ctx context.Context, path string, req RestructureRequest) (*analyzer.StructuredProgram, error)
}

// FileReader collects and reads COBOL source files from the request's paths.
type FileReader interface {
	CollectFiles(paths []string, recursive bool, includePatterns, excludePatterns []string) ([]string, error)
	ReadFile(path string) ([]byte, error)
	IsValidCobolFile(path string) bool
	FileExists(path string) (bool, error)
}

// OutputFormatter renders a RestructureResponse in the requested format.
type OutputFormatter interface {
	Format(resp *RestructureResponse, format OutputFormat) (string, error)
	Write(resp *RestructureResponse, format OutputFormat, writer io.Writer) error
}

// ConfigurationLoader loads and merges on-disk configuration with CLI flags.
type ConfigurationLoader interface {
	LoadConfig(path string) (*RestructureRequest, error)
	LoadDefaultConfig() *RestructureRequest
	MergeConfig(base *RestructureRequest, override *RestructureRequest) *RestructureRequest
}

// ProgressReporter reports batch progress across multiple files.
type ProgressReporter interface {
	StartProgress(total int)
	UpdateProgress(currentFile string, processed, total int)
	FinishProgress()
}
