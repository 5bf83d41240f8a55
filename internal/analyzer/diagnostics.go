package analyzer

import (
	"fmt"

	"github.com/google/uuid"
)

// DiagnosticKind is the closed set of error/warning kinds.
type DiagnosticKind int

const (
	// UnresolvedLabel: fatal. A go to or perform targets a name not present.
	UnresolvedLabel DiagnosticKind = iota
	// CrossSectionGoto: warning by default. A go to crosses section boundaries.
	CrossSectionGoto
	// DiagDuplicateName: warning. Paragraph/section name repeated.
	DiagDuplicateName
	// IrreducibleControlFlow: warning. A cycle that is not a natural loop.
	IrreducibleControlFlow
	// UnreachableCode: info. Statements excluded from structuring.
	UnreachableCode
	// UnsupportedPerformRange: fatal. `perform A thru B`.
	UnsupportedPerformRange
)

func (k DiagnosticKind) String() string {
	switch k {
	case UnresolvedLabel:
		return "UnresolvedLabel"
	case CrossSectionGoto:
		return "CrossSectionGoto"
	case DiagDuplicateName:
		return "DuplicateName"
	case IrreducibleControlFlow:
		return "IrreducibleControlFlow"
	case UnreachableCode:
		return "UnreachableCode"
	case UnsupportedPerformRange:
		return "UnsupportedPerformRange"
	default:
		return "Unknown"
	}
}

// Severity classifies how a Diagnostic should propagate.
type Severity int

const (
	SeverityFatal Severity = iota
	SeverityWarning
	SeverityInfo
)

// Diagnostic is one recorded warning/error/info produced during the pipeline.
// Fatal diagnostics abort the pipeline; warnings and info accumulate onto the
// final IR's diagnostic list.
type Diagnostic struct {
	Kind DiagnosticKind
	Severity Severity
	Message string
	Location SourceLocation
	Section string
}

func (d Diagnostic) Error() string {
	return fmt.Sprintf("%s at %s:%d: %s", d.Kind, d.Location.File, d.Location.StartLine, d.Message)
}

// FatalError wraps a fatal Diagnostic so the builder can return it as a plain
// Go error while preserving structured fields for callers that want them.
type FatalError struct {
	Diagnostic Diagnostic
}

func (e *FatalError) Error() string { return e.Diagnostic.Error() }

func newFatal(kind DiagnosticKind, loc SourceLocation, section, msg string) *FatalError {
	return &FatalError{Diagnostic{Kind: kind, Severity: SeverityFatal, Message: msg, Location: loc, Section: section}}
}

// RunID is a stable per-pipeline-invocation identifier attached to the IR's
// metadata, so diagnostics and cached outputs from the same run can be
// correlated by downstream tooling.
type RunID string

// NewRunID allocates a fresh run identifier.
func NewRunID() RunID {
	return RunID(uuid.NewString())
}
