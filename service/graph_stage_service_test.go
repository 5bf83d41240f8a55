package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cobolstruct/cobolstruct/domain"
	"github.com/cobolstruct/cobolstruct/internal/analyzer"
)

func TestRenderStageFullStatementGraph(t *testing.T) {
	reader := &stubFileReader{files: map[string][]byte{
		"a.cbl": fixedFormat(
			"PROCEDURE DIVISION.",
			"MAIN SECTION.",
			"MOVE 1 TO A.",
			"EXIT PROGRAM.",
		),
	}}
	svc := NewGraphStageService(reader)

	g, err := svc.RenderStage(context.Background(), "a.cbl", domain.StageFullStatementGraph, "", analyzer.DefaultPipelineOptions())
	assert.NoError(t, err)
	assert.NotEmpty(t, g.Nodes())
}

func TestRenderStageStructureGraph(t *testing.T) {
	reader := &stubFileReader{files: map[string][]byte{
		"a.cbl": fixedFormat(
			"PROCEDURE DIVISION.",
			"MAIN SECTION.",
			"MOVE 1 TO A.",
			"MOVE 2 TO B.",
			"EXIT PROGRAM.",
		),
	}}
	svc := NewGraphStageService(reader)

	g, err := svc.RenderStage(context.Background(), "a.cbl", domain.StageStructureGraph, "", analyzer.DefaultPipelineOptions())
	assert.NoError(t, err)
	assert.NotEmpty(t, g.Nodes())
}

func TestRenderStageScopeGraphDefaultsToFirstSection(t *testing.T) {
	reader := &stubFileReader{files: map[string][]byte{
		"a.cbl": fixedFormat(
			"PROCEDURE DIVISION.",
			"FIRST SECTION.",
			"MOVE 1 TO A.",
			"EXIT PROGRAM.",
			"SECOND SECTION.",
			"MOVE 2 TO B.",
			"EXIT PROGRAM.",
		),
	}}
	svc := NewGraphStageService(reader)

	g, err := svc.RenderStage(context.Background(), "a.cbl", domain.StageScopeGraph, "", analyzer.DefaultPipelineOptions())
	assert.NoError(t, err)
	assert.NotEmpty(t, g.Nodes())
}

func TestRenderStageUnknownSection(t *testing.T) {
	reader := &stubFileReader{files: map[string][]byte{
		"a.cbl": fixedFormat(
			"PROCEDURE DIVISION.",
			"MAIN SECTION.",
			"MOVE 1 TO A.",
			"EXIT PROGRAM.",
		),
	}}
	svc := NewGraphStageService(reader)

	_, err := svc.RenderStage(context.Background(), "a.cbl", domain.StageAcyclicGraph, "NO-SUCH-SECTION", analyzer.DefaultPipelineOptions())
	assert.Error(t, err)
	var domErr domain.DomainError
	assert.True(t, errors.As(err, &domErr))
	assert.Equal(t, domain.ErrCodeInvalidInput, domErr.Code)
}

func TestRenderStageReadError(t *testing.T) {
	reader := &stubFileReader{err: errors.New("disk exploded")}
	svc := NewGraphStageService(reader)

	_, err := svc.RenderStage(context.Background(), "a.cbl", domain.StageFullStatementGraph, "", analyzer.DefaultPipelineOptions())
	assert.Error(t, err)
}
