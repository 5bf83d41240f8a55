package service

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cobolstruct/cobolstruct/domain"
	"github.com/cobolstruct/cobolstruct/internal/analyzer"
)

func sampleProgram() *analyzer.StructuredProgram {
	return &analyzer.StructuredProgram{
		Sections: []*analyzer.StructuredSection{
			{
				Name: "MAIN",
				Tree: &analyzer.TreeNode{
					Kind: analyzer.TreeSeq,
					Children: []*analyzer.TreeNode{
						{Kind: analyzer.TreeLeaf, Text: "MOVE 1 TO A"},
						{
							Kind:      analyzer.TreeIf,
							Condition: "A = 1",
							Then:      &analyzer.TreeNode{Kind: analyzer.TreeLeaf, Text: "MOVE 2 TO B"},
						},
						{
							Kind:      analyzer.TreeWhile,
							Condition: "A < 10",
							Body:      &analyzer.TreeNode{Kind: analyzer.TreeLeaf, Text: "ADD 1 TO A"},
						},
						{Kind: analyzer.TreePerformCall, SectionName: "SUB"},
					},
				},
			},
		},
	}
}

func TestOutputFormatterWriteText(t *testing.T) {
	f := NewOutputFormatter()
	resp := &domain.RestructureResponse{Results: []domain.FileResult{{Path: "a.cbl", Program: sampleProgram()}}}

	out, err := f.Format(resp, domain.OutputFormatText)
	assert.NoError(t, err)
	assert.Contains(t, out, "MOVE 1 TO A")
}

func TestOutputFormatterWriteJSON(t *testing.T) {
	f := NewOutputFormatter()
	resp := &domain.RestructureResponse{Results: []domain.FileResult{{Path: "a.cbl", Program: sampleProgram()}}}

	out, err := f.Format(resp, domain.OutputFormatJSON)
	assert.NoError(t, err)
	assert.Contains(t, out, "MAIN")
}

func TestOutputFormatterWriteCobol(t *testing.T) {
	f := NewOutputFormatter()
	resp := &domain.RestructureResponse{Results: []domain.FileResult{{Path: "a.cbl", Program: sampleProgram()}}}

	out, err := f.Format(resp, domain.OutputFormatCOBOL)
	assert.NoError(t, err)
	assert.Contains(t, out, "MAIN SECTION.")
	assert.Contains(t, out, "IF A = 1")
	assert.Contains(t, out, "END-IF")
	assert.Contains(t, out, "PERFORM UNTIL NOT ( A < 10 )")
	assert.Contains(t, out, "END-PERFORM")
	assert.Contains(t, out, "PERFORM SUB")
}

func TestOutputFormatterSkipsNilPrograms(t *testing.T) {
	f := NewOutputFormatter()
	resp := &domain.RestructureResponse{Results: []domain.FileResult{{Path: "bad.cbl", Program: nil, Err: errors.New("boom")}}}

	out, err := f.Format(resp, domain.OutputFormatText)
	assert.NoError(t, err)
	assert.Empty(t, strings.TrimSpace(out))
}

func TestOutputFormatterUnsupportedFormat(t *testing.T) {
	f := NewOutputFormatter()
	resp := &domain.RestructureResponse{Results: []domain.FileResult{{Path: "a.cbl", Program: sampleProgram()}}}

	_, err := f.Format(resp, domain.OutputFormat("xml"))
	assert.Error(t, err)
}
