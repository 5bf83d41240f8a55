package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cobolstruct/cobolstruct/domain"
)

type stubFileReader struct {
	files map[string][]byte
	err   error
}

func (s *stubFileReader) CollectFiles(paths []string, recursive bool, includePatterns, excludePatterns []string) ([]string, error) {
	return paths, nil
}

func (s *stubFileReader) ReadFile(path string) ([]byte, error) {
	if s.err != nil {
		return nil, s.err
	}
	src, ok := s.files[path]
	if !ok {
		return nil, errors.New("no such file")
	}
	return src, nil
}

func (s *stubFileReader) IsValidCobolFile(path string) bool { return strings.HasSuffix(path, ".cbl") }

func (s *stubFileReader) FileExists(path string) (bool, error) {
	_, ok := s.files[path]
	return ok, nil
}

func fixedFormat(lines ...string) []byte {
	var b strings.Builder
	for _, l := range lines {
		if l != "" {
			b.WriteString("       ")
		}
		b.WriteString(l)
		b.WriteByte('\n')
	}
	return []byte(b.String())
}

func TestRestructureFileSuccess(t *testing.T) {
	reader := &stubFileReader{files: map[string][]byte{
		"a.cbl": fixedFormat(
			"PROCEDURE DIVISION.",
			"MAIN SECTION.",
			"MOVE 1 TO A.",
			"EXIT PROGRAM.",
		),
	}}
	svc := NewRestructureService(reader)

	program, err := svc.RestructureFile(context.Background(), "a.cbl", domain.RestructureRequest{})
	assert.NoError(t, err)
	assert.NotNil(t, program)
	assert.Len(t, program.Sections, 1)
}

func TestRestructureFileReadError(t *testing.T) {
	reader := &stubFileReader{err: errors.New("disk exploded")}
	svc := NewRestructureService(reader)

	_, err := svc.RestructureFile(context.Background(), "missing.cbl", domain.RestructureRequest{})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "disk exploded")
}

func TestRestructureFileUnresolvedLabelWrapped(t *testing.T) {
	reader := &stubFileReader{files: map[string][]byte{
		"a.cbl": fixedFormat(
			"PROCEDURE DIVISION.",
			"MAIN SECTION.",
			"GO TO NOWHERE.",
		),
	}}
	svc := NewRestructureService(reader)

	_, err := svc.RestructureFile(context.Background(), "a.cbl", domain.RestructureRequest{})
	assert.Error(t, err)
	var domErr domain.DomainError
	assert.True(t, errors.As(err, &domErr))
	assert.Equal(t, domain.ErrCodeUnresolvedLabel, domErr.Code)
}

func TestRestructureFileCrossSectionGotoStrict(t *testing.T) {
	reader := &stubFileReader{files: map[string][]byte{
		"a.cbl": fixedFormat(
			"PROCEDURE DIVISION.",
			"FIRST SECTION.",
			"GO TO OTHER-PARA.",
			"SECOND SECTION.",
			"OTHER-PARA.",
			"EXIT PROGRAM.",
		),
	}}
	svc := NewRestructureService(reader)

	_, err := svc.RestructureFile(context.Background(), "a.cbl", domain.RestructureRequest{StrictCrossSectionGoto: true})
	assert.Error(t, err)
	var domErr domain.DomainError
	assert.True(t, errors.As(err, &domErr))
	// CrossSectionGoto isn't one of wrapFatal's named cases; it falls back to
	// the generic analysis-error code.
	assert.Equal(t, domain.ErrCodeAnalysisError, domErr.Code)
}

func TestRestructureBatchCollectsPerFileResults(t *testing.T) {
	reader := &stubFileReader{files: map[string][]byte{
		"good.cbl": fixedFormat(
			"PROCEDURE DIVISION.",
			"MAIN SECTION.",
			"MOVE 1 TO A.",
			"EXIT PROGRAM.",
		),
		"bad.cbl": fixedFormat(
			"PROCEDURE DIVISION.",
			"MAIN SECTION.",
			"GO TO NOWHERE.",
		),
	}}
	svc := NewRestructureService(reader)

	resp, err := svc.Restructure(context.Background(), domain.RestructureRequest{Paths: []string{"good.cbl", "bad.cbl"}})
	assert.NoError(t, err)
	assert.True(t, resp.HasFatalErrors())
	assert.Len(t, resp.Results, 2)
	assert.NoError(t, resp.Results[0].Err)
	assert.Error(t, resp.Results[1].Err)
	assert.Contains(t, resp.CombinedError().Error(), "bad.cbl")
}
