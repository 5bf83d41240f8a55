package app

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/cobolstruct/cobolstruct/domain"
	"github.com/cobolstruct/cobolstruct/internal/analyzer"
)

type mockRestructureService struct {
	mock.Mock
}

func (m *mockRestructureService) Restructure(ctx context.Context, req domain.RestructureRequest) (*domain.RestructureResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RestructureResponse), args.Error(1)
}

func (m *mockRestructureService) RestructureFile(ctx context.Context, path string, req domain.RestructureRequest) (*analyzer.StructuredProgram, error) {
	args := m.Called(ctx, path, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*analyzer.StructuredProgram), args.Error(1)
}

type mockFileReader struct {
	mock.Mock
}

func (m *mockFileReader) CollectFiles(paths []string, recursive bool, includePatterns, excludePatterns []string) ([]string, error) {
	args := m.Called(paths, recursive, includePatterns, excludePatterns)
	return args.Get(0).([]string), args.Error(1)
}

func (m *mockFileReader) ReadFile(path string) ([]byte, error) {
	args := m.Called(path)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *mockFileReader) IsValidCobolFile(path string) bool {
	args := m.Called(path)
	return args.Bool(0)
}

func (m *mockFileReader) FileExists(path string) (bool, error) {
	args := m.Called(path)
	return args.Bool(0), args.Error(1)
}

type mockOutputFormatter struct {
	mock.Mock
}

func (m *mockOutputFormatter) Format(resp *domain.RestructureResponse, format domain.OutputFormat) (string, error) {
	args := m.Called(resp, format)
	return args.String(0), args.Error(1)
}

func (m *mockOutputFormatter) Write(resp *domain.RestructureResponse, format domain.OutputFormat, writer io.Writer) error {
	args := m.Called(resp, format, writer)
	return args.Error(0)
}

type mockConfigurationLoader struct {
	mock.Mock
}

func (m *mockConfigurationLoader) LoadConfig(path string) (*domain.RestructureRequest, error) {
	args := m.Called(path)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RestructureRequest), args.Error(1)
}

func (m *mockConfigurationLoader) LoadDefaultConfig() *domain.RestructureRequest {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*domain.RestructureRequest)
}

func (m *mockConfigurationLoader) MergeConfig(base, override *domain.RestructureRequest) *domain.RestructureRequest {
	args := m.Called(base, override)
	return args.Get(0).(*domain.RestructureRequest)
}

type mockProgressReporter struct {
	mock.Mock
}

func (m *mockProgressReporter) StartProgress(total int) {
	m.Called(total)
}

func (m *mockProgressReporter) UpdateProgress(currentFile string, processed, total int) {
	m.Called(currentFile, processed, total)
}

func (m *mockProgressReporter) FinishProgress() {
	m.Called()
}

func setupRestructureUseCaseMocks() (*RestructureUseCase, *mockRestructureService, *mockFileReader, *mockOutputFormatter, *mockConfigurationLoader, *mockProgressReporter) {
	service := &mockRestructureService{}
	fileReader := &mockFileReader{}
	formatter := &mockOutputFormatter{}
	configLoader := &mockConfigurationLoader{}
	progress := &mockProgressReporter{}

	uc := NewRestructureUseCase(service, fileReader, formatter, configLoader, progress)
	return uc, service, fileReader, formatter, configLoader, progress
}

func validRequest() domain.RestructureRequest {
	return domain.RestructureRequest{
		Paths:        []string{"/src"},
		OutputFormat: domain.OutputFormatText,
	}
}

func TestRestructureUseCaseExecuteSuccess(t *testing.T) {
	uc, service, fileReader, _, configLoader, progress := setupRestructureUseCaseMocks()
	req := validRequest()

	configLoader.On("LoadDefaultConfig").Return((*domain.RestructureRequest)(nil))
	fileReader.On("CollectFiles", req.Paths, req.Recursive, req.IncludePatterns, req.ExcludePatterns).
		Return([]string{"/src/a.cbl", "/src/b.cbl"}, nil)
	progress.On("StartProgress", 2).Return()
	progress.On("FinishProgress").Return()

	resp := &domain.RestructureResponse{Results: []domain.FileResult{{Path: "/src/a.cbl"}, {Path: "/src/b.cbl"}}}
	service.On("Restructure", mock.Anything, mock.MatchedBy(func(r domain.RestructureRequest) bool {
		return len(r.Paths) == 2
	})).Return(resp, nil)

	got, err := uc.Execute(context.Background(), req)
	assert.NoError(t, err)
	assert.Same(t, resp, got)
	service.AssertExpectations(t)
	fileReader.AssertExpectations(t)
	progress.AssertExpectations(t)
}

func TestRestructureUseCaseExecuteNoPaths(t *testing.T) {
	uc, _, _, _, _, _ := setupRestructureUseCaseMocks()

	_, err := uc.Execute(context.Background(), domain.RestructureRequest{OutputFormat: domain.OutputFormatText})
	assert.Error(t, err)
	var domErr domain.DomainError
	assert.True(t, errors.As(err, &domErr))
	assert.Equal(t, domain.ErrCodeInvalidInput, domErr.Code)
}

func TestRestructureUseCaseExecuteUnsupportedFormat(t *testing.T) {
	uc, _, _, _, _, _ := setupRestructureUseCaseMocks()

	req := domain.RestructureRequest{Paths: []string{"/src"}, OutputFormat: "xml"}
	_, err := uc.Execute(context.Background(), req)
	assert.Error(t, err)
}

func TestRestructureUseCaseExecuteNoFilesFound(t *testing.T) {
	uc, _, fileReader, _, configLoader, _ := setupRestructureUseCaseMocks()
	req := validRequest()

	configLoader.On("LoadDefaultConfig").Return((*domain.RestructureRequest)(nil))
	fileReader.On("CollectFiles", req.Paths, req.Recursive, req.IncludePatterns, req.ExcludePatterns).
		Return([]string{}, nil)

	_, err := uc.Execute(context.Background(), req)
	assert.Error(t, err)
	var domErr domain.DomainError
	assert.True(t, errors.As(err, &domErr))
	assert.Equal(t, domain.ErrCodeInvalidInput, domErr.Code)
}

func TestRestructureUseCaseExecuteServiceError(t *testing.T) {
	uc, service, fileReader, _, configLoader, progress := setupRestructureUseCaseMocks()
	req := validRequest()

	configLoader.On("LoadDefaultConfig").Return((*domain.RestructureRequest)(nil))
	fileReader.On("CollectFiles", req.Paths, req.Recursive, req.IncludePatterns, req.ExcludePatterns).
		Return([]string{"/src/a.cbl"}, nil)
	progress.On("StartProgress", 1).Return()
	progress.On("FinishProgress").Return()
	service.On("Restructure", mock.Anything, mock.Anything).Return(nil, errors.New("boom"))

	_, err := uc.Execute(context.Background(), req)
	assert.Error(t, err)
	var domErr domain.DomainError
	assert.True(t, errors.As(err, &domErr))
	assert.Equal(t, domain.ErrCodeAnalysisError, domErr.Code)
}

func TestRestructureUseCaseExecuteFileSuccess(t *testing.T) {
	uc, service, fileReader, _, configLoader, _ := setupRestructureUseCaseMocks()

	fileReader.On("IsValidCobolFile", "/src/a.cbl").Return(true)
	fileReader.On("FileExists", "/src/a.cbl").Return(true, nil)
	configLoader.On("LoadDefaultConfig").Return((*domain.RestructureRequest)(nil))

	program := &analyzer.StructuredProgram{}
	service.On("RestructureFile", mock.Anything, "/src/a.cbl", mock.Anything).Return(program, nil)

	resp, err := uc.ExecuteFile(context.Background(), "/src/a.cbl", domain.RestructureRequest{OutputFormat: domain.OutputFormatText})
	assert.NoError(t, err)
	assert.Len(t, resp.Results, 1)
	assert.Same(t, program, resp.Results[0].Program)
}

func TestRestructureUseCaseExecuteFileNotCobol(t *testing.T) {
	uc, _, fileReader, _, _, _ := setupRestructureUseCaseMocks()
	fileReader.On("IsValidCobolFile", "/src/a.txt").Return(false)

	_, err := uc.ExecuteFile(context.Background(), "/src/a.txt", domain.RestructureRequest{})
	assert.Error(t, err)
	var domErr domain.DomainError
	assert.True(t, errors.As(err, &domErr))
	assert.Equal(t, domain.ErrCodeInvalidInput, domErr.Code)
}

func TestRestructureUseCaseExecuteFileNotFound(t *testing.T) {
	uc, _, fileReader, _, _, _ := setupRestructureUseCaseMocks()
	fileReader.On("IsValidCobolFile", "/src/a.cbl").Return(true)
	fileReader.On("FileExists", "/src/a.cbl").Return(false, nil)

	_, err := uc.ExecuteFile(context.Background(), "/src/a.cbl", domain.RestructureRequest{})
	assert.Error(t, err)
	var domErr domain.DomainError
	assert.True(t, errors.As(err, &domErr))
	assert.Equal(t, domain.ErrCodeFileNotFound, domErr.Code)
}

func TestLoadAndMergeConfigWithExplicitPath(t *testing.T) {
	uc, _, _, _, configLoader, _ := setupRestructureUseCaseMocks()

	req := domain.RestructureRequest{ConfigPath: "/etc/cobolstruct.toml", Paths: []string{"/src"}}
	fileCfg := &domain.RestructureRequest{OutputFormat: domain.OutputFormatJSON}
	merged := &domain.RestructureRequest{OutputFormat: domain.OutputFormatJSON, Paths: []string{"/src"}}

	configLoader.On("LoadConfig", "/etc/cobolstruct.toml").Return(fileCfg, nil)
	configLoader.On("MergeConfig", fileCfg, &req).Return(merged)

	got, err := uc.loadAndMergeConfig(req)
	assert.NoError(t, err)
	assert.Equal(t, *merged, got)
}

func TestLoadAndMergeConfigLoadError(t *testing.T) {
	uc, _, _, _, configLoader, _ := setupRestructureUseCaseMocks()

	req := domain.RestructureRequest{ConfigPath: "/etc/cobolstruct.toml"}
	configLoader.On("LoadConfig", "/etc/cobolstruct.toml").Return(nil, errors.New("not found"))

	_, err := uc.loadAndMergeConfig(req)
	assert.Error(t, err)
}
