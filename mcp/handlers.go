package mcp

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/cobolstruct/cobolstruct/app"
	"github.com/cobolstruct/cobolstruct/domain"
	"github.com/cobolstruct/cobolstruct/service"
	"github.com/mark3labs/mcp-go/mcp"
)

// HandlerSet carries the wired use case so handler functions don't each
// reconstruct the service/app graph from scratch.
type HandlerSet struct {
	useCase *app.RestructureUseCase
}

// NewHandlerSet wires the use case's ports and returns a HandlerSet.
func NewHandlerSet() *HandlerSet {
	fileReader := service.NewFileCollector()
	restructureService := service.NewRestructureService(fileReader)
	formatter := service.NewOutputFormatter()
	configLoader := service.NewConfigurationLoader()

	useCase := app.NewRestructureUseCase(restructureService, fileReader, formatter, configLoader, nil)
	return &HandlerSet{useCase: useCase}
}

// HandleRestructureCobol handles the restructure_cobol tool.
func (h *HandlerSet) HandleRestructureCobol(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return mcp.NewToolResultError("invalid arguments format"), nil
	}

	path, ok := args["path"].(string)
	if !ok || path == "" {
		return mcp.NewToolResultError("path parameter is required and must be a string"), nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return mcp.NewToolResultError(fmt.Sprintf("path does not exist: %s", path)), nil
	}

	format := "json"
	if f, ok := args["format"].(string); ok && f != "" {
		format = f
	}

	var sb strings.Builder
	req := domain.RestructureRequest{
		Paths:        []string{path},
		OutputFormat: domain.OutputFormat(format),
		OutputWriter: &sb,
		Recursive:    true,
		Concurrent:   true,
	}
	if v, ok := args["strict_cross_section_goto"].(bool); ok {
		req.StrictCrossSectionGoto = v
	}
	if v, ok := args["debug"].(bool); ok {
		req.Debug = v
	}

	resp, err := h.useCase.Execute(ctx, req)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("restructuring failed: %v", err)), nil
	}
	if resp.HasFatalErrors() {
		return mcp.NewToolResultError(resp.CombinedError().Error()), nil
	}

	return mcp.NewToolResultText(sb.String()), nil
}

// HandleCheckCobol handles the check_cobol tool.
func (h *HandlerSet) HandleCheckCobol(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return mcp.NewToolResultError("invalid arguments format"), nil
	}

	path, ok := args["path"].(string)
	if !ok || path == "" {
		return mcp.NewToolResultError("path parameter is required and must be a string"), nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return mcp.NewToolResultError(fmt.Sprintf("path does not exist: %s", path)), nil
	}

	var sb strings.Builder
	req := domain.RestructureRequest{
		Paths:        []string{path},
		OutputFormat: domain.OutputFormatText,
		OutputWriter: &sb,
		Recursive:    true,
		Concurrent:   true,
	}

	resp, err := h.useCase.Execute(ctx, req)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("analysis failed: %v", err)), nil
	}
	if resp.HasFatalErrors() {
		return mcp.NewToolResultError(resp.CombinedError().Error()), nil
	}

	var diags []string
	for _, fr := range resp.Results {
		if fr.Program == nil {
			continue
		}
		for _, d := range fr.Program.Diagnostics {
			diags = append(diags, fmt.Sprintf("%s: %s: %s", fr.Path, d.Kind, d.Message))
		}
	}
	if len(diags) == 0 {
		return mcp.NewToolResultText("no diagnostics found"), nil
	}
	return mcp.NewToolResultText(strings.Join(diags, "\n")), nil
}
