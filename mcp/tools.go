// Package mcp exposes the restructuring pipeline as an MCP tool over stdio,
// so an LLM-driven editor can ask for a COBOL file's structured control
// flow without shelling out to the CLI.
package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// RegisterTools registers every cobolstruct MCP tool with the server.
func RegisterTools(s *server.MCPServer, handlers *HandlerSet) {
	s.AddTool(mcp.NewTool("restructure_cobol",
		mcp.WithDescription("Reconstruct structured control flow (if/while/break/continue) from a COBOL procedure division's gotos and performs"),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Path to a COBOL source file or a directory of COBOL source files")),
		mcp.WithString("format",
			mcp.WithStringEnumItems([]string{"text", "json", "cobol", "dot"}),
			mcp.Description("Output format: text, json, cobol or dot (default: json)")),
		mcp.WithBoolean("strict_cross_section_goto",
			mcp.Description("Treat a goto that crosses a section boundary as a fatal error instead of a warning (default: false)")),
		mcp.WithBoolean("debug",
			mcp.Description("Annotate some if/while/forever nodes of the structured tree with a one-line note on how the loop or branch was emitted (default: false)")),
	), handlers.HandleRestructureCobol)

	s.AddTool(mcp.NewTool("check_cobol",
		mcp.WithDescription("Run the restructuring pipeline and report diagnostics (unresolved labels, unsupported perform ranges, irreducible control flow, cross-section gotos) without rendering the structured tree"),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Path to a COBOL source file or a directory of COBOL source files")),
	), handlers.HandleCheckCobol)
}
