// Command cobolstruct-mcp exposes the restructuring pipeline as an MCP
// server over stdio.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/cobolstruct/cobolstruct/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

const (
	serverName    = "cobolstruct"
	serverVersion = "1.0.0"
)

func main() {
	log.SetOutput(os.Stderr)
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	server := mcpserver.NewMCPServer(
		serverName,
		serverVersion,
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithLogging(),
	)

	handlers := mcp.NewHandlerSet()
	mcp.RegisterTools(server, handlers)

	log.Printf("starting %s MCP server v%s\n", serverName, serverVersion)
	log.Println("registered tools:")
	log.Println("  - restructure_cobol: reconstruct structured control flow from COBOL")
	log.Println("  - check_cobol: report restructuring diagnostics")
	log.Println("server ready - waiting for MCP client connection")

	if err := mcpserver.ServeStdio(server); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}
