package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/answerdesk/internal/adapters/driving/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server so AI assistants can ingest
documents, verify questions and move answers through review, approval
and dispatch.

By default the server speaks JSON-RPC over stdio. Use --http to serve
the streamable HTTP transport instead, e.g. for MCP Inspector.

Examples:
  # Stdio mode (default)
  answerdesk mcp

  # HTTP mode
  answerdesk mcp --http :8080

Client configuration:
  {
    "mcpServers": {
      "answerdesk": {
        "command": "/path/to/answerdesk",
        "args": ["mcp"]
      }
    }
  }`,
	Args: cobra.NoArgs,
	RunE: runMCP,
}

var mcpHTTPAddr string

func init() {
	mcpCmd.Flags().StringVar(&mcpHTTPAddr, "http", "", "Serve HTTP on this address instead of stdio")
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, _ []string) error {
	server, err := mcp.NewServer(&mcp.Ports{
		Document:     documentService,
		Ingestion:    ingestionService,
		Verification: verificationService,
		Answer:       answerService,
		Dispatch:     dispatchService,
		Inquiry:      inquiryService,
	}, version)
	if err != nil {
		return err
	}

	ctx := commandContext(cmd)
	if mcpHTTPAddr != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "MCP server listening on http://%s\n", mcpHTTPAddr)
		return server.RunHTTP(ctx, mcpHTTPAddr)
	}
	return server.Run(ctx)
}
