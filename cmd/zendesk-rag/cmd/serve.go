package cmd

import (
	"fmt"

	"github.com/mfenderov/zendesk-rag/internal/mcp"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the MCP server for Help Center article retrieval.

The server communicates via stdio and provides two tools:
  - search_articles: Search indexed articles by query
  - get_article: Get a specific article by ID

Example:
  zendesk-rag serve`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	mcpConfig := mcp.Config{
		Name:        cfg.MCP.Name,
		Version:     cfg.MCP.Version,
		ESAddresses: cfg.Elasticsearch.Addresses,
		ESIndex:     cfg.Elasticsearch.Index,
		ESUsername:  cfg.Elasticsearch.Username,
		ESPassword:  cfg.Elasticsearch.Password,
	}
	if cfg.Embeddings.Enabled {
		embedCfg := embeddingsConfig(cfg.Embeddings)
		mcpConfig.Embeddings = &embedCfg
	}

	server, err := mcp.NewServer(mcpConfig)
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}

	fmt.Fprintln(cmd.ErrOrStderr(), "Starting MCP server...")

	return server.ServeStdio()
}
