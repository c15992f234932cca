package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/mfenderov/zendesk-rag/internal/elasticsearch"
	"github.com/mfenderov/zendesk-rag/internal/embeddings"
	"github.com/mfenderov/zendesk-rag/internal/retrieval"
	"github.com/mfenderov/zendesk-rag/pkg/models"
)

const defaultSearchLimit = 10

// Config holds MCP server configuration.
type Config struct {
	Name        string
	Version     string
	ESAddresses []string
	ESIndex     string
	ESUsername  string
	ESPassword  string

	// Embeddings enables hybrid search when set. It must name the model
	// the index was built with.
	Embeddings *embeddings.Config
}

// ArticleIndex is the read side of the search index. *elasticsearch.Client implements it.
type ArticleIndex interface {
	retrieval.Index
	GetDocument(ctx context.Context, id string) (*models.IndexedArticle, error)
}

// Server exposes indexed Help Center articles over MCP.
type Server struct {
	mcpServer *server.MCPServer
	index     ArticleIndex
	searcher  *retrieval.Searcher
}

// NewServer creates a new MCP server backed by Elasticsearch.
func NewServer(config Config) (*Server, error) {
	esClient, err := elasticsearch.New(elasticsearch.Config{
		Addresses: config.ESAddresses,
		Index:     config.ESIndex,
		Username:  config.ESUsername,
		Password:  config.ESPassword,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create elasticsearch client: %w", err)
	}

	if config.Embeddings == nil {
		return newServer(config, esClient, nil), nil
	}
	embedClient, err := embeddings.New(*config.Embeddings)
	if err != nil {
		return nil, fmt.Errorf("failed to create embeddings client: %w", err)
	}
	return newServer(config, esClient, embedClient), nil
}

// newServer wires the tools. embedder may be nil for text-only search.
func newServer(config Config, index ArticleIndex, embedder retrieval.QueryEmbedder) *Server {
	mcpServer := server.NewMCPServer(
		config.Name,
		config.Version,
		server.WithToolCapabilities(true),
	)

	s := &Server{
		mcpServer: mcpServer,
		index:     index,
		searcher:  retrieval.New(index, embedder),
	}

	searchTool := mcp.NewTool("search_articles",
		mcp.WithDescription("Search indexed Zendesk Help Center articles. Returns matching articles with their plain-text body, URL and last update time."),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Search query string"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of results to return (default: 10)"),
		),
		mcp.WithString("subdomain",
			mcp.Description("Only search this Zendesk subdomain (default: all)"),
		),
	)
	mcpServer.AddTool(searchTool, s.searchHandler)

	getTool := mcp.NewTool("get_article",
		mcp.WithDescription("Get one indexed Help Center article by the id returned from search_articles"),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Article document ID"),
		),
	)
	mcpServer.AddTool(getTool, s.getArticleHandler)

	return s
}

func (s *Server) searchHandler(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil || query == "" {
		return mcp.NewToolResultError("query parameter is required"), nil
	}

	limit := req.GetInt("limit", defaultSearchLimit)
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	articles, err := s.searcher.Search(ctx, req.GetString("subdomain", ""), query, limit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("search failed: %v", err)), nil
	}
	if articles == nil {
		articles = []models.IndexedArticle{}
	}

	result, err := json.Marshal(articles)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal results: %v", err)), nil
	}

	return mcp.NewToolResultText(string(result)), nil
}

func (s *Server) getArticleHandler(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil || id == "" {
		return mcp.NewToolResultError("id parameter is required"), nil
	}

	article, err := s.index.GetDocument(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("get article failed: %v", err)), nil
	}
	if article == nil {
		return mcp.NewToolResultError(fmt.Sprintf("article not found: %s", id)), nil
	}

	result, err := json.Marshal(article)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal article: %v", err)), nil
	}

	return mcp.NewToolResultText(string(result)), nil
}

// ServeStdio starts the MCP server using stdio transport.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}
