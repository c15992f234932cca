package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mfenderov/zendesk-rag/internal/elasticsearch"
	"github.com/mfenderov/zendesk-rag/internal/embeddings"
	"github.com/mfenderov/zendesk-rag/pkg/models"
)

func skipIfNoES(t *testing.T) {
	if os.Getenv("SKIP_ES_TESTS") == "1" {
		t.Skip("Skipping ES tests")
	}
	client, err := elasticsearch.New(elasticsearch.Config{
		Addresses: []string{"http://localhost:9200"},
		Index:     "test-skip",
	})
	if err != nil {
		t.Skipf("Skipping: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if !client.Ping(ctx) {
		t.Skip("Skipping: ES not available")
	}
}

type fakeIndex struct {
	articles     map[string]models.IndexedArticle
	gotLimit     int
	gotSubdomain string
	gotEmbedding []float32
	searchErr    error
}

func (f *fakeIndex) SearchSubdomain(_ context.Context, subdomain, _ string, limit int) ([]models.IndexedArticle, error) {
	f.gotLimit = limit
	f.gotSubdomain = subdomain
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	var out []models.IndexedArticle
	for _, a := range f.articles {
		out = append(out, a)
	}
	return out, nil
}

func (f *fakeIndex) HybridSearch(ctx context.Context, subdomain, query string, queryEmbedding []float32, limit int) ([]models.IndexedArticle, error) {
	f.gotEmbedding = queryEmbedding
	return f.SearchSubdomain(ctx, subdomain, query, limit)
}

type fakeEmbedder struct{}

func (fakeEmbedder) EmbedQuery(context.Context, string) ([]float32, error) {
	return []float32{0.5, 0.25}, nil
}

func (f *fakeIndex) GetDocument(_ context.Context, id string) (*models.IndexedArticle, error) {
	a, ok := f.articles[id]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func callRequest(name string, args map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{Params: mcp.CallToolParams{Name: name, Arguments: args}}
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if len(result.Content) == 0 {
		t.Fatal("tool result has no content")
	}
	text, ok := mcp.AsTextContent(result.Content[0])
	if !ok {
		t.Fatalf("content is %T, want TextContent", result.Content[0])
	}
	return text.Text
}

func testIndex() *fakeIndex {
	return &fakeIndex{articles: map[string]models.IndexedArticle{
		"abc123": {
			ID:        "abc123",
			Subdomain: "acme",
			ArticleID: 42,
			Title:     "Resetting your password",
			URL:       "https://acme.zendesk.com/hc/en-us/articles/42",
			Content:   "Click Forgot password on the sign in page.",
		},
	}}
}

func TestServer_Creation(t *testing.T) {
	s, err := NewServer(Config{
		Name:        "zendesk-rag",
		Version:     "1.0.0",
		ESAddresses: []string{"http://localhost:9200"},
		ESIndex:     "zendesk-rag-test",
	})
	if err != nil {
		t.Fatalf("NewServer() error = %v", err)
	}
	if s.mcpServer == nil {
		t.Error("mcpServer should not be nil")
	}
}

func TestNewServer_EmbeddingsConfig(t *testing.T) {
	s, err := NewServer(Config{
		Name:        "zendesk-rag",
		Version:     "1.0.0",
		ESAddresses: []string{"http://localhost:9200"},
		ESIndex:     "zendesk-rag-test",
		Embeddings:  &embeddings.Config{SocketPath: "/tmp/docker.sock", Model: "ai/embeddinggemma"},
	})
	if err != nil {
		t.Fatalf("NewServer() error = %v", err)
	}
	if s.searcher == nil {
		t.Error("searcher should not be nil")
	}

	_, err = NewServer(Config{
		ESAddresses: []string{"http://localhost:9200"},
		Embeddings:  &embeddings.Config{Model: "ai/embeddinggemma"},
	})
	if err == nil {
		t.Error("NewServer() should reject embeddings without a socket path")
	}
}

func TestSearchHandler(t *testing.T) {
	tests := []struct {
		name          string
		args          map[string]any
		searchErr     error
		wantError     bool
		wantLimit     int
		wantSubdomain string
	}{
		{name: "default limit", args: map[string]any{"query": "password"}, wantLimit: 10},
		{name: "explicit limit", args: map[string]any{"query": "password", "limit": float64(3)}, wantLimit: 3},
		{name: "subdomain filter", args: map[string]any{"query": "password", "subdomain": "acme"}, wantLimit: 10, wantSubdomain: "acme"},
		{name: "non-positive limit", args: map[string]any{"query": "password", "limit": float64(0)}, wantLimit: 10},
		{name: "missing query", args: map[string]any{}, wantError: true},
		{name: "search failure", args: map[string]any{"query": "x"}, searchErr: errors.New("boom"), wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			index := testIndex()
			index.searchErr = tt.searchErr
			s := newServer(Config{Name: "test", Version: "0"}, index, nil)

			result, err := s.searchHandler(t.Context(), callRequest("search_articles", tt.args))
			if err != nil {
				t.Fatalf("searchHandler() error = %v", err)
			}
			if result.IsError != tt.wantError {
				t.Fatalf("IsError = %v, want %v (%s)", result.IsError, tt.wantError, resultText(t, result))
			}
			if tt.wantError {
				return
			}
			if index.gotLimit != tt.wantLimit {
				t.Errorf("limit = %d, want %d", index.gotLimit, tt.wantLimit)
			}
			if index.gotSubdomain != tt.wantSubdomain {
				t.Errorf("subdomain = %q, want %q", index.gotSubdomain, tt.wantSubdomain)
			}

			var articles []models.IndexedArticle
			if err := json.Unmarshal([]byte(resultText(t, result)), &articles); err != nil {
				t.Fatalf("result is not JSON: %v", err)
			}
			if len(articles) != 1 || articles[0].ArticleID != 42 {
				t.Errorf("articles = %+v", articles)
			}
		})
	}
}

func TestSearchHandler_EmbeddingsUseHybridSearch(t *testing.T) {
	index := testIndex()
	s := newServer(Config{Name: "test", Version: "0"}, index, fakeEmbedder{})

	result, err := s.searchHandler(t.Context(), callRequest("search_articles", map[string]any{"query": "password", "subdomain": "acme"}))
	if err != nil {
		t.Fatalf("searchHandler() error = %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected error result: %s", resultText(t, result))
	}
	if len(index.gotEmbedding) != 2 {
		t.Errorf("hybrid search embedding = %v, want the query vector", index.gotEmbedding)
	}
	if index.gotSubdomain != "acme" {
		t.Errorf("subdomain = %q, want %q", index.gotSubdomain, "acme")
	}
}

func TestSearchHandler_NoResultsIsEmptyArray(t *testing.T) {
	s := newServer(Config{Name: "test", Version: "0"}, &fakeIndex{}, nil)

	result, err := s.searchHandler(t.Context(), callRequest("search_articles", map[string]any{"query": "nothing"}))
	if err != nil {
		t.Fatalf("searchHandler() error = %v", err)
	}
	if got := resultText(t, result); got != "[]" {
		t.Errorf("result = %q, want []", got)
	}
}

func TestGetArticleHandler(t *testing.T) {
	s := newServer(Config{Name: "test", Version: "0"}, testIndex(), nil)

	result, err := s.getArticleHandler(t.Context(), callRequest("get_article", map[string]any{"id": "abc123"}))
	if err != nil {
		t.Fatalf("getArticleHandler() error = %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected error result: %s", resultText(t, result))
	}
	var article models.IndexedArticle
	if err := json.Unmarshal([]byte(resultText(t, result)), &article); err != nil {
		t.Fatalf("result is not JSON: %v", err)
	}
	if article.Title != "Resetting your password" {
		t.Errorf("Title = %q", article.Title)
	}

	result, err = s.getArticleHandler(t.Context(), callRequest("get_article", map[string]any{"id": "missing"}))
	if err != nil {
		t.Fatalf("getArticleHandler() error = %v", err)
	}
	if !result.IsError {
		t.Error("expected error result for unknown id")
	}
}

func TestServer_SearchAgainstElasticsearch(t *testing.T) {
	skipIfNoES(t)

	ctx := context.Background()

	esClient, err := elasticsearch.New(elasticsearch.Config{
		Addresses: []string{"http://localhost:9200"},
		Index:     "zendesk-rag-mcp-test",
	})
	if err != nil {
		t.Fatalf("Failed to create ES client: %v", err)
	}

	esClient.DeleteIndex(ctx)
	esClient.CreateIndex(ctx)
	defer esClient.DeleteIndex(ctx)

	article := models.IndexedArticle{
		ID:        "mcp-test-1",
		Subdomain: "acme",
		ArticleID: 7,
		Title:     "Installing the desktop app",
		URL:       "https://acme.zendesk.com/hc/en-us/articles/7",
		UpdatedAt: "2024-01-01T00:00:00Z",
		Content:   "Download the installer and follow the installation steps.",
		IndexedAt: time.Now(),
	}
	if err := esClient.IndexDocument(ctx, article); err != nil {
		t.Fatalf("IndexDocument() error = %v", err)
	}
	esClient.Refresh(ctx)

	s := newServer(Config{Name: "zendesk-rag", Version: "1.0.0"}, esClient, nil)

	result, err := s.searchHandler(ctx, callRequest("search_articles", map[string]any{"query": "installation"}))
	if err != nil {
		t.Fatalf("searchHandler() error = %v", err)
	}
	var articles []models.IndexedArticle
	if err := json.Unmarshal([]byte(resultText(t, result)), &articles); err != nil {
		t.Fatalf("result is not JSON: %v", err)
	}
	if len(articles) == 0 {
		t.Error("search should return results for 'installation'")
	}

	got, err := s.getArticleHandler(ctx, callRequest("get_article", map[string]any{"id": "mcp-test-1"}))
	if err != nil || got.IsError {
		t.Fatalf("getArticleHandler() = %v, %v", got, err)
	}
}
