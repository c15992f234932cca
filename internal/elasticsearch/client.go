package elasticsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/mfenderov/zendesk-rag/pkg/models"
)

// Config holds Elasticsearch client configuration.
type Config struct {
	Addresses  []string
	Index      string
	Username   string
	Password   string
	Dimensions int // Embedding vector size, 768 when unset
}

// Client wraps the Elasticsearch client with Help Center article operations.
type Client struct {
	es         *elasticsearch.Client
	index      string
	dimensions int
}

const defaultDimensions = 768

// New creates a new Elasticsearch client.
func New(config Config) (*Client, error) {
	cfg := elasticsearch.Config{
		Addresses: config.Addresses,
		Username:  config.Username,
		Password:  config.Password,
	}

	es, err := elasticsearch.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create ES client: %w", err)
	}

	dims := config.Dimensions
	if dims <= 0 {
		dims = defaultDimensions
	}

	return &Client{
		es:         es,
		index:      config.Index,
		dimensions: dims,
	}, nil
}

// Ping checks if Elasticsearch is available.
func (c *Client) Ping(ctx context.Context) bool {
	res, err := c.es.Ping(c.es.Ping.WithContext(ctx))
	if err != nil {
		return false
	}
	defer res.Body.Close()
	return !res.IsError()
}

// indexMapping defines the ES index mapping for articles.
// Supports LLM-generated tags/summary and optional vector embeddings.
var indexMapping = `{
	"mappings": {
		"properties": {
			"id": { "type": "keyword" },
			"subdomain": { "type": "keyword" },
			"article_id": { "type": "long" },
			"url": { "type": "keyword" },
			"title": { "type": "text", "analyzer": "english" },
			"updated_at": { "type": "date" },
			"content": { "type": "text", "analyzer": "english" },
			"indexed_at": { "type": "date" },
			"tags": { "type": "text", "analyzer": "english" },
			"summary": { "type": "text", "analyzer": "english" },
			"embedding": {
				"type": "dense_vector",
				"dims": %d,
				"index": true,
				"similarity": "cosine"
			}
		}
	}
}`

// CreateIndex creates the index with proper mapping.
func (c *Client) CreateIndex(ctx context.Context) error {
	// Check if index exists
	res, err := c.es.Indices.Exists([]string{c.index}, c.es.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to check index: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode == 200 {
		// Index already exists
		return nil
	}

	// Create index
	res, err = c.es.Indices.Create(
		c.index,
		c.es.Indices.Create.WithContext(ctx),
		c.es.Indices.Create.WithBody(strings.NewReader(fmt.Sprintf(indexMapping, c.dimensions))),
	)
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("error creating index: %s", res.String())
	}

	return nil
}

// DeleteIndex removes the index (for testing/cleanup).
func (c *Client) DeleteIndex(ctx context.Context) error {
	res, err := c.es.Indices.Delete([]string{c.index}, c.es.Indices.Delete.WithContext(ctx))
	if err != nil {
		return err
	}
	defer res.Body.Close()
	return nil
}

// IndexDocument indexes a single article, replacing any previous version.
func (c *Client) IndexDocument(ctx context.Context, doc models.IndexedArticle) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}

	res, err := c.es.Index(
		c.index,
		bytes.NewReader(data),
		c.es.Index.WithContext(ctx),
		c.es.Index.WithDocumentID(doc.ID),
	)
	if err != nil {
		return fmt.Errorf("failed to index document: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("error indexing document (status %d): %s", res.StatusCode, res.String())
	}

	return nil
}

// Refresh forces an index refresh (useful for testing).
func (c *Client) Refresh(ctx context.Context) error {
	res, err := c.es.Indices.Refresh(
		c.es.Indices.Refresh.WithContext(ctx),
		c.es.Indices.Refresh.WithIndex(c.index),
	)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	return nil
}

// searchResponse represents ES search response structure.
type searchResponse struct {
	Hits struct {
		Hits []struct {
			Source models.IndexedArticle `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

func (sr *searchResponse) articles() []models.IndexedArticle {
	docs := make([]models.IndexedArticle, len(sr.Hits.Hits))
	for i, hit := range sr.Hits.Hits {
		docs[i] = hit.Source
	}
	return docs
}

// Search performs a BM25 text search on article content, title, tags, and summary.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]models.IndexedArticle, error) {
	return c.SearchSubdomain(ctx, "", query, limit)
}

// SearchSubdomain is Search restricted to one Help Center. An empty
// subdomain searches every indexed Help Center.
func (c *Client) SearchSubdomain(ctx context.Context, subdomain, query string, limit int) ([]models.IndexedArticle, error) {
	return c.search(ctx, map[string]any{
		"query": textQuery(subdomain, query, "title^3", "content", "tags^2", "summary"),
		"size":  limit,
	})
}

// textQuery builds a multi_match over fields, filtered to subdomain when set.
func textQuery(subdomain, query string, fields ...string) map[string]any {
	match := map[string]any{
		"multi_match": map[string]any{
			"query":  query,
			"fields": fields,
		},
	}
	if subdomain == "" {
		return match
	}
	return map[string]any{
		"bool": map[string]any{
			"must":   match,
			"filter": subdomainFilter(subdomain),
		},
	}
}

func subdomainFilter(subdomain string) map[string]any {
	return map[string]any{"term": map[string]any{"subdomain": subdomain}}
}

// HybridSearch combines BM25 and kNN over article embeddings with reciprocal
// rank fusion. An empty subdomain searches every Help Center. If
// queryEmbedding is nil, falls back to BM25 only.
func (c *Client) HybridSearch(ctx context.Context, subdomain, query string, queryEmbedding []float32, limit int) ([]models.IndexedArticle, error) {
	if queryEmbedding == nil {
		return c.SearchSubdomain(ctx, subdomain, query, limit)
	}

	knn := map[string]any{
		"field":          "embedding",
		"query_vector":   queryEmbedding,
		"k":              limit,
		"num_candidates": limit * 2,
	}
	if subdomain != "" {
		knn["filter"] = subdomainFilter(subdomain)
	}

	return c.search(ctx, map[string]any{
		"retriever": map[string]any{
			"rrf": map[string]any{
				"retrievers": []map[string]any{
					{"standard": map[string]any{
						"query": textQuery(subdomain, query, "title^3", "content", "summary"),
					}},
					{"knn": knn},
				},
			},
		},
		"size": limit,
	})
}

func (c *Client) search(ctx context.Context, body map[string]any) ([]models.IndexedArticle, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal query: %w", err)
	}

	res, err := c.es.Search(
		c.es.Search.WithContext(ctx),
		c.es.Search.WithIndex(c.index),
		c.es.Search.WithBody(bytes.NewReader(data)),
	)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("search error: %s", res.String())
	}

	var sr searchResponse
	if err := json.NewDecoder(res.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return sr.articles(), nil
}

// DeleteStale removes articles of subdomain indexed before the given time,
// i.e. articles that no longer exist in the Help Center after a full sync.
func (c *Client) DeleteStale(ctx context.Context, subdomain string, before time.Time) (int, error) {
	data, err := json.Marshal(map[string]any{
		"query": map[string]any{
			"bool": map[string]any{
				"filter": []map[string]any{
					{"term": map[string]any{"subdomain": subdomain}},
					{"range": map[string]any{"indexed_at": map[string]any{"lt": before.UTC().Format(time.RFC3339Nano)}}},
				},
			},
		},
	})
	if err != nil {
		return 0, fmt.Errorf("failed to marshal query: %w", err)
	}

	res, err := c.es.DeleteByQuery(
		[]string{c.index},
		bytes.NewReader(data),
		c.es.DeleteByQuery.WithContext(ctx),
		c.es.DeleteByQuery.WithRefresh(true),
	)
	if err != nil {
		return 0, fmt.Errorf("delete stale failed: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return 0, fmt.Errorf("delete stale error: %s", res.String())
	}

	var dr struct {
		Deleted int `json:"deleted"`
	}
	if err := json.NewDecoder(res.Body).Decode(&dr); err != nil {
		return 0, fmt.Errorf("failed to decode response: %w", err)
	}
	return dr.Deleted, nil
}

// getResponse represents ES get response structure.
type getResponse struct {
	Found  bool                  `json:"found"`
	Source models.IndexedArticle `json:"_source"`
}

// GetDocument retrieves an article by ID. Returns nil when not found.
func (c *Client) GetDocument(ctx context.Context, id string) (*models.IndexedArticle, error) {
	res, err := c.es.Get(
		c.index,
		id,
		c.es.Get.WithContext(ctx),
	)
	if err != nil {
		return nil, fmt.Errorf("get failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode == 404 {
		return nil, nil
	}

	if res.IsError() {
		return nil, fmt.Errorf("get error: %s", res.String())
	}

	var gr getResponse
	if err := json.NewDecoder(res.Body).Decode(&gr); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if !gr.Found {
		return nil, nil
	}

	return &gr.Source, nil
}
