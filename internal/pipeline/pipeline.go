package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mfenderov/zendesk-rag/internal/elasticsearch"
	"github.com/mfenderov/zendesk-rag/internal/embeddings"
	"github.com/mfenderov/zendesk-rag/internal/ingestion"
	"github.com/mfenderov/zendesk-rag/internal/llm"
	"github.com/mfenderov/zendesk-rag/internal/zendesk"
	"github.com/mfenderov/zendesk-rag/pkg/models"
)

// EmbeddingsConfig holds embeddings-specific configuration.
type EmbeddingsConfig struct {
	Enabled    bool
	SocketPath string
	Model      string
}

// LLMConfig holds LLM enrichment configuration.
type LLMConfig struct {
	Enabled    bool
	SocketPath string
	Model      string
}

// Config holds pipeline configuration.
type Config struct {
	ESAddresses      []string
	ESIndex          string
	ESUsername       string
	ESPassword       string
	ESDimensions     int
	Zendesk          zendesk.Config // Subdomain is set per Run
	EmbeddingsConfig EmbeddingsConfig
	LLMConfig        LLMConfig
}

// Result holds pipeline execution results.
type Result struct {
	Subdomain       string
	ArticlesFetched int
	DocsIndexed     int
	DocsDeleted     int
	Duration        time.Duration
	Errors          []error
}

// Pipeline fetches Help Center articles and indexes them without object storage.
type Pipeline struct {
	config   Config
	esClient *elasticsearch.Client
	index    ingestion.Indexer
	enricher *ingestion.Enricher
}

// New creates a new Pipeline with the given configuration.
func New(config Config) (*Pipeline, error) {
	esClient, err := elasticsearch.New(elasticsearch.Config{
		Addresses:  config.ESAddresses,
		Index:      config.ESIndex,
		Username:   config.ESUsername,
		Password:   config.ESPassword,
		Dimensions: config.ESDimensions,
	})
	if err != nil {
		return nil, err
	}

	enricher := &ingestion.Enricher{}

	if config.EmbeddingsConfig.Enabled {
		enricher.Embeddings, err = embeddings.New(embeddings.Config{
			SocketPath: config.EmbeddingsConfig.SocketPath,
			Model:      config.EmbeddingsConfig.Model,
		})
		if err != nil {
			return nil, err
		}
		slog.Info("embeddings enabled", "model", config.EmbeddingsConfig.Model)
	}

	if config.LLMConfig.Enabled {
		enricher.LLM, err = llm.New(llm.Config{
			SocketPath: config.LLMConfig.SocketPath,
			Model:      config.LLMConfig.Model,
		})
		if err != nil {
			return nil, err
		}
		slog.Info("LLM enrichment enabled", "model", config.LLMConfig.Model)
	}

	return &Pipeline{
		config:   config,
		esClient: esClient,
		index:    esClient,
		enricher: enricher,
	}, nil
}

// Run fetches every article of subdomain and indexes it. A failed fetch
// aborts the run before anything is indexed.
func (p *Pipeline) Run(ctx context.Context, subdomain string) (*Result, error) {
	start := time.Now()
	result := &Result{Subdomain: subdomain}

	zcfg := p.config.Zendesk
	zcfg.Subdomain = subdomain
	docs, err := zendesk.New(zcfg).FetchAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", subdomain, err)
	}
	result.ArticlesFetched = len(docs)

	if err := p.index.CreateIndex(ctx); err != nil {
		return nil, err
	}

	// Sequential: the model runner serves one request at a time.
	for _, doc := range docs {
		if ctx.Err() != nil {
			result.Errors = append(result.Errors, ctx.Err())
			break
		}

		article := models.NewIndexedArticle(subdomain, doc)
		p.enricher.Enrich(ctx, &article)

		if err := p.index.IndexDocument(ctx, article); err != nil {
			result.Errors = append(result.Errors, err)
		} else {
			result.DocsIndexed++
		}
	}

	if err := p.index.Refresh(ctx); err != nil {
		slog.Warn("failed to refresh index", "error", err)
	}

	if len(result.Errors) == 0 {
		deleted, err := p.index.DeleteStale(ctx, subdomain, start)
		if err != nil {
			result.Errors = append(result.Errors, err)
		}
		result.DocsDeleted = deleted
	}

	result.Duration = time.Since(start)
	slog.Info("pipeline complete",
		"subdomain", subdomain,
		"articles", result.ArticlesFetched,
		"docs_indexed", result.DocsIndexed,
		"docs_deleted", result.DocsDeleted,
		"duration", result.Duration)
	return result, nil
}

// Search queries the indexed articles.
func (p *Pipeline) Search(ctx context.Context, query string, limit int) ([]models.IndexedArticle, error) {
	return p.esClient.Search(ctx, query, limit)
}

// DeleteIndex removes the index (for testing/cleanup).
func (p *Pipeline) DeleteIndex(ctx context.Context) error {
	return p.esClient.DeleteIndex(ctx)
}
