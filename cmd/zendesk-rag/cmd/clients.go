package cmd

import (
	"fmt"
	"log/slog"

	"github.com/mfenderov/zendesk-rag/internal/config"
	"github.com/mfenderov/zendesk-rag/internal/elasticsearch"
	"github.com/mfenderov/zendesk-rag/internal/embeddings"
	"github.com/mfenderov/zendesk-rag/internal/ingestion"
	"github.com/mfenderov/zendesk-rag/internal/llm"
	"github.com/mfenderov/zendesk-rag/internal/processor"
	"github.com/mfenderov/zendesk-rag/internal/retrieval"
	"github.com/mfenderov/zendesk-rag/internal/storage"
	"github.com/mfenderov/zendesk-rag/internal/zendesk"
)

func zendeskConfig(cfg config.Zendesk, subdomain string) (zendesk.Config, error) {
	format, err := processor.ParseFormat(cfg.BodyFormat)
	if err != nil {
		return zendesk.Config{}, err
	}
	return zendesk.Config{
		Subdomain:  subdomain,
		BaseURL:    cfg.BaseURL,
		Locale:     cfg.Locale,
		PerPage:    cfg.PerPage,
		Timeout:    cfg.Timeout,
		UserAgent:  cfg.UserAgent,
		Delay:      cfg.Delay,
		Email:      cfg.Email,
		APIToken:   cfg.APIToken,
		BodyFormat: format,
	}, nil
}

func newESClient(cfg *config.Config) (*elasticsearch.Client, error) {
	esClient, err := elasticsearch.New(elasticsearch.Config{
		Addresses:  cfg.Elasticsearch.Addresses,
		Index:      cfg.Elasticsearch.Index,
		Username:   cfg.Elasticsearch.Username,
		Password:   cfg.Elasticsearch.Password,
		Dimensions: cfg.VectorDimensions(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create ES client: %w", err)
	}
	return esClient, nil
}

func newStorageClient(cfg config.Storage) (*storage.Client, error) {
	storageClient, err := storage.New(storage.Config{
		Endpoint:        cfg.Endpoint,
		Bucket:          cfg.Bucket,
		AccessKeyID:     cfg.AccessKeyID,
		SecretAccessKey: cfg.SecretAccessKey,
		UseSSL:          cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	return storageClient, nil
}

func embeddingsConfig(cfg config.Embeddings) embeddings.Config {
	return embeddings.Config{
		SocketPath: cfg.SocketPath,
		Model:      cfg.Model,
	}
}

// newQueryEmbedder returns an untyped nil when embeddings are disabled so
// retrieval falls back to text search.
func newQueryEmbedder(cfg config.Embeddings) (retrieval.QueryEmbedder, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	embedClient, err := embeddings.New(embeddingsConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to create embeddings client: %w", err)
	}
	return embedClient, nil
}

// newEnricher returns the optional LLM and embeddings clients, or nil when
// both are disabled.
func newEnricher(cfg *config.Config) (*ingestion.Enricher, error) {
	if !cfg.Embeddings.Enabled && !cfg.LLM.Enabled {
		return nil, nil
	}
	enricher := &ingestion.Enricher{}

	if cfg.Embeddings.Enabled {
		embedClient, err := embeddings.New(embeddingsConfig(cfg.Embeddings))
		if err != nil {
			return nil, fmt.Errorf("failed to create embeddings client: %w", err)
		}
		enricher.Embeddings = embedClient
		slog.Info("embeddings enabled", "model", cfg.Embeddings.Model)
	}

	if cfg.LLM.Enabled {
		llmClient, err := llm.New(llm.Config{
			SocketPath: cfg.LLM.SocketPath,
			Model:      cfg.LLM.Model,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create LLM client: %w", err)
		}
		enricher.LLM = llmClient
		slog.Info("LLM enrichment enabled", "model", cfg.LLM.Model)
	}

	return enricher, nil
}
