// Package retrieval chooses between text and hybrid search over the article index.
package retrieval

import (
	"context"
	"log/slog"

	"github.com/mfenderov/zendesk-rag/pkg/models"
)

// Index is the query side of the article index. *elasticsearch.Client implements it.
type Index interface {
	SearchSubdomain(ctx context.Context, subdomain, query string, limit int) ([]models.IndexedArticle, error)
	HybridSearch(ctx context.Context, subdomain, query string, queryEmbedding []float32, limit int) ([]models.IndexedArticle, error)
}

// QueryEmbedder turns a search query into a vector. *embeddings.Client implements it.
type QueryEmbedder interface {
	EmbedQuery(ctx context.Context, query string) ([]float32, error)
}

// Searcher runs hybrid search when an embedder is configured and BM25 otherwise.
type Searcher struct {
	index    Index
	embedder QueryEmbedder
}

// New returns a Searcher. embedder may be nil.
func New(index Index, embedder QueryEmbedder) *Searcher {
	return &Searcher{index: index, embedder: embedder}
}

// Search returns up to limit articles for query. An empty subdomain searches
// every Help Center. A failed query embedding or hybrid query degrades to
// text search instead of failing the request.
func (s *Searcher) Search(ctx context.Context, subdomain, query string, limit int) ([]models.IndexedArticle, error) {
	if s.embedder == nil {
		return s.index.SearchSubdomain(ctx, subdomain, query, limit)
	}

	vector, err := s.embedder.EmbedQuery(ctx, query)
	if err != nil {
		slog.Warn("query embedding failed, using text search", "error", err)
		return s.index.SearchSubdomain(ctx, subdomain, query, limit)
	}

	articles, err := s.index.HybridSearch(ctx, subdomain, query, vector, limit)
	if err != nil {
		slog.Warn("hybrid search failed, using text search", "error", err)
		return s.index.SearchSubdomain(ctx, subdomain, query, limit)
	}
	return articles, nil
}
