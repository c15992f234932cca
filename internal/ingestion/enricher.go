package ingestion

import (
	"context"
	"log/slog"

	"github.com/mfenderov/zendesk-rag/internal/embeddings"
	"github.com/mfenderov/zendesk-rag/internal/llm"
	"github.com/mfenderov/zendesk-rag/pkg/models"
)

// Enricher adds LLM tags, a summary and an embedding to articles before
// indexing. Either client may be nil to disable that step.
type Enricher struct {
	LLM        *llm.Client
	Embeddings *embeddings.Client
}

// Enrich fills in Tags, Summary and Embedding. Failures are logged and the
// article is left without the missing fields; BM25 search still works.
func (e *Enricher) Enrich(ctx context.Context, article *models.IndexedArticle) {
	if e == nil {
		return
	}

	if e.LLM != nil {
		enrichment, err := e.LLM.EnrichArticle(ctx, article.Title, article.Content)
		if err != nil {
			slog.Warn("failed to enrich article", "article_id", article.ArticleID, "error", err)
		} else {
			article.Tags = enrichment.Tags
			article.Summary = enrichment.Summary
			slog.Debug("article enriched", "article_id", article.ArticleID, "tags", len(article.Tags))
		}
	}

	if e.Embeddings != nil {
		embedding, err := e.Embeddings.EmbedArticle(ctx, article.Title, article.Content)
		if err != nil {
			slog.Warn("failed to generate embedding", "article_id", article.ArticleID, "error", err)
		} else {
			article.Embedding = embedding
		}
	}
}
