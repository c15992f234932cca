package ingestion

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mfenderov/zendesk-rag/internal/storage"
	"github.com/mfenderov/zendesk-rag/pkg/models"
)

// SnapshotReader reads a stored snapshot. *storage.Client implements it.
type SnapshotReader interface {
	GetMetadata(ctx context.Context, prefix string) (*storage.SnapshotMetadata, error)
	ListDocuments(ctx context.Context, prefix string) ([]string, error)
	GetDocument(ctx context.Context, prefix, filename string) (*models.Document, error)
}

// Indexer writes articles to the search index. *elasticsearch.Client implements it.
type Indexer interface {
	CreateIndex(ctx context.Context) error
	IndexDocument(ctx context.Context, doc models.IndexedArticle) error
	Refresh(ctx context.Context) error
	DeleteStale(ctx context.Context, subdomain string, before time.Time) (int, error)
}

// Result holds ingestion execution results.
type Result struct {
	Prefix      string
	DocsIndexed int
	DocsDeleted int // Articles no longer present in the Help Center
	Duration    time.Duration
	Errors      []string
}

// Engine reads snapshot documents from S3, enriches them, and indexes to Elasticsearch.
type Engine struct {
	storage  SnapshotReader
	index    Indexer
	enricher *Enricher
}

// New creates a new ingestion engine. enricher may be nil.
func New(storageClient SnapshotReader, index Indexer, enricher *Enricher) *Engine {
	return &Engine{
		storage:  storageClient,
		index:    index,
		enricher: enricher,
	}
}

// Ingest processes all documents under a snapshot prefix and indexes them.
func (e *Engine) Ingest(ctx context.Context, prefix string) (*Result, error) {
	start := time.Now()
	result := &Result{Prefix: prefix}

	slog.Info("starting ingestion", "prefix", prefix)

	if err := e.index.CreateIndex(ctx); err != nil {
		return nil, err
	}

	meta, err := e.storage.GetMetadata(ctx, prefix)
	if err != nil {
		return nil, err
	}

	files, err := e.snapshotFiles(ctx, prefix, meta)
	if err != nil {
		return nil, err
	}

	slog.Info("found documents to ingest", "subdomain", meta.Subdomain, "count", len(files))

	for _, filename := range files {
		if ctx.Err() != nil {
			result.Errors = append(result.Errors, "context cancelled")
			break
		}

		doc, err := e.storage.GetDocument(ctx, prefix, filename)
		if err != nil {
			result.Errors = append(result.Errors, err.Error())
			continue
		}

		article := models.NewIndexedArticle(meta.Subdomain, *doc)
		e.enricher.Enrich(ctx, &article)

		slog.Debug("indexing article", "id", article.ID, "article_id", article.ArticleID, "tags", len(article.Tags))
		if err := e.index.IndexDocument(ctx, article); err != nil {
			slog.Error("failed to index article", "article_id", article.ArticleID, "error", err)
			result.Errors = append(result.Errors, err.Error())
			continue
		}
		result.DocsIndexed++
	}

	if err := e.index.Refresh(ctx); err != nil {
		slog.Warn("failed to refresh index", "error", err)
	}

	// Only a complete snapshot proves which articles were removed upstream.
	if !meta.Complete() {
		slog.Warn("snapshot incomplete, keeping stale articles", "prefix", prefix, "failed_ids", meta.FailedIDs)
		result.Errors = append(result.Errors, fmt.Sprintf("snapshot incomplete: %d articles were not stored", len(meta.FailedIDs)))
	}
	if len(result.Errors) == 0 {
		deleted, err := e.index.DeleteStale(ctx, meta.Subdomain, start)
		if err != nil {
			result.Errors = append(result.Errors, err.Error())
		}
		result.DocsDeleted = deleted
	}

	result.Duration = time.Since(start)
	slog.Info("ingestion complete",
		"prefix", prefix,
		"docs_indexed", result.DocsIndexed,
		"docs_deleted", result.DocsDeleted,
		"duration", result.Duration,
		"errors", len(result.Errors))

	return result, nil
}

// snapshotFiles returns document filenames in the order the articles were
// fetched. Snapshots without article IDs fall back to the object listing.
func (e *Engine) snapshotFiles(ctx context.Context, prefix string, meta *storage.SnapshotMetadata) ([]string, error) {
	if len(meta.ArticleIDs) == 0 {
		return e.storage.ListDocuments(ctx, prefix)
	}
	files := make([]string, 0, len(meta.ArticleIDs))
	for _, id := range meta.ArticleIDs {
		files = append(files, storage.DocumentFilename(id))
	}
	return files, nil
}
