package zendesk

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/mfenderov/zendesk-rag/internal/storage"
	"github.com/mfenderov/zendesk-rag/pkg/models"
)

// SnapshotStore persists fetched documents. *storage.Client implements it.
type SnapshotStore interface {
	PutDocument(ctx context.Context, prefix string, doc models.Document) error
	PutMetadata(ctx context.Context, prefix string, meta storage.SnapshotMetadata) error
}

// SnapshotResult holds the result of a FetchToStorage operation.
type SnapshotResult struct {
	Prefix        string  // S3 prefix where documents were written
	DocumentCount int     // Number of documents written
	Subdomain     string
	FailedIDs     []int64 // Articles whose document write failed
}

// Complete reports whether every fetched article was written.
func (r *SnapshotResult) Complete() bool {
	return len(r.FailedIDs) == 0
}

// SnapshotPrefix builds a unique prefix: snapshots/{subdomain}/{timestamp}-{shortid}.
func SnapshotPrefix(subdomain string, now time.Time) string {
	timestamp := now.UTC().Format("2006-01-02T15-04-05")
	shortID := uuid.NewString()[:8]
	return fmt.Sprintf("snapshots/%s/%s-%s", subdomain, timestamp, shortID)
}

// FetchToStorage fetches every article and writes the documents to store.
// Nothing is written when the fetch fails. Documents that cannot be written
// are skipped and recorded as failed, which marks the snapshot incomplete.
func (c *Client) FetchToStorage(ctx context.Context, store SnapshotStore) (*SnapshotResult, error) {
	docs, err := c.FetchAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch failed: %w", err)
	}

	prefix := SnapshotPrefix(c.config.Subdomain, time.Now())
	slog.Info("writing snapshot", "subdomain", c.config.Subdomain, "prefix", prefix, "documents", len(docs))

	var articleIDs, failedIDs []int64
	for _, doc := range docs {
		if err := store.PutDocument(ctx, prefix, doc); err != nil {
			slog.Error("failed to write document", "id", doc.Metadata.ID, "error", err)
			failedIDs = append(failedIDs, doc.Metadata.ID)
			continue
		}
		articleIDs = append(articleIDs, doc.Metadata.ID)
	}

	meta := storage.SnapshotMetadata{
		Subdomain:     c.config.Subdomain,
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
		DocumentCount: len(articleIDs),
		ArticleIDs:    articleIDs,
		FailedIDs:     failedIDs,
	}
	if err := store.PutMetadata(ctx, prefix, meta); err != nil {
		return nil, fmt.Errorf("failed to write metadata: %w", err)
	}

	slog.Info("snapshot written", "subdomain", c.config.Subdomain, "prefix", prefix,
		"documents", len(articleIDs), "failed", len(failedIDs))

	return &SnapshotResult{
		Prefix:        prefix,
		DocumentCount: len(articleIDs),
		Subdomain:     c.config.Subdomain,
		FailedIDs:     failedIDs,
	}, nil
}
