package ingestion

import (
	"context"
	"log/slog"

	"github.com/mfenderov/zendesk-rag/internal/events"
)

// Consume ingests each snapshot announced on in and reports one
// IngestionCompleteEvent per snapshot. The returned channel closes after in
// is closed and drained.
func (e *Engine) Consume(ctx context.Context, in <-chan events.FetchCompleteEvent) <-chan events.IngestionCompleteEvent {
	out := make(chan events.IngestionCompleteEvent)

	go func() {
		defer close(out)
		for event := range in {
			slog.Debug("received fetch event", "subdomain", event.Subdomain, "prefix", event.Prefix, "documents", event.DocumentCount)

			done := events.IngestionCompleteEvent{Prefix: event.Prefix}
			result, err := e.Ingest(ctx, event.Prefix)
			if err != nil {
				done.Errors = []string{err.Error()}
			} else {
				done.DocsIndexed = result.DocsIndexed
				done.DocsDeleted = result.DocsDeleted
				done.Duration = result.Duration
				done.Errors = result.Errors
			}
			out <- done
		}
	}()

	return out
}
