package events

import "time"

// FetchCompleteEvent is sent when a Help Center snapshot has been written to S3.
type FetchCompleteEvent struct {
	Bucket        string    // S3 bucket name (e.g., "zendesk-rag")
	Prefix        string    // S3 prefix (e.g., "snapshots/acme/2024-12-04T17-30-00-abc123")
	Subdomain     string    // Zendesk subdomain that was fetched
	DocumentCount int       // Number of documents written
	Timestamp     time.Time // When the snapshot completed
}

// IngestionCompleteEvent is sent when ingestion of a snapshot finishes.
type IngestionCompleteEvent struct {
	Prefix      string        // S3 prefix that was ingested
	DocsIndexed int           // Number of documents indexed
	DocsDeleted int           // Stale articles removed from the index
	Duration    time.Duration // How long ingestion took
	Errors      []string      // Any errors encountered (non-fatal)
}
