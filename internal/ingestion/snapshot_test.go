package ingestion

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"

	"github.com/mfenderov/zendesk-rag/internal/storage"
	"github.com/mfenderov/zendesk-rag/internal/zendesk"
	"github.com/mfenderov/zendesk-rag/pkg/models"
)

// memoryStore is an in-memory bucket that can both write and read snapshots.
type memoryStore struct {
	docs    map[string]map[string]models.Document
	meta    map[string]storage.SnapshotMetadata
	failFor int64
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		docs: make(map[string]map[string]models.Document),
		meta: make(map[string]storage.SnapshotMetadata),
	}
}

func (m *memoryStore) PutDocument(_ context.Context, prefix string, doc models.Document) error {
	if doc.Metadata.ID == m.failFor {
		return errors.New("write refused")
	}
	if m.docs[prefix] == nil {
		m.docs[prefix] = make(map[string]models.Document)
	}
	m.docs[prefix][storage.DocumentFilename(doc.Metadata.ID)] = doc
	return nil
}

func (m *memoryStore) PutMetadata(_ context.Context, prefix string, meta storage.SnapshotMetadata) error {
	m.meta[prefix] = meta
	return nil
}

func (m *memoryStore) GetMetadata(_ context.Context, prefix string) (*storage.SnapshotMetadata, error) {
	meta, ok := m.meta[prefix]
	if !ok {
		return nil, errors.New("no metadata")
	}
	return &meta, nil
}

func (m *memoryStore) ListDocuments(_ context.Context, prefix string) ([]string, error) {
	var files []string
	for name := range m.docs[prefix] {
		files = append(files, name)
	}
	sort.Strings(files)
	return files, nil
}

func (m *memoryStore) GetDocument(_ context.Context, prefix, filename string) (*models.Document, error) {
	doc, ok := m.docs[prefix][filename]
	if !ok {
		return nil, errors.New("not found: " + filename)
	}
	return &doc, nil
}

func newTwoArticleHelpCenter(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"articles": [
			{"id": 1, "title": "Billing", "body": "<p>Invoices</p>", "html_url": "https://acme.zendesk.com/hc/en-us/articles/1", "updated_at": "2024-01-01T00:00:00Z"},
			{"id": 2, "title": "Login", "body": "<p>Sign in</p>", "html_url": "https://acme.zendesk.com/hc/en-us/articles/2", "updated_at": "2024-01-02T00:00:00Z"}
		], "next_page": null}`))
	}))
	t.Cleanup(server.Close)
	return server
}

func snapshotAndIngest(t *testing.T, store *memoryStore, index *fakeIndex) *Result {
	t.Helper()
	server := newTwoArticleHelpCenter(t)
	client := zendesk.New(zendesk.Config{Subdomain: "acme", BaseURL: server.URL})

	snap, err := client.FetchToStorage(t.Context(), store)
	if err != nil {
		t.Fatalf("FetchToStorage() error = %v", err)
	}

	result, err := New(store, index, nil).Ingest(t.Context(), snap.Prefix)
	if err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}
	return result
}

func TestSnapshotThenIngest_FailedWriteKeepsStaleArticles(t *testing.T) {
	store := newMemoryStore()
	store.failFor = 2
	index := &fakeIndex{prunedCount: 1}

	result := snapshotAndIngest(t, store, index)

	if result.DocsIndexed != 1 {
		t.Errorf("DocsIndexed = %d, want 1", result.DocsIndexed)
	}
	if len(index.pruned) != 0 || result.DocsDeleted != 0 {
		t.Errorf("pruned = %v, DocsDeleted = %d; article 2 still exists upstream and must stay indexed",
			index.pruned, result.DocsDeleted)
	}
	if len(result.Errors) == 0 {
		t.Error("an incomplete snapshot should be reported in Errors")
	}
}

func TestSnapshotThenIngest_CompleteSnapshotPrunes(t *testing.T) {
	store := newMemoryStore()
	index := &fakeIndex{prunedCount: 3}

	result := snapshotAndIngest(t, store, index)

	if result.DocsIndexed != 2 {
		t.Errorf("DocsIndexed = %d, want 2", result.DocsIndexed)
	}
	if len(index.pruned) != 1 || index.pruned[0] != "acme" || result.DocsDeleted != 3 {
		t.Errorf("pruned = %v, DocsDeleted = %d, want [acme] and 3", index.pruned, result.DocsDeleted)
	}
}
