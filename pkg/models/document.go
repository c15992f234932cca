package models

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Article is a Help Center article as returned by the Zendesk API.
type Article struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	Body      string `json:"body"` // HTML
	HTMLURL   string `json:"html_url"`
	UpdatedAt string `json:"updated_at"`
}

// Metadata holds the article fields carried alongside a Document.
type Metadata struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	URL       string `json:"url"`
	UpdatedAt string `json:"updated_at"`
}

// Document is the plain-text rendition of one article.
type Document struct {
	Body     string   `json:"body"`
	Metadata Metadata `json:"metadata"`
}

// NewDocument pairs converted body text with the article's metadata.
func NewDocument(article Article, body string) Document {
	return Document{
		Body: body,
		Metadata: Metadata{
			ID:        article.ID,
			Title:     article.Title,
			URL:       article.HTMLURL,
			UpdatedAt: article.UpdatedAt,
		},
	}
}

// IndexedArticle is a Document as stored in the search index.
type IndexedArticle struct {
	ID        string    `json:"id"`
	Subdomain string    `json:"subdomain"`
	ArticleID int64     `json:"article_id"`
	Title     string    `json:"title"`
	URL       string    `json:"url"`
	UpdatedAt string    `json:"updated_at"`
	Content   string    `json:"content"`
	IndexedAt time.Time `json:"indexed_at"`
	Tags      []string  `json:"tags,omitempty"`      // LLM-generated search keywords
	Summary   string    `json:"summary,omitempty"`   // LLM-generated summary
	Embedding []float32 `json:"embedding,omitempty"` // Vector embedding of content
}

// NewIndexedArticle builds the index record for a document fetched from subdomain.
func NewIndexedArticle(subdomain string, doc Document) IndexedArticle {
	return IndexedArticle{
		ID:        GenerateDocumentID(doc.Metadata.URL),
		Subdomain: subdomain,
		ArticleID: doc.Metadata.ID,
		Title:     doc.Metadata.Title,
		URL:       doc.Metadata.URL,
		UpdatedAt: doc.Metadata.UpdatedAt,
		Content:   doc.Body,
		IndexedAt: time.Now(),
	}
}

// GenerateDocumentID creates a deterministic ID from URL.
// The ID is a SHA-256 hash (first 16 chars) of the URL.
func GenerateDocumentID(url string) string {
	hash := sha256.Sum256([]byte(url))
	return hex.EncodeToString(hash[:])[:16]
}
