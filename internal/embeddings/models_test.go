package embeddings

import "testing"

func TestDimensions(t *testing.T) {
	tests := []struct {
		model string
		want  int
	}{
		{"ai/embeddinggemma", 768},
		{"ai/embeddinggemma:latest", 768},
		{"ai/snowflake-arctic-embed", 1024},
		{"ai/qwen3-embedding", 2560},
		{"unknown-model", 768},
	}

	for _, tt := range tests {
		t.Run(tt.model, func(t *testing.T) {
			if got := Dimensions(tt.model); got != tt.want {
				t.Errorf("Dimensions(%q) = %v, want %v", tt.model, got, tt.want)
			}
		})
	}
}

func TestDocumentInput(t *testing.T) {
	tests := []struct {
		name    string
		model   string
		title   string
		content string
		want    string
	}{
		{"plain", "unknown-model", "Billing FAQ", "How invoices work.", "Billing FAQ\n\nHow invoices work."},
		{"plain without title", "unknown-model", "", "body only", "body only"},
		{"gemma", "ai/embeddinggemma", "Billing FAQ", "How invoices work.", "title: Billing FAQ | text: How invoices work."},
		{"gemma without title", "ai/embeddinggemma", "", "body", "title: none | text: body"},
		{"qwen3 passages carry no instruction", "ai/qwen3-embedding", "T", "c", "T\n\nc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DocumentInput(tt.model, tt.title, tt.content); got != tt.want {
				t.Errorf("DocumentInput() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestQueryInput(t *testing.T) {
	tests := []struct {
		model string
		want  string
	}{
		{"unknown-model", "reset password"},
		{"ai/embeddinggemma", "task: search result | query: reset password"},
		{"ai/snowflake-arctic-embed:latest", "Represent this sentence for searching relevant passages: reset password"},
		{"ai/qwen3-embedding", "Instruct: Given a help center search query, retrieve support articles that answer it\nQuery: reset password"},
	}

	for _, tt := range tests {
		t.Run(tt.model, func(t *testing.T) {
			if got := QueryInput(tt.model, "reset password"); got != tt.want {
				t.Errorf("QueryInput(%q) = %q, want %q", tt.model, got, tt.want)
			}
		})
	}
}
