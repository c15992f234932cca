package config

import (
	"reflect"
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	if cfg.Zendesk.Locale != "en-us" || cfg.Zendesk.PerPage != 100 {
		t.Errorf("Zendesk locale/per_page = %q/%d, want en-us/100", cfg.Zendesk.Locale, cfg.Zendesk.PerPage)
	}
	if cfg.Zendesk.Timeout != 30*time.Second {
		t.Errorf("Zendesk.Timeout = %v, want 30s", cfg.Zendesk.Timeout)
	}
	if cfg.Zendesk.BodyFormat != "text" {
		t.Errorf("Zendesk.BodyFormat = %q, want text", cfg.Zendesk.BodyFormat)
	}
	if cfg.Zendesk.Email != "" || cfg.Zendesk.APIToken != "" {
		t.Error("authentication should be off by default")
	}
	if cfg.Storage.Endpoint != "" {
		t.Errorf("Storage.Endpoint = %q, want empty", cfg.Storage.Endpoint)
	}
	if cfg.Embeddings.Enabled || cfg.LLM.Enabled {
		t.Error("enrichment should be disabled by default")
	}
}

func TestConfig_Subdomains(t *testing.T) {
	cfg := Config{Sources: []Source{
		{Name: "support", Subdomain: "acme"},
		{Name: "partners", Subdomain: "acme-partners"},
		{Name: "broken"},
	}}

	tests := []struct {
		name   string
		filter string
		want   []string
		wantOK bool
	}{
		{name: "all", filter: "", want: []string{"acme", "acme-partners"}, wantOK: true},
		{name: "by name", filter: "partners", want: []string{"acme-partners"}, wantOK: true},
		{name: "by subdomain", filter: "acme", want: []string{"acme"}, wantOK: true},
		{name: "unknown", filter: "nope", want: nil, wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := cfg.Subdomains(tt.filter)
			if ok != tt.wantOK || !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Subdomains(%q) = %v, %v; want %v, %v", tt.filter, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestConfig_VectorDimensions(t *testing.T) {
	tests := []struct {
		name       string
		dimensions int
		model      string
		want       int
	}{
		{name: "default model", model: "ai/embeddinggemma", want: 768},
		{name: "derived from model", model: "ai/qwen3-embedding", want: 2560},
		{name: "derived from tagged model", model: "ai/snowflake-arctic-embed:latest", want: 1024},
		{name: "explicit wins", dimensions: 384, model: "ai/qwen3-embedding", want: 384},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			cfg.Elasticsearch.Dimensions = tt.dimensions
			cfg.Embeddings.Model = tt.model
			if got := cfg.VectorDimensions(); got != tt.want {
				t.Errorf("VectorDimensions() = %d, want %d", got, tt.want)
			}
		})
	}
}
