package config

import (
	"time"

	"github.com/mfenderov/zendesk-rag/internal/embeddings"
)

// Config holds all application configuration.
type Config struct {
	Zendesk       Zendesk       `mapstructure:"zendesk"`
	Sources       []Source      `mapstructure:"sources"`
	Elasticsearch Elasticsearch `mapstructure:"elasticsearch"`
	Embeddings    Embeddings    `mapstructure:"embeddings"`
	LLM           LLM           `mapstructure:"llm"`
	Storage       Storage       `mapstructure:"storage"`
	MCP           MCP           `mapstructure:"mcp"`
}

// Zendesk holds Help Center connector settings shared by every source.
type Zendesk struct {
	BaseURL    string        `mapstructure:"base_url"` // Overrides https://{subdomain}.zendesk.com
	Locale     string        `mapstructure:"locale"`
	PerPage    int           `mapstructure:"per_page"`
	Timeout    time.Duration `mapstructure:"timeout"`
	UserAgent  string        `mapstructure:"user_agent"`
	Delay      time.Duration `mapstructure:"delay"`
	BodyFormat string        `mapstructure:"body_format"` // "text" or "markdown"
	Email      string        `mapstructure:"email"`
	APIToken   string        `mapstructure:"api_token"`
}

// Source names a Help Center to sync.
type Source struct {
	Name      string `mapstructure:"name"`
	Subdomain string `mapstructure:"subdomain"`
}

// Elasticsearch holds ES connection configuration.
type Elasticsearch struct {
	Addresses  []string `mapstructure:"addresses"`
	Index      string   `mapstructure:"index"`
	Username   string   `mapstructure:"username"`
	Password   string   `mapstructure:"password"`
	Dimensions int      `mapstructure:"dimensions"` // 0 derives from the embeddings model
}

// Embeddings holds embeddings generation configuration.
type Embeddings struct {
	Enabled    bool   `mapstructure:"enabled"`
	SocketPath string `mapstructure:"socket_path"`
	Model      string `mapstructure:"model"`
}

// LLM holds LLM enrichment configuration for tag/summary generation.
type LLM struct {
	Enabled    bool   `mapstructure:"enabled"`
	SocketPath string `mapstructure:"socket_path"`
	Model      string `mapstructure:"model"`
}

// Storage holds S3/MinIO snapshot storage configuration.
// An empty endpoint disables snapshots.
type Storage struct {
	Endpoint        string `mapstructure:"endpoint"`
	Bucket          string `mapstructure:"bucket"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	UseSSL          bool   `mapstructure:"use_ssl"`
}

// MCP holds MCP server configuration.
type MCP struct {
	Name    string `mapstructure:"name"`
	Version string `mapstructure:"version"`
}

// Subdomains returns the subdomains to sync. A non-empty name selects one
// configured source by name or subdomain; ok is false when nothing matched.
func (c Config) Subdomains(name string) (subdomains []string, ok bool) {
	for _, source := range c.Sources {
		if source.Subdomain == "" {
			continue
		}
		if name != "" && source.Name != name && source.Subdomain != name {
			continue
		}
		subdomains = append(subdomains, source.Subdomain)
	}
	return subdomains, len(subdomains) > 0
}

// VectorDimensions is the embedding field size for the index mapping: the
// configured elasticsearch.dimensions, or the embeddings model's size when unset.
func (c Config) VectorDimensions() int {
	if c.Elasticsearch.Dimensions > 0 {
		return c.Elasticsearch.Dimensions
	}
	return embeddings.Dimensions(c.Embeddings.Model)
}

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	return Config{
		Zendesk: Zendesk{
			Locale:     "en-us",
			PerPage:    100,
			Timeout:    30 * time.Second,
			UserAgent:  "zendesk-rag/1.0",
			Delay:      0,
			BodyFormat: "text",
		},
		Elasticsearch: Elasticsearch{
			Addresses:  []string{"http://localhost:9200"},
			Index:      "zendesk-rag-articles",
			Dimensions: 0,
		},
		Embeddings: Embeddings{
			Enabled:    false, // Disabled by default, requires DMR setup
			SocketPath: "",    // User must provide their Docker socket path
			Model:      "ai/embeddinggemma",
		},
		LLM: LLM{
			Enabled:    false, // Disabled by default, requires DMR setup
			SocketPath: "",    // User must provide their Docker socket path
			Model:      "ai/gemma3",
		},
		Storage: Storage{
			Endpoint:        "", // Snapshots off unless configured
			Bucket:          "zendesk-rag",
			AccessKeyID:     "minioadmin",
			SecretAccessKey: "minioadmin",
			UseSSL:          false,
		},
		MCP: MCP{
			Name:    "zendesk-rag",
			Version: "1.0.0",
		},
	}
}
