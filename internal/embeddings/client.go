package embeddings

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"unicode/utf8"
)

// DefaultEndpoint is the Docker Model Runner embeddings path.
const DefaultEndpoint = "http://localhost/exp/vDD4.40/engines/llama.cpp/v1/embeddings"

// Config holds embeddings client configuration.
type Config struct {
	SocketPath string // Unix socket path for Docker Model Runner
	Model      string // Model name (e.g., "ai/embeddinggemma")
	Endpoint   string // Defaults to DefaultEndpoint
}

// Client wraps the Docker Model Runner embeddings API.
type Client struct {
	httpClient *http.Client
	model      string
	endpoint   string
}

// New creates a new embeddings client.
func New(config Config) (*Client, error) {
	if config.SocketPath == "" {
		return nil, fmt.Errorf("socket path is required")
	}
	if config.Model == "" {
		return nil, fmt.Errorf("model is required")
	}
	if config.Endpoint == "" {
		config.Endpoint = DefaultEndpoint
	}

	transport := &http.Transport{
		DialContext: func(ctx context.Context, _, _ string) (net.Conn, error) {
			var d net.Dialer
			return d.DialContext(ctx, "unix", config.SocketPath)
		},
	}

	return &Client{
		httpClient: &http.Client{Transport: transport},
		model:      config.Model,
		endpoint:   config.Endpoint,
	}, nil
}

type embeddingRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

type embeddingResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// MaxInputChars limits input to stay within model context window.
const MaxInputChars = 20000

// EmbedArticle embeds an article as a retrievable passage.
func (c *Client) EmbedArticle(ctx context.Context, title, content string) ([]float32, error) {
	return c.Embed(ctx, DocumentInput(c.model, title, content))
}

// EmbedQuery embeds a search query so it lands near matching articles.
func (c *Client) EmbedQuery(ctx context.Context, query string) ([]float32, error) {
	return c.Embed(ctx, QueryInput(c.model, query))
}

// truncate cuts text to at most MaxInputChars bytes without splitting a rune.
func truncate(text string) string {
	if len(text) <= MaxInputChars {
		return text
	}
	n := MaxInputChars
	for n > 0 && !utf8.RuneStart(text[n]) {
		n--
	}
	return text[:n]
}

// Embed generates an embedding vector for text as given, without any
// model prompt. Text exceeding MaxInputChars is truncated from the end.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	originalLen := len(text)
	text = truncate(text)
	slog.Debug("generating embedding", "model", c.model, "original_len", originalLen, "truncated_len", len(text))

	body, err := json.Marshal(embeddingRequest{Model: c.model, Input: text})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(respBody))
	}

	var embResp embeddingResponse
	if err := json.Unmarshal(respBody, &embResp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if embResp.Error != nil {
		return nil, fmt.Errorf("API error: %s", embResp.Error.Message)
	}

	if len(embResp.Data) == 0 {
		return nil, fmt.Errorf("no embedding returned")
	}

	return embResp.Data[0].Embedding, nil
}
