package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
)

// DefaultEndpoint is the Docker Model Runner chat completions path.
const DefaultEndpoint = "http://localhost/exp/vDD4.40/engines/llama.cpp/v1/chat/completions"

// Config holds LLM client configuration.
type Config struct {
	SocketPath string // Unix socket path for Docker Model Runner
	Model      string // Model name (e.g., "ai/gemma3")
	Endpoint   string // Defaults to DefaultEndpoint
}

// Client wraps the Docker Model Runner chat completions API.
type Client struct {
	httpClient *http.Client
	model      string
	endpoint   string
}

// New creates a new LLM client.
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

type chatRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Complete sends a prompt to the LLM and returns the response.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	return c.CompleteWithMaxTokens(ctx, prompt, 0)
}

// CompleteWithMaxTokens sends a prompt with a token limit on the response.
// If maxTokens is 0, no limit is applied.
func (c *Client) CompleteWithMaxTokens(ctx context.Context, prompt string, maxTokens int) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model:     c.model,
		Messages:  []chatMessage{{Role: "user", Content: prompt}},
		MaxTokens: maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(respBody))
	}

	var chatResp chatResponse
	if err := json.Unmarshal(respBody, &chatResp); err != nil {
		return "", fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if chatResp.Error != nil {
		return "", fmt.Errorf("API error: %s", chatResp.Error.Message)
	}

	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("no response returned")
	}

	return strings.TrimSpace(chatResp.Choices[0].Message.Content), nil
}

// EnrichmentResult holds the generated tags and summary.
type EnrichmentResult struct {
	Tags    []string
	Summary string
}

// MaxContentForEnrichment limits article text sent to the LLM.
const MaxContentForEnrichment = 20000

const tagsPrompt = `You are indexing a customer support knowledge base so that customers and support agents can find the right help article.

Search combines BM25 keyword matching with vector similarity.

Generate 10-15 search terms for the article below:
1. The words a CUSTOMER would type when they have this problem (symptoms, error messages, "how do I ...")
2. SYNONYMS for product features and actions (e.g. "sign in", "log in", "login")
3. Related tasks or settings that are not named explicitly in the text
4. Common misspellings of key terms

ARTICLE:
Title: %s

%s

Return ONLY comma-separated terms. No numbering, no quotes, no explanations.`

const summaryPrompt = `You are indexing a customer support knowledge base.

Write a summary (2-4 paragraphs) of the help article below that will be shown in search results and embedded for semantic search:
1. What question or problem the article answers and who it is for (customers, admins, agents)
2. The steps, settings or features involved, using the exact names from the article
3. Prerequisites, plan limitations or related articles it mentions

ARTICLE:
Title: %s

%s

Return ONLY the summary paragraphs. No headers, no bullet points, no preamble.`

// EnrichArticle generates search tags and a summary for a help article.
// Requests run sequentially because the model runner serves one at a time.
func (c *Client) EnrichArticle(ctx context.Context, title, content string) (*EnrichmentResult, error) {
	if len(content) > MaxContentForEnrichment {
		content = content[:MaxContentForEnrichment]
	}

	slog.Debug("generating tags", "title", title)
	tagsResp, err := c.Complete(ctx, fmt.Sprintf(tagsPrompt, title, content))
	if err != nil {
		return nil, fmt.Errorf("failed to generate tags: %w", err)
	}

	slog.Debug("generating summary", "title", title)
	summaryResp, err := c.Complete(ctx, fmt.Sprintf(summaryPrompt, title, content))
	if err != nil {
		return nil, fmt.Errorf("failed to generate summary: %w", err)
	}

	return &EnrichmentResult{
		Tags:    ParseTags(tagsResp),
		Summary: summaryResp,
	}, nil
}

// ParseTags splits a comma-separated model reply into unique, trimmed tags.
func ParseTags(reply string) []string {
	var tags []string
	seen := make(map[string]bool)
	for _, tag := range strings.Split(reply, ",") {
		tag = strings.Trim(strings.TrimSpace(tag), `"'`)
		key := strings.ToLower(tag)
		if tag == "" || seen[key] {
			continue
		}
		seen[key] = true
		tags = append(tags, tag)
	}
	return tags
}
