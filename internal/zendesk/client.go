package zendesk

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"
	"github.com/mfenderov/zendesk-rag/internal/processor"
	"github.com/mfenderov/zendesk-rag/pkg/models"
)

const (
	defaultLocale    = "en-us"
	defaultPerPage   = 100
	defaultTimeout   = 30 * time.Second
	defaultUserAgent = "zendesk-rag/1.0"
)

// Config holds Help Center connector configuration.
type Config struct {
	Subdomain  string
	BaseURL    string // Defaults to https://{Subdomain}.zendesk.com
	Locale     string
	PerPage    int
	Timeout    time.Duration
	UserAgent  string
	Delay      time.Duration // Pause after each page request
	Email      string        // API token auth, used only together with APIToken
	APIToken   string
	BodyFormat processor.Format
}

// StatusError is returned when the API answers with a non-success status.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("API error (status %d): %s", e.StatusCode, e.URL)
}

// Client reads Help Center articles from one Zendesk subdomain.
type Client struct {
	config    Config
	processor *processor.Processor
}

// New creates a Client. No request is made until a fetch is called.
func New(config Config) *Client {
	if config.Locale == "" {
		config.Locale = defaultLocale
	}
	if config.PerPage <= 0 {
		config.PerPage = defaultPerPage
	}
	if config.Timeout == 0 {
		config.Timeout = defaultTimeout
	}
	if config.UserAgent == "" {
		config.UserAgent = defaultUserAgent
	}
	return &Client{
		config:    config,
		processor: processor.NewWithFormat(config.BodyFormat),
	}
}

// Subdomain returns the configured Zendesk subdomain.
func (c *Client) Subdomain() string {
	return c.config.Subdomain
}

// FirstPageURL returns the URL requested for NoCursor.
func (c *Client) FirstPageURL() string {
	base := c.config.BaseURL
	if base == "" {
		base = fmt.Sprintf("https://%s.zendesk.com", c.config.Subdomain)
	}
	return fmt.Sprintf("%s/api/v2/help_center/%s/articles?per_page=%d",
		strings.TrimSuffix(base, "/"), url.PathEscape(c.config.Locale), c.config.PerPage)
}

// articlesResponse is the subset of the list articles response we read.
type articlesResponse struct {
	Articles []models.Article `json:"articles"`
	NextPage string           `json:"next_page"`
}

// FetchPage requests a single page of articles.
// NoCursor requests the first page; any other cursor is requested verbatim.
func (c *Client) FetchPage(ctx context.Context, cursor Cursor) (*Page, error) {
	pageURL := c.FirstPageURL()
	if !cursor.IsZero() {
		pageURL = cursor.URL()
	}

	body, err := c.get(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	var resp articlesResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode articles page %s: %w", pageURL, err)
	}

	return &Page{
		Articles: resp.Articles,
		Next:     NextPage(resp.NextPage),
	}, nil
}

// FetchAll walks every page of the articles listing and converts each article
// into a Document, in the order the API returned them.
// Any failure aborts the walk and no documents are returned.
func (c *Client) FetchAll(ctx context.Context) ([]models.Document, error) {
	var docs []models.Document
	cursor := NoCursor

	slog.Debug("starting article fetch", "subdomain", c.config.Subdomain, "format", c.processor.Format())

	for pageNum := 1; ; pageNum++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		page, err := c.FetchPage(ctx, cursor)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch page %d: %w", pageNum, err)
		}

		for _, article := range page.Articles {
			body, err := c.processor.Render(article.Body)
			if err != nil {
				return nil, fmt.Errorf("failed to convert article %d: %w", article.ID, err)
			}
			docs = append(docs, models.NewDocument(article, body))
		}

		slog.Debug("fetched articles page", "page", pageNum, "articles", len(page.Articles), "last", page.Last())

		if page.Last() {
			break
		}
		cursor = page.Next
	}

	slog.Info("article fetch complete", "subdomain", c.config.Subdomain, "documents", len(docs))
	return docs, nil
}

// get performs one GET and returns the response body.
func (c *Client) get(ctx context.Context, pageURL string) ([]byte, error) {
	collector := colly.NewCollector(
		colly.UserAgent(c.config.UserAgent),
		colly.AllowURLRevisit(),
		colly.MaxBodySize(0),
		colly.StdlibContext(ctx),
	)
	collector.SetRequestTimeout(c.config.Timeout)

	if c.config.Delay > 0 {
		collector.Limit(&colly.LimitRule{
			DomainGlob: "*",
			Delay:      c.config.Delay,
		})
	}

	var body []byte
	var status int

	collector.OnRequest(func(r *colly.Request) {
		r.Headers.Set("Accept", "application/json")
		if auth := c.authorization(); auth != "" {
			r.Headers.Set("Authorization", auth)
		}
	})

	collector.OnResponse(func(r *colly.Response) {
		status = r.StatusCode
		body = r.Body
	})

	collector.OnError(func(r *colly.Response, err error) {
		if r != nil {
			status = r.StatusCode
		}
		slog.Debug("articles request failed", "url", pageURL, "status", status, "error", err)
	})

	slog.Debug("requesting articles page", "url", pageURL)

	if err := collector.Visit(pageURL); err != nil {
		if status != 0 {
			return nil, &StatusError{URL: pageURL, StatusCode: status}
		}
		return nil, fmt.Errorf("request failed: %w", err)
	}

	return body, nil
}

// authorization returns the API token Authorization header, or "" for
// anonymous access.
func (c *Client) authorization() string {
	if c.config.Email == "" || c.config.APIToken == "" {
		return ""
	}
	creds := c.config.Email + "/token:" + c.config.APIToken
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(creds))
}
