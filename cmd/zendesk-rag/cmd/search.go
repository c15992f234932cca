package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"github.com/mfenderov/zendesk-rag/internal/retrieval"
	"github.com/mfenderov/zendesk-rag/pkg/models"
	"github.com/spf13/cobra"
)

var (
	searchLimit     int
	searchFormat    string
	searchSubdomain string
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search indexed Help Center articles",
	Long: `Search the indexed Help Center articles.

Examples:
  # Basic search
  zendesk-rag search "reset password"

  # Limit results
  zendesk-rag search "billing" --limit 5

  # One Help Center only
  zendesk-rag search "refunds" --subdomain acme

  # JSON output for scripting
  zendesk-rag search "sso" --format json`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().IntVar(&searchLimit, "limit", 10, "Maximum number of results")
	searchCmd.Flags().StringVar(&searchFormat, "format", "text", "Output format: text or json")
	searchCmd.Flags().StringVar(&searchSubdomain, "subdomain", "", "Only search articles from this subdomain")
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := GetConfig()

	esClient, err := newESClient(&cfg)
	if err != nil {
		return err
	}
	embedder, err := newQueryEmbedder(cfg.Embeddings)
	if err != nil {
		return err
	}

	articles, err := retrieval.New(esClient, embedder).Search(ctx, searchSubdomain, args[0], searchLimit)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	return writeSearchResults(cmd.OutOrStdout(), articles, searchFormat)
}

const maxPreviewChars = 500

func writeSearchResults(w io.Writer, articles []models.IndexedArticle, format string) error {
	if format == "json" {
		if articles == nil {
			articles = []models.IndexedArticle{}
		}
		output, err := json.MarshalIndent(articles, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(w, string(output))
		return nil
	}

	if len(articles) == 0 {
		fmt.Fprintln(w, "No results found.")
		return nil
	}

	fmt.Fprintf(w, "Found %d results:\n\n", len(articles))
	for i, article := range articles {
		fmt.Fprintf(w, "─── Result %d ───\n", i+1)
		fmt.Fprintf(w, "Title:   %s\n", article.Title)
		fmt.Fprintf(w, "URL:     %s\n", article.URL)
		fmt.Fprintf(w, "Source:  %s (article %d)\n", article.Subdomain, article.ArticleID)
		fmt.Fprintf(w, "ID:      %s\n", article.ID)

		content := article.Content
		if article.Summary != "" {
			content = article.Summary
		}
		if r := []rune(content); len(r) > maxPreviewChars {
			content = string(r[:maxPreviewChars]) + "..."
		}
		fmt.Fprintf(w, "Content:\n%s\n\n", content)
	}
	return nil
}
