package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/mfenderov/zendesk-rag/internal/zendesk"
	"github.com/mfenderov/zendesk-rag/pkg/models"
	"github.com/spf13/cobra"
)

var fetchFormat string

var fetchCmd = &cobra.Command{
	Use:   "fetch [subdomain]",
	Short: "Fetch every article of a Help Center",
	Long: `Fetch all Help Center articles of one Zendesk subdomain and print them.
Nothing is stored or indexed.

Examples:
  # Print articles as text
  zendesk-rag fetch acme

  # JSON documents for scripting
  zendesk-rag fetch acme --format json`,
	Args: cobra.ExactArgs(1),
	RunE: runFetch,
}

func init() {
	rootCmd.AddCommand(fetchCmd)

	fetchCmd.Flags().StringVar(&fetchFormat, "format", "text", "Output format: text or json")
}

func runFetch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := GetConfig()
	zcfg, err := zendeskConfig(cfg.Zendesk, args[0])
	if err != nil {
		return err
	}
	slog.Debug("fetch command starting", "subdomain", args[0], "format", fetchFormat)

	docs, err := zendesk.New(zcfg).FetchAll(ctx)
	if err != nil {
		return fmt.Errorf("fetch failed: %w", err)
	}

	return writeDocuments(cmd.OutOrStdout(), docs, fetchFormat)
}

func writeDocuments(w io.Writer, docs []models.Document, format string) error {
	switch format {
	case "json":
		if docs == nil {
			docs = []models.Document{}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(docs)
	case "text":
		fmt.Fprintf(w, "Fetched %d articles\n\n", len(docs))
		for _, doc := range docs {
			fmt.Fprintf(w, "─── %d: %s ───\n", doc.Metadata.ID, doc.Metadata.Title)
			fmt.Fprintf(w, "URL:     %s\n", doc.Metadata.URL)
			fmt.Fprintf(w, "Updated: %s\n\n", doc.Metadata.UpdatedAt)
			fmt.Fprintf(w, "%s\n\n", doc.Body)
		}
		return nil
	default:
		return fmt.Errorf("unknown format %q (want text or json)", format)
	}
}
