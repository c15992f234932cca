package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/mfenderov/zendesk-rag/internal/ingestion"
	"github.com/spf13/cobra"
)

var ingestPrefix string

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Ingest a stored snapshot into Elasticsearch",
	Long: `Ingest a previously stored Help Center snapshot from S3 into Elasticsearch.

Use this command to re-run ingestion on an existing snapshot,
or to index snapshots that were created with --no-ingest.

Examples:
  # Ingest a specific snapshot by prefix
  zendesk-rag ingest --prefix snapshots/acme/2024-12-04T17-30-00-abc12345`,
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)

	ingestCmd.Flags().StringVar(&ingestPrefix, "prefix", "", "S3 prefix to ingest (required)")
	ingestCmd.MarkFlagRequired("prefix")
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := GetConfig()
	slog.Debug("ingest command starting", "prefix", ingestPrefix)

	if cfg.Storage.Endpoint == "" {
		return fmt.Errorf("storage not configured - check config file")
	}

	storageClient, err := newStorageClient(cfg.Storage)
	if err != nil {
		return err
	}
	esClient, err := newESClient(&cfg)
	if err != nil {
		return err
	}
	enricher, err := newEnricher(&cfg)
	if err != nil {
		return err
	}

	engine := ingestion.New(storageClient, esClient, enricher)

	fmt.Printf("Ingesting: %s\n", ingestPrefix)

	result, err := engine.Ingest(ctx, ingestPrefix)
	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}

	fmt.Printf("\nIngestion complete:\n")
	fmt.Printf("  Docs indexed: %d\n", result.DocsIndexed)
	fmt.Printf("  Stale removed: %d\n", result.DocsDeleted)
	fmt.Printf("  Duration: %v\n", result.Duration)

	if len(result.Errors) > 0 {
		fmt.Printf("  Warnings: %d\n", len(result.Errors))
		for _, e := range result.Errors {
			fmt.Printf("    - %s\n", e)
		}
	}

	return nil
}
