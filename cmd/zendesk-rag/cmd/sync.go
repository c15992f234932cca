package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/mfenderov/zendesk-rag/internal/config"
	"github.com/mfenderov/zendesk-rag/internal/events"
	"github.com/mfenderov/zendesk-rag/internal/ingestion"
	"github.com/mfenderov/zendesk-rag/internal/pipeline"
	"github.com/mfenderov/zendesk-rag/internal/storage"
	"github.com/mfenderov/zendesk-rag/internal/zendesk"
	"github.com/spf13/cobra"
)

var (
	syncSubdomain string
	syncSource    string
	noIngest      bool
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Fetch and index Help Center articles",
	Long: `Fetch every article of the configured Help Centers and index them.

When storage is configured each fetch is written to S3 as a snapshot and
indexed from there; otherwise articles go straight into Elasticsearch.

Examples:
  # Sync all configured sources
  zendesk-rag sync

  # Sync one configured source by name
  zendesk-rag sync --source support

  # Sync a subdomain directly
  zendesk-rag sync --subdomain acme

  # Snapshot only (write to S3, no ingestion)
  zendesk-rag sync --subdomain acme --no-ingest`,
	RunE: runSync,
}

func init() {
	rootCmd.AddCommand(syncCmd)

	syncCmd.Flags().StringVar(&syncSubdomain, "subdomain", "", "Zendesk subdomain to sync directly")
	syncCmd.Flags().StringVar(&syncSource, "source", "", "Source name from config to sync")
	syncCmd.Flags().BoolVar(&noIngest, "no-ingest", false, "Write snapshots to S3 only, skip ingestion")
}

func runSync(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := GetConfig()
	slog.Debug("sync command starting", "verbose", verbose, "no_ingest", noIngest)

	subdomains := []string{syncSubdomain}
	if syncSubdomain == "" {
		var ok bool
		subdomains, ok = cfg.Subdomains(syncSource)
		if !ok {
			if syncSource != "" {
				return fmt.Errorf("source %q not found in config", syncSource)
			}
			return fmt.Errorf("no sources configured and no --subdomain provided")
		}
	}

	// Fail on a bad body_format before any request is made.
	if _, err := zendeskConfig(cfg.Zendesk, ""); err != nil {
		return err
	}

	if cfg.Storage.Endpoint != "" {
		return runSnapshotSync(ctx, &cfg, subdomains)
	}
	if noIngest {
		return fmt.Errorf("--no-ingest requires storage to be configured")
	}
	return runDirectSync(ctx, &cfg, subdomains)
}

// runSnapshotSync writes each Help Center to S3 and, unless --no-ingest is
// set, hands every snapshot to an ingestion worker.
func runSnapshotSync(ctx context.Context, cfg *config.Config, subdomains []string) error {
	storageClient, err := newStorageClient(cfg.Storage)
	if err != nil {
		return err
	}
	if err := storageClient.EnsureBucket(ctx); err != nil {
		return fmt.Errorf("failed to ensure bucket: %w", err)
	}

	if noIngest {
		return runSnapshotOnly(ctx, cfg, storageClient, subdomains)
	}

	esClient, err := newESClient(cfg)
	if err != nil {
		return err
	}
	enricher, err := newEnricher(cfg)
	if err != nil {
		return err
	}
	engine := ingestion.New(storageClient, esClient, enricher)

	fetched := make(chan events.FetchCompleteEvent)
	ingested := engine.Consume(ctx, fetched)

	var totalDocsIndexed, failed int
	var totalDuration time.Duration
	done := make(chan struct{})
	go func() {
		defer close(done)
		for result := range ingested {
			if result.DocsIndexed == 0 && len(result.Errors) > 0 {
				failed++
			}
			totalDocsIndexed += result.DocsIndexed
			totalDuration += result.Duration
			fmt.Printf("Indexed: %s (%d docs, %d removed, in %v)\n", result.Prefix, result.DocsIndexed, result.DocsDeleted, result.Duration)
			for _, e := range result.Errors {
				fmt.Printf("  Warning: %s\n", e)
			}
		}
	}()

	totalArticles, fetchFailed := 0, 0
	for _, subdomain := range subdomains {
		fmt.Printf("Fetching: %s\n", subdomain)

		result, err := snapshot(ctx, cfg, subdomain, storageClient)
		if err != nil {
			fmt.Printf("  Error: %v\n", err)
			fetchFailed++
			continue
		}
		totalArticles += result.DocumentCount
		fmt.Printf("  Articles: %d, Prefix: %s\n", result.DocumentCount, result.Prefix)

		fetched <- events.FetchCompleteEvent{
			Bucket:        storageClient.Bucket(),
			Prefix:        result.Prefix,
			Subdomain:     result.Subdomain,
			DocumentCount: result.DocumentCount,
			Timestamp:     time.Now(),
		}
	}

	close(fetched)
	<-done

	fmt.Printf("\nTotal: %d articles fetched, %d docs indexed in %v\n",
		totalArticles, totalDocsIndexed, totalDuration)
	return syncError(fetchFailed+failed, len(subdomains))
}

func runSnapshotOnly(ctx context.Context, cfg *config.Config, storageClient *storage.Client, subdomains []string) error {
	total, failed := 0, 0
	for _, subdomain := range subdomains {
		fmt.Printf("Fetching to S3: %s\n", subdomain)

		result, err := snapshot(ctx, cfg, subdomain, storageClient)
		if err != nil {
			fmt.Printf("  Error: %v\n", err)
			failed++
			continue
		}
		total += result.DocumentCount
		fmt.Printf("  Articles: %d, Prefix: %s\n", result.DocumentCount, result.Prefix)
	}

	if err := syncError(failed, len(subdomains)); err != nil {
		return err
	}
	fmt.Printf("\nTotal: %d articles written to S3\n", total)
	fmt.Println("Run 'zendesk-rag ingest --prefix <prefix>' to index these documents")
	return nil
}

func snapshot(ctx context.Context, cfg *config.Config, subdomain string, store zendesk.SnapshotStore) (*zendesk.SnapshotResult, error) {
	zcfg, err := zendeskConfig(cfg.Zendesk, subdomain)
	if err != nil {
		return nil, err
	}
	return zendesk.New(zcfg).FetchToStorage(ctx, store)
}

// runDirectSync indexes straight from the API when no storage is configured.
func runDirectSync(ctx context.Context, cfg *config.Config, subdomains []string) error {
	zcfg, err := zendeskConfig(cfg.Zendesk, "")
	if err != nil {
		return err
	}

	p, err := pipeline.New(pipeline.Config{
		ESAddresses:  cfg.Elasticsearch.Addresses,
		ESIndex:      cfg.Elasticsearch.Index,
		ESUsername:   cfg.Elasticsearch.Username,
		ESPassword:   cfg.Elasticsearch.Password,
		ESDimensions: cfg.VectorDimensions(),
		Zendesk:      zcfg,
		EmbeddingsConfig: pipeline.EmbeddingsConfig{
			Enabled:    cfg.Embeddings.Enabled,
			SocketPath: cfg.Embeddings.SocketPath,
			Model:      cfg.Embeddings.Model,
		},
		LLMConfig: pipeline.LLMConfig{
			Enabled:    cfg.LLM.Enabled,
			SocketPath: cfg.LLM.SocketPath,
			Model:      cfg.LLM.Model,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create pipeline: %w", err)
	}

	totalArticles, totalDocs, failed := 0, 0, 0
	var totalDuration time.Duration

	for _, subdomain := range subdomains {
		fmt.Printf("Fetching: %s\n", subdomain)

		result, err := p.Run(ctx, subdomain)
		if err != nil {
			fmt.Printf("  Error: %v\n", err)
			failed++
			continue
		}

		totalArticles += result.ArticlesFetched
		totalDocs += result.DocsIndexed
		totalDuration += result.Duration

		fmt.Printf("  Articles: %d, Docs indexed: %d, Removed: %d, Duration: %v\n",
			result.ArticlesFetched, result.DocsIndexed, result.DocsDeleted, result.Duration)
		for _, e := range result.Errors {
			fmt.Printf("  Warning: %v\n", e)
		}
	}

	fmt.Printf("\nTotal: %d articles, %d docs indexed in %v\n",
		totalArticles, totalDocs, totalDuration)
	return syncError(failed, len(subdomains))
}

// syncError fails the command when no source synced. Partial failures are
// only reported.
func syncError(failed, total int) error {
	if total > 0 && failed >= total {
		return fmt.Errorf("all %d sources failed to sync", total)
	}
	return nil
}
