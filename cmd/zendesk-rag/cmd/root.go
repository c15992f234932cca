package cmd

import (
	"log/slog"
	"os"
	"strings"

	"github.com/mfenderov/zendesk-rag/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	verbose bool
	cfg     config.Config
)

// GetConfig returns the loaded configuration.
func GetConfig() config.Config {
	return cfg
}

var rootCmd = &cobra.Command{
	Use:   "zendesk-rag",
	Short: "zendesk-rag: Zendesk Help Center retrieval",
	Long: `zendesk-rag reads every article of a Zendesk Help Center through the
public REST API, converts article bodies to plain text, stores snapshots in
S3, indexes them in Elasticsearch, and provides MCP tools for retrieval.

Commands:
  fetch   Fetch all articles of a Help Center and print them
  sync    Fetch and index configured Help Centers
  ingest  Index a stored snapshot
  search  Search indexed articles
  serve   Start the MCP server for article retrieval`,
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig, initLogger)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
}

func initLogger() {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	slog.SetDefault(slog.New(handler))
}

func initConfig() {
	cfg = config.Defaults()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath("./config")
		viper.AddConfigPath("/etc/zendesk-rag")
		viper.AddConfigPath(".")
	}

	// ZENDESKRAG_ZENDESK_API_TOKEN -> zendesk.api_token
	viper.SetEnvPrefix("ZENDESKRAG")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// AutomaticEnv only covers keys viper already knows about.
	for _, key := range []string{
		"zendesk.base_url",
		"zendesk.locale",
		"zendesk.per_page",
		"zendesk.timeout",
		"zendesk.user_agent",
		"zendesk.delay",
		"zendesk.body_format",
		"zendesk.email",
		"zendesk.api_token",
		"elasticsearch.addresses",
		"elasticsearch.index",
		"elasticsearch.username",
		"elasticsearch.password",
		"elasticsearch.dimensions",
		"embeddings.enabled",
		"embeddings.socket_path",
		"embeddings.model",
		"llm.enabled",
		"llm.socket_path",
		"llm.model",
		"storage.endpoint",
		"storage.bucket",
		"storage.access_key_id",
		"storage.secret_access_key",
		"storage.use_ssl",
		"mcp.name",
		"mcp.version",
	} {
		viper.BindEnv(key)
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			slog.Warn("config file error", "error", err)
		}
		// No config file - use defaults + env vars
	}

	// Unmarshal into struct (merges config file with defaults)
	if err := viper.Unmarshal(&cfg); err != nil {
		slog.Warn("failed to parse config", "error", err)
	}

	// Handle special case: addresses as comma-separated string from env
	if addrs := os.Getenv("ZENDESKRAG_ELASTICSEARCH_ADDRESSES"); addrs != "" {
		cfg.Elasticsearch.Addresses = strings.Split(addrs, ",")
	}
}
