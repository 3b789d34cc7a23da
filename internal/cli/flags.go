// Package cli provides flag binding and validation for the async-demos CLI.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/CodexForgeBR/async-demos/internal/config"
	"github.com/CodexForgeBR/async-demos/internal/render"
	"github.com/CodexForgeBR/async-demos/internal/store"
)

// BindFlags registers the global flags as persistent flags on cmd so every
// subcommand accepts them. The flags directly modify fields in cfg.
func BindFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.PersistentFlags()

	// Store
	flags.StringVar(&cfg.StoreBackend, "store", cfg.StoreBackend, "Store backend: memory, file, bolt or nats")
	flags.StringVar(&cfg.StorePath, "store-path", cfg.StorePath, "Directory for the file and bolt stores")
	flags.StringVar(&cfg.NATSURL, "nats-url", cfg.NATSURL, "NATS server URL for the nats store")
	flags.StringVar(&cfg.NATSBucket, "nats-bucket", cfg.NATSBucket, "JetStream key-value bucket for the nats store")

	// Retry
	flags.IntVar(&cfg.MaxAttempts, "max-attempts", cfg.MaxAttempts, "Attempts per operation, including the first")
	flags.IntVar(&cfg.RetryDelayMs, "retry-delay", cfg.RetryDelayMs, "Fixed delay between attempts in milliseconds")

	// Batch & API
	flags.IntVar(&cfg.BatchSize, "batch-size", cfg.BatchSize, "Items processed concurrently per batch")
	flags.StringVar(&cfg.APIBaseURL, "api-url", cfg.APIBaseURL, "Base URL of the placeholder JSON API")
	flags.IntVar(&cfg.HTTPTimeout, "http-timeout", cfg.HTTPTimeout, "Per-request timeout in seconds")

	// Output
	flags.StringVarP(&cfg.OutputFormat, "output", "o", cfg.OutputFormat, "Output format: json or yaml")
	flags.StringVar(&cfg.MetricsAddr, "metrics-addr", cfg.MetricsAddr, "Serve Prometheus metrics on this address while running")
	flags.BoolVarP(&cfg.Verbose, "verbose", "v", cfg.Verbose, "Enable debug logging")
	flags.StringVar(&cfg.ConfigFile, "config", "", "Path to additional config file")
}

// BuildOverrides returns the config-file keys for every global flag the user
// explicitly set, so config file values are not overridden by flag defaults.
func BuildOverrides(cmd *cobra.Command, cfg *config.Config) map[string]string {
	overrides := make(map[string]string)
	flags := cmd.Flags()

	mappings := []struct {
		flag string
		key  string
		val  func() string
	}{
		{"store", "STORE_BACKEND", func() string { return cfg.StoreBackend }},
		{"store-path", "STORE_PATH", func() string { return cfg.StorePath }},
		{"nats-url", "NATS_URL", func() string { return cfg.NATSURL }},
		{"nats-bucket", "NATS_BUCKET", func() string { return cfg.NATSBucket }},
		{"max-attempts", "MAX_ATTEMPTS", func() string { return fmt.Sprintf("%d", cfg.MaxAttempts) }},
		{"retry-delay", "RETRY_DELAY_MS", func() string { return fmt.Sprintf("%d", cfg.RetryDelayMs) }},
		{"batch-size", "BATCH_SIZE", func() string { return fmt.Sprintf("%d", cfg.BatchSize) }},
		{"api-url", "API_BASE_URL", func() string { return cfg.APIBaseURL }},
		{"http-timeout", "HTTP_TIMEOUT", func() string { return fmt.Sprintf("%d", cfg.HTTPTimeout) }},
		{"output", "OUTPUT_FORMAT", func() string { return cfg.OutputFormat }},
		{"metrics-addr", "METRICS_ADDR", func() string { return cfg.MetricsAddr }},
		{"verbose", "VERBOSE", func() string { return fmt.Sprintf("%t", cfg.Verbose) }},
	}
	for _, m := range mappings {
		if flags.Changed(m.flag) {
			overrides[m.key] = m.val()
		}
	}

	return overrides
}

// ValidateConfig checks the merged configuration.
func ValidateConfig(cfg *config.Config) error {
	switch cfg.StoreBackend {
	case store.BackendMemory, store.BackendFile, store.BackendBolt, store.BackendNATS:
	default:
		return fmt.Errorf("--store must be one of memory, file, bolt, nats, got: %s", cfg.StoreBackend)
	}

	if cfg.MaxAttempts < 1 {
		return fmt.Errorf("--max-attempts must be >= 1, got: %d", cfg.MaxAttempts)
	}
	if cfg.RetryDelayMs < 0 {
		return fmt.Errorf("--retry-delay must be >= 0, got: %d", cfg.RetryDelayMs)
	}
	if cfg.BatchSize < 1 {
		return fmt.Errorf("--batch-size must be >= 1, got: %d", cfg.BatchSize)
	}
	if cfg.HTTPTimeout < 1 {
		return fmt.Errorf("--http-timeout must be >= 1, got: %d", cfg.HTTPTimeout)
	}
	if !render.Valid(cfg.OutputFormat) {
		return fmt.Errorf("--output must be 'json' or 'yaml', got: %s", cfg.OutputFormat)
	}

	return nil
}

// ValidateConfigFile checks that an explicit --config path exists.
func ValidateConfigFile(cfg *config.Config) error {
	if cfg.ConfigFile == "" {
		return nil
	}
	if _, err := os.Stat(cfg.ConfigFile); err != nil {
		return fmt.Errorf("--config: %w", err)
	}
	return nil
}
