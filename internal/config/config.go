// Package config defines the async-demos configuration model and default values.
//
// Configuration is assembled from multiple sources with a strict precedence
// chain: built-in defaults < global config file < project config file <
// explicit config file < CLI flag overrides.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/CodexForgeBR/async-demos/internal/retry"
	"github.com/CodexForgeBR/async-demos/internal/store"
)

// WhitelistedVars lists every configuration variable name that may appear in
// config files. Variables not in this list are silently ignored during loading.
var WhitelistedVars = [12]string{
	"STORE_BACKEND",
	"STORE_PATH",
	"NATS_URL",
	"NATS_BUCKET",
	"MAX_ATTEMPTS",
	"RETRY_DELAY_MS",
	"BATCH_SIZE",
	"API_BASE_URL",
	"HTTP_TIMEOUT",
	"OUTPUT_FORMAT",
	"METRICS_ADDR",
	"VERBOSE",
}

// ProjectDir is the per-project state and config directory.
const ProjectDir = ".async-demos"

// Config holds every configuration field for the async-demos CLI.
type Config struct {
	// Durable store.
	StoreBackend string
	StorePath    string
	NATSURL      string
	NATSBucket   string

	// Retry policy.
	MaxAttempts  int
	RetryDelayMs int

	// Batch processing.
	BatchSize int

	// Placeholder API.
	APIBaseURL  string
	HTTPTimeout int // seconds

	// Output.
	OutputFormat string
	MetricsAddr  string
	Verbose      bool

	// CLI-only flags (not loaded from config files).
	ConfigFile string
}

// NewDefaultConfig returns a Config populated with all built-in default values.
func NewDefaultConfig() *Config {
	return &Config{
		StoreBackend: store.BackendFile,
		StorePath:    ProjectDir,
		NATSURL:      "nats://127.0.0.1:4222",
		NATSBucket:   store.DefaultBucket,
		MaxAttempts:  retry.DefaultMaxAttempts,
		RetryDelayMs: int(retry.DefaultDelay / time.Millisecond),
		BatchSize:    5,
		APIBaseURL:   "https://jsonplaceholder.typicode.com",
		HTTPTimeout:  10,
		OutputFormat: "json",
	}
}

// RetryConfig converts the retry settings to a retry.Config.
// A configured delay of 0ms means back-to-back attempts.
func (c *Config) RetryConfig() retry.Config {
	delay := time.Duration(c.RetryDelayMs) * time.Millisecond
	if c.RetryDelayMs == 0 {
		delay = retry.NoDelay
	}
	return retry.Config{MaxAttempts: c.MaxAttempts, Delay: delay}
}

// StoreOptions converts the store settings to store.Options. For the bolt
// backend StorePath names a directory holding store.db.
func (c *Config) StoreOptions() store.Options {
	path := c.StorePath
	if c.StoreBackend == store.BackendBolt {
		path = filepath.Join(c.StorePath, "store.db")
	}
	return store.Options{
		Backend: c.StoreBackend,
		Path:    path,
		NATSURL: c.NATSURL,
		Bucket:  c.NATSBucket,
	}
}

// HTTPTimeoutDuration returns HTTPTimeout as a time.Duration.
func (c *Config) HTTPTimeoutDuration() time.Duration {
	return time.Duration(c.HTTPTimeout) * time.Second
}

// GlobalConfigPath returns ~/.config/async-demos/config, or "" when the home
// directory cannot be determined.
func GlobalConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "async-demos", "config")
}

// ProjectConfigPath returns the project-level config file path.
func ProjectConfigPath() string {
	return filepath.Join(ProjectDir, "config")
}
