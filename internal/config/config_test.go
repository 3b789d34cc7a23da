package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/CodexForgeBR/async-demos/internal/retry"
	"github.com/CodexForgeBR/async-demos/internal/store"
)

func TestNewDefaultConfigValues(t *testing.T) {
	cfg := NewDefaultConfig()

	assert.Equal(t, "file", cfg.StoreBackend)
	assert.Equal(t, ".async-demos", cfg.StorePath)
	assert.Equal(t, "nats://127.0.0.1:4222", cfg.NATSURL)
	assert.Equal(t, 3, cfg.MaxAttempts)
	assert.Equal(t, 1000, cfg.RetryDelayMs)
	assert.Equal(t, 5, cfg.BatchSize)
	assert.Equal(t, "https://jsonplaceholder.typicode.com", cfg.APIBaseURL)
	assert.Equal(t, 10, cfg.HTTPTimeout)
	assert.Equal(t, "json", cfg.OutputFormat)
	assert.Empty(t, cfg.MetricsAddr)
	assert.False(t, cfg.Verbose)
}

func TestWhitelistedVarsHasNoDuplicates(t *testing.T) {
	seen := make(map[string]bool)
	for _, v := range WhitelistedVars {
		assert.False(t, seen[v], "duplicate whitelisted var %s", v)
		seen[v] = true
	}
}

func TestRetryConfig(t *testing.T) {
	tests := []struct {
		name      string
		attempts  int
		delayMs   int
		wantDelay time.Duration
	}{
		{"defaults", 3, 1000, time.Second},
		{"custom", 5, 100, 100 * time.Millisecond},
		{"zero delay", 2, 0, retry.NoDelay},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{MaxAttempts: tt.attempts, RetryDelayMs: tt.delayMs}
			got := cfg.RetryConfig()
			assert.Equal(t, tt.attempts, got.MaxAttempts)
			assert.Equal(t, tt.wantDelay, got.Delay)
		})
	}
}

func TestStoreOptions(t *testing.T) {
	cfg := NewDefaultConfig()
	assert.Equal(t, store.Options{Backend: "file", Path: ".async-demos", NATSURL: cfg.NATSURL, Bucket: store.DefaultBucket}, cfg.StoreOptions())

	cfg.StoreBackend = store.BackendBolt
	assert.Equal(t, filepath.Join(".async-demos", "store.db"), cfg.StoreOptions().Path)
}

func TestHTTPTimeoutDuration(t *testing.T) {
	cfg := &Config{HTTPTimeout: 7}
	assert.Equal(t, 7*time.Second, cfg.HTTPTimeoutDuration())
}

func TestProjectConfigPath(t *testing.T) {
	assert.Equal(t, filepath.Join(".async-demos", "config"), ProjectConfigPath())
}
