// Package metrics exposes Prometheus counters for retries, persisted values
// and batch processing.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/CodexForgeBR/async-demos/internal/retry"
)

const namespace = "asyncdemos"

// Write results for PersistWrites.
const (
	ResultOK    = "ok"
	ResultError = "error"
)

// Metrics holds the counters and the registry they are registered on.
type Metrics struct {
	Registry *prometheus.Registry

	RetryAttempts        prometheus.Counter
	RetryExhausted       prometheus.Counter
	PersistWrites        *prometheus.CounterVec
	PersistLoadFallbacks prometheus.Counter
	BatchItems           prometheus.Counter
}

// New creates a Metrics instance on a private registry.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		RetryAttempts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "retry_attempts_total",
			Help:      "Failed attempts that were followed by another attempt",
		}),
		RetryExhausted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "retry_exhausted_total",
			Help:      "Retry runs that used their whole attempt budget without success",
		}),
		PersistWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "persist_writes_total",
			Help:      "Persisted value writes by result",
		}, []string{"result"}),
		PersistLoadFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "persist_load_fallbacks_total",
			Help:      "Persisted value loads that fell back to the default because of an error",
		}),
		BatchItems: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "batch_items_total",
			Help:      "Items processed by batch runs",
		}),
	}

	m.Registry.MustRegister(
		m.RetryAttempts,
		m.RetryExhausted,
		m.PersistWrites,
		m.PersistLoadFallbacks,
		m.BatchItems,
	)
	return m
}

// InstrumentRetry returns cfg with callbacks that count retries and
// exhaustion. Existing callbacks are still invoked.
func (m *Metrics) InstrumentRetry(cfg retry.Config) retry.Config {
	if m == nil {
		return cfg
	}

	onRetry, onExhausted := cfg.OnRetry, cfg.OnExhausted
	cfg.OnRetry = func(attempt int, delay time.Duration, err error) {
		m.RetryAttempts.Inc()
		if onRetry != nil {
			onRetry(attempt, delay, err)
		}
	}
	cfg.OnExhausted = func(attempts int, err error) {
		m.RetryExhausted.Inc()
		if onExhausted != nil {
			onExhausted(attempts, err)
		}
	}
	return cfg
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is done.
func (m *Metrics) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())

	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("metrics server: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
