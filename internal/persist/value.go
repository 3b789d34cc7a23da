// Package persist keeps a value in memory and mirrors every update into a
// durable key-value store.
//
// Store access happens only when a Value is created and when it is updated.
// Reads never touch the store. Writes are best-effort: a failed write is
// reported and the in-memory value keeps the update regardless.
package persist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/CodexForgeBR/async-demos/internal/logging"
	"github.com/CodexForgeBR/async-demos/internal/metrics"
	"github.com/CodexForgeBR/async-demos/internal/store"
)

// Reporter receives diagnostics for load and write failures.
type Reporter func(msg string)

// Option configures a Value.
type Option func(*options)

type options struct {
	report  Reporter
	metrics *metrics.Metrics
}

// WithReporter sets the diagnostics sink. The default is logging.Warn.
func WithReporter(r Reporter) Option {
	return func(o *options) { o.report = r }
}

// WithMetrics counts writes and load fallbacks on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// Value is a T mirrored under one key of a store.Store.
type Value[T any] struct {
	mu      sync.Mutex
	st      store.Store
	key     string
	current T
	opts    options
}

// New loads key from st. If the key is absent or holds an empty string the
// value starts as def and nothing is written. A read or parse failure is reported and also falls
// back to def.
func New[T any](ctx context.Context, st store.Store, key string, def T, opts ...Option) *Value[T] {
	v := &Value[T]{
		st:      st,
		key:     key,
		current: def,
		opts:    options{report: logging.Warn},
	}
	for _, opt := range opts {
		opt(&v.opts)
	}

	raw, err := st.Get(ctx, key)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return v
	case err != nil:
		v.fallback(fmt.Sprintf("Error loading %q from store: %v", key, err))
		return v
	case raw == "":
		// An empty entry holds no value, same as a missing key.
		return v
	}

	var loaded T
	if err := json.Unmarshal([]byte(raw), &loaded); err != nil {
		v.fallback(fmt.Sprintf("Error parsing stored value for %q: %v", key, err))
		return v
	}
	v.current = loaded
	return v
}

// Key returns the store key the value is mirrored under.
func (v *Value[T]) Key() string {
	return v.key
}

// Get returns the in-memory value.
func (v *Value[T]) Get() T {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.current
}

// Set replaces the value and writes it to the store.
func (v *Value[T]) Set(ctx context.Context, next T) {
	v.Update(ctx, func(T) T { return next })
}

// Update derives the next value from the current one, keeps it in memory and
// writes it to the store. Updates on the same Value apply in call order.
func (v *Value[T]) Update(ctx context.Context, fn func(T) T) T {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.current = fn(v.current)
	v.write(ctx, v.current)
	return v.current
}

func (v *Value[T]) write(ctx context.Context, val T) {
	data, err := json.Marshal(val)
	if err != nil {
		v.writeFailed(fmt.Sprintf("Error serializing value for %q: %v", v.key, err))
		return
	}
	if err := v.st.Set(ctx, v.key, string(data)); err != nil {
		v.writeFailed(fmt.Sprintf("Error saving %q to store: %v", v.key, err))
		return
	}
	if v.opts.metrics != nil {
		v.opts.metrics.PersistWrites.WithLabelValues(metrics.ResultOK).Inc()
	}
}

func (v *Value[T]) fallback(msg string) {
	if v.opts.metrics != nil {
		v.opts.metrics.PersistLoadFallbacks.Inc()
	}
	v.opts.report(msg)
}

func (v *Value[T]) writeFailed(msg string) {
	if v.opts.metrics != nil {
		v.opts.metrics.PersistWrites.WithLabelValues(metrics.ResultError).Inc()
	}
	v.opts.report(msg)
}
