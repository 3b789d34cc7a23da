// Package store provides durable string-to-string key-value storage.
//
// A Store is shared process-wide state. Callers own a named key within it,
// never the store itself, and are expected to pick keys that do not collide.
package store

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotFound is returned by Get when the key has no entry.
var ErrNotFound = errors.New("no such key")

// Store is a durable key-value store.
type Store interface {
	// Get returns the value stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) (string, error)
	// Set writes value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error
	// Close releases the underlying resources.
	Close() error
}

// Backend names accepted by Open.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendBolt   = "bolt"
	BackendNATS   = "nats"
)

// Options selects and configures a backend.
type Options struct {
	Backend string
	Path    string // directory for file, database file for bolt
	NATSURL string
	Bucket  string
}

// Open returns the backend named by opts.Backend.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch opts.Backend {
	case BackendMemory:
		return NewMemoryStore(), nil
	case BackendFile, "":
		return NewFileStore(opts.Path), nil
	case BackendBolt:
		return OpenBolt(opts.Path)
	case BackendNATS:
		return OpenNATS(ctx, opts.NATSURL, opts.Bucket)
	default:
		return nil, fmt.Errorf("unknown store backend %q", opts.Backend)
	}
}
