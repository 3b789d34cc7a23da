package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// DefaultBucket is the JetStream key-value bucket used when none is given.
const DefaultBucket = "async_demos"

// NATSStore keeps entries in a JetStream key-value bucket.
type NATSStore struct {
	nc     *nats.Conn
	bucket jetstream.KeyValue
}

// OpenNATS connects to url and opens (creating if necessary) bucket.
func OpenNATS(ctx context.Context, url, bucket string) (*NATSStore, error) {
	if url == "" {
		url = nats.DefaultURL
	}
	if bucket == "" {
		bucket = DefaultBucket
	}

	nc, err := nats.Connect(url, nats.Name("async-demos"))
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("create jetstream context: %w", err)
	}

	kv, err := js.CreateOrUpdateKeyValue(ctx, jetstream.KeyValueConfig{Bucket: bucket})
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("open kv bucket %s: %w", bucket, err)
	}

	return NewNATSStore(nc, kv), nil
}

// NewNATSStore wraps an existing bucket. nc may be nil when the caller owns
// the connection.
func NewNATSStore(nc *nats.Conn, kv jetstream.KeyValue) *NATSStore {
	return &NATSStore{nc: nc, bucket: kv}
}

func (s *NATSStore) Get(ctx context.Context, key string) (string, error) {
	entry, err := s.bucket.Get(ctx, natsKey(key))
	if err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("kv get %s: %w", key, err)
	}
	return string(entry.Value()), nil
}

func (s *NATSStore) Set(ctx context.Context, key, value string) error {
	if _, err := s.bucket.PutString(ctx, natsKey(key), value); err != nil {
		return fmt.Errorf("kv put %s: %w", key, err)
	}
	return nil
}

func (s *NATSStore) Close() error {
	if s.nc != nil {
		s.nc.Close()
	}
	return nil
}

// natsKey maps key onto the characters JetStream accepts. Dots are replaced
// too since leading, trailing or doubled dots are rejected.
func natsKey(key string) string {
	if key == "" {
		return "_"
	}
	var b strings.Builder
	for _, r := range key {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '-', r == '/', r == '_', r == '=':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}
