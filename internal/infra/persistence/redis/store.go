// Package redis persists the document under a single Redis key.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/go-redis/redis/v8"

	"medshare/pkg/domain"
)

var _ domain.Adapter = (*Store)(nil)

const defaultKey = "medshare:document"

// Client is the slice of the go-redis API the adapter uses.
type Client interface {
	Get(ctx context.Context, key string) *goredis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *goredis.StatusCmd
}

// Options configures the connection.
type Options struct {
	Addr     string
	Password string
	DB       int
	Key      string
}

// Store reads and replaces the document with GET/SET, which Redis applies
// atomically.
type Store struct {
	client Client
	key    string
}

// NewStore connects to Redis and verifies the connection with PING.
func NewStore(ctx context.Context, opts Options) (*Store, error) {
	addr := opts.Addr
	if addr == "" {
		addr = "localhost:6379"
	}
	client := goredis.NewClient(&goredis.Options{
		Addr:     addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", addr, err)
	}
	return NewStoreWithClient(client, opts.Key), nil
}

// NewStoreWithClient wraps an existing client.
func NewStoreWithClient(client Client, key string) *Store {
	if key == "" {
		key = defaultKey
	}
	return &Store{client: client, key: key}
}

// Key returns the Redis key holding the document.
func (s *Store) Key() string { return s.key }

// Driver implements domain.Adapter.
func (s *Store) Driver() string { return "redis" }

// Load returns the stored document. A missing key is not an error.
func (s *Store) Load(ctx context.Context) ([]byte, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", s.key, err)
	}
	return data, nil
}

// Save replaces the document without expiry.
func (s *Store) Save(ctx context.Context, doc []byte) error {
	if err := s.client.Set(ctx, s.key, doc, 0).Err(); err != nil {
		return fmt.Errorf("set %s: %w", s.key, err)
	}
	return nil
}
