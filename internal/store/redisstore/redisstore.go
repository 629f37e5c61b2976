// Package redisstore implements store.Store on Redis, one hash per namespace.
package redisstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"rewecart/internal/store"
)

// DefaultPrefix is prepended to every namespace hash key.
const DefaultPrefix = "rewecart"

// Options configures the Redis connection.
type Options struct {
	Address  string
	Password string
	DB       int
	Prefix   string
}

// Store is a store.Store backed by Redis hashes.
type Store struct {
	client *redis.Client
	prefix string
}

// NewClient creates a Redis client from options.
func NewClient(opts Options) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     opts.Address,
		Password: opts.Password,
		DB:       opts.DB,
	})
}

// Open connects to Redis and verifies the connection.
func Open(ctx context.Context, opts Options) (*Store, error) {
	client := NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return New(client, opts.Prefix), nil
}

// New wraps an existing client.
func New(client *redis.Client, prefix string) *Store {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Store{client: client, prefix: prefix}
}

func (s *Store) hashKey(ns store.Namespace) string {
	return s.prefix + ":" + string(ns)
}

// Get implements store.Store.
func (s *Store) Get(ctx context.Context, ns store.Namespace, key string) ([]byte, error) {
	if s.client == nil {
		return nil, fmt.Errorf("redis client is nil")
	}
	val, err := s.client.HGet(ctx, s.hashKey(ns), key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %s/%s from redis: %w", ns, key, err)
	}
	return val, nil
}

// Put implements store.Store.
func (s *Store) Put(ctx context.Context, ns store.Namespace, key string, value []byte) error {
	if s.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	if err := s.client.HSet(ctx, s.hashKey(ns), key, value).Err(); err != nil {
		return fmt.Errorf("failed to set %s/%s in redis: %w", ns, key, err)
	}
	return nil
}

// Delete implements store.Store.
func (s *Store) Delete(ctx context.Context, ns store.Namespace, key string) error {
	if s.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	if err := s.client.HDel(ctx, s.hashKey(ns), key).Err(); err != nil {
		return fmt.Errorf("failed to delete %s/%s from redis: %w", ns, key, err)
	}
	return nil
}

// List implements store.Store.
func (s *Store) List(ctx context.Context, ns store.Namespace) (map[string][]byte, error) {
	if s.client == nil {
		return nil, fmt.Errorf("redis client is nil")
	}
	vals, err := s.client.HGetAll(ctx, s.hashKey(ns)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list %s from redis: %w", ns, err)
	}
	result := make(map[string][]byte, len(vals))
	for k, v := range vals {
		result[k] = []byte(v)
	}
	return result, nil
}

// Clear implements store.Store.
func (s *Store) Clear(ctx context.Context, ns store.Namespace) error {
	if s.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	if err := s.client.Del(ctx, s.hashKey(ns)).Err(); err != nil {
		return fmt.Errorf("failed to clear %s in redis: %w", ns, err)
	}
	return nil
}

// Close implements store.Store.
func (s *Store) Close() error {
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}
