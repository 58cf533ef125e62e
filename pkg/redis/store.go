package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Store is a whole-value key/value view over Redis. Every value is a single
// byte blob that is read and written atomically; no per-record operations.
type Store struct {
	client *Client
}

// NewStore creates a store backed by the given client
func NewStore(client *Client) *Store {
	return &Store{client: client}
}

// Get retrieves a value. The second return is false when the key is absent.
func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	fullKey := s.fullKey(key)

	data, err := s.client.Redis().Get(ctx, fullKey).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("store get %s: %w", key, err)
	}

	return data, true, nil
}

// Set overwrites a value. Values never expire; consumers overwrite them.
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	fullKey := s.fullKey(key)

	if err := s.client.Redis().Set(ctx, fullKey, value, 0).Err(); err != nil {
		return fmt.Errorf("store set %s: %w", key, err)
	}

	return nil
}

// Delete removes a key
func (s *Store) Delete(ctx context.Context, key string) error {
	fullKey := s.fullKey(key)

	if err := s.client.Redis().Del(ctx, fullKey).Err(); err != nil {
		return fmt.Errorf("store delete %s: %w", key, err)
	}

	return nil
}

func (s *Store) fullKey(key string) string {
	return fmt.Sprintf("%s:%s", s.client.Prefix(), key)
}
