package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/vidmark/internal/kv"
)

// Store is the Redis-backed key-value store.
// Values are stored without TTL: bookmarks live until deleted.
type Store struct {
	client *redis.Client
}

var _ kv.Store = (*Store)(nil)

// NewStore creates a new Redis store
func NewStore(client *redis.Client) *Store {
	return &Store{
		client: client,
	}
}

// Get decodes the value stored under the namespace key
func (s *Store) Get(ctx context.Context, key string, dest any) (bool, error) {
	data, err := s.client.Get(ctx, KVKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("failed to get %s: %w", key, err)
	}

	if err := kv.Decode(key, data, dest); err != nil {
		return false, err
	}
	return true, nil
}

// Set stores the JSON encoding of value under the namespace key
func (s *Store) Set(ctx context.Context, key string, value any) error {
	data, err := kv.Encode(key, value)
	if err != nil {
		return err
	}

	if err := s.client.Set(ctx, KVKey(key), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	return nil
}

// Remove deletes the namespace key
func (s *Store) Remove(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, KVKey(key)).Err(); err != nil {
		return fmt.Errorf("failed to remove %s: %w", key, err)
	}
	return nil
}

// Ping reports whether Redis answers
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
