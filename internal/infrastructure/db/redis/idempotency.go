package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const idempotencyTTL = time.Hour

// IdempotencyStore provides booking replay guards backed by Redis.
// Key format: idem:<client-supplied key>
type IdempotencyStore struct {
	client *redis.Client
}

// NewIdempotencyStore creates an IdempotencyStore wrapping the given client.
func NewIdempotencyStore(client *redis.Client) *IdempotencyStore {
	return &IdempotencyStore{client: client}
}

// Seen reports whether a booking with this key already succeeded.
func (s *IdempotencyStore) Seen(ctx context.Context, key string) (bool, error) {
	n, err := s.client.Exists(ctx, s.key(key)).Result()
	if err != nil {
		return false, fmt.Errorf("idempotency check: %w", err)
	}
	return n > 0, nil
}

// Mark records a successful booking under this key (expires after idempotencyTTL).
func (s *IdempotencyStore) Mark(ctx context.Context, key string) error {
	return s.client.Set(ctx, s.key(key), "1", idempotencyTTL).Err()
}

func (s *IdempotencyStore) key(key string) string {
	return "idem:" + key
}
