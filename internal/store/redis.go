package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
)

// DefaultKey is the Redis key used when none is configured.
const DefaultKey = "mss:current_sender"

// Redis is a Store kept in a single Redis key so that several service
// instances share the same starting provider.
type Redis struct {
	client redis.UniversalClient
	key    string
}

// NewRedis creates a Redis store using the given key.
func NewRedis(client redis.UniversalClient, key string) *Redis {
	if key == "" {
		key = DefaultKey
	}
	return &Redis{client: client, key: key}
}

// Get returns the stored index. A missing key means unset.
func (r *Redis) Get(ctx context.Context) (int, bool, error) {
	v, err := r.client.Get(ctx, r.key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("failed to read current provider: %w", err)
	}

	index, err := strconv.Atoi(v)
	if err != nil {
		return 0, false, fmt.Errorf("invalid current provider value %q: %w", v, err)
	}
	return index, true, nil
}

// Set overwrites the stored index. The key never expires.
func (r *Redis) Set(ctx context.Context, index int) error {
	if err := r.client.Set(ctx, r.key, index, 0).Err(); err != nil {
		return fmt.Errorf("failed to write current provider: %w", err)
	}
	return nil
}
