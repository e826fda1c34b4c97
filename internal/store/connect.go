package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	// ErrEmptyRedisURL is returned when the redis backend has no URL.
	ErrEmptyRedisURL = errors.New("redis URL is empty")

	// ErrInvalidRedisURL is returned for URLs without a redis:// or rediss:// scheme.
	ErrInvalidRedisURL = errors.New("redis URL must start with redis:// or rediss://")
)

const (
	pingTimeout = 5 * time.Second
	opTimeout   = 3 * time.Second
)

// OpenRedis parses url, creates a client and verifies the connection.
func OpenRedis(ctx context.Context, url string) (*redis.Client, error) {
	if url == "" {
		return nil, ErrEmptyRedisURL
	}
	if !strings.HasPrefix(url, "redis://") && !strings.HasPrefix(url, "rediss://") {
		return nil, ErrInvalidRedisURL
	}

	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, errors.Join(ErrInvalidRedisURL, err)
	}
	opts.ReadTimeout = opTimeout
	opts.WriteTimeout = opTimeout
	opts.DialTimeout = pingTimeout

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}
