package redis

import (
	"context"
	"fmt"

	"github.com/modelregistry/webhooks/pkg/redis"
)

// Dial connects to Redis using pkg/redis.Connect (retrying per cfg) and
// wraps the resulting client in a Store with a working Healthcheck. This is
// the path a process that owns its own Redis connection lifecycle should
// use; a process that already has a *redis.Client / *redis.ClusterClient
// from elsewhere should call New directly instead, in which case
// Healthcheck reports ErrHealthcheckUnavailable.
func Dial(ctx context.Context, cfg redis.Config) (*Store, error) {
	rdb, err := redis.Connect(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("webhookstore/redis: connect: %w", err)
	}
	return &Store{rdb: rdb, conn: rdb}, nil
}

// Healthcheck returns a health-check function for the Redis connection
// backing store, suitable for registering against an HTTP or gRPC liveness
// probe alongside the rest of a process's health checks. Only available on
// a Store built with Dial.
func (s *Store) Healthcheck() func(context.Context) error {
	if s.conn == nil {
		return func(context.Context) error { return ErrHealthcheckUnavailable }
	}
	return redis.Healthcheck(s.conn)
}
