// Package cache defines the narrow cache-client contract consumed by the
// token service, plus its Redis implementation. The cache is a rebuildable
// read-through accelerator over the token store, never a system of record.
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrCacheMiss is returned by Get when the key is absent.
var ErrCacheMiss = errors.New("cache: key not found")

// Client is deliberately minimal (get / set-with-TTL / delete) so tests
// can substitute an in-memory fake.
type Client interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}
