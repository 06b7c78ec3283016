// Package cache keeps transients in a Redis object cache, the way WordPress
// does when a persistent object cache drop-in is installed.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mesh-intelligence/urlcoupons/pkg/types"
)

// RedisTransients implements types.Transients on Redis. Values are stored
// JSON-encoded under <prefix>transient:<name>.
type RedisTransients struct {
	client redis.UniversalClient
	prefix string
}

var _ types.Transients = (*RedisTransients)(nil)

// NewRedisTransients returns a transient store using client.
func NewRedisTransients(client redis.UniversalClient, prefix string) *RedisTransients {
	return &RedisTransients{client: client, prefix: prefix}
}

// Dial connects to addr and verifies the server answers.
func Dial(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connecting to redis at %s: %w", addr, err)
	}
	return client, nil
}

func (r *RedisTransients) key(name string) string {
	return r.prefix + "transient:" + name
}

// GetTransient decodes the named transient into dst.
func (r *RedisTransients) GetTransient(ctx context.Context, name string, dst any) (bool, error) {
	data, err := r.client.Get(ctx, r.key(name)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("getting transient %s: %w", name, err)
	}
	if dst == nil {
		return true, nil
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return true, fmt.Errorf("decoding transient %s: %w", name, err)
	}
	return true, nil
}

// SetTransient stores value for ttl. A zero ttl never expires.
func (r *RedisTransients) SetTransient(ctx context.Context, name string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encoding transient %s: %w", name, err)
	}
	if err := r.client.Set(ctx, r.key(name), data, ttl).Err(); err != nil {
		return fmt.Errorf("setting transient %s: %w", name, err)
	}
	return nil
}

// DeleteTransient removes the named transient.
func (r *RedisTransients) DeleteTransient(ctx context.Context, name string) error {
	if err := r.client.Del(ctx, r.key(name)).Err(); err != nil {
		return fmt.Errorf("deleting transient %s: %w", name, err)
	}
	return nil
}
