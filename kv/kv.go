package kv

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrUnavailable is returned when the backing store cannot be reached or
// answers with a protocol-level failure. Callers treat it as "unknown
// state" and fail closed.
var ErrUnavailable = errors.New("credential store unavailable")

// Store is the credential store adapter: a key-value surface with per-key
// TTLs and atomic writes. Every mutation the revocation ledger needs is a
// single atomic operation at the store level; there are no application
// read-modify-write round trips.
type Store interface {
	// PutNX inserts key=value with the given TTL only if the key is
	// absent. It reports whether this call performed the insert.
	PutNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error)

	// Get returns the value and whether the key exists.
	Get(ctx context.Context, key string) (string, bool, error)

	// IncrWithTTL atomically increments the integer at key and refreshes
	// its TTL, returning the new value. A missing key counts from zero.
	IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error)
}

// Redis is the production Store backed by a Redis client.
type Redis struct {
	client redis.UniversalClient
}

// NewRedis wraps the given client. The client's lifecycle stays with the
// caller.
func NewRedis(client redis.UniversalClient) *Redis {
	return &Redis{client: client}
}

func (r *Redis) PutNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	inserted, err := r.client.SetNX(ctx, key, value, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return inserted, nil
}

func (r *Redis) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return value, true, nil
}

func (r *Redis) IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	var incr *redis.IntCmd
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		pipe.Expire(ctx, key, ttl)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return incr.Val(), nil
}
