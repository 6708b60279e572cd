// Package lock provides a named mutual-exclusion primitive shared by every
// process through Redis. A lock is taken with SET NX and a TTL so that a
// crashed holder cannot wedge the resource, and released with a
// compare-and-delete script so a holder can only release its own
// acquisition.
package lock

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/avoronov/eventbooking/config"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrNotHeld is returned when releasing with a token that does not
// represent an acquisition.
var ErrNotHeld = errors.New("lock not held")

var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

const (
	defaultTTL           = 10 * time.Second
	defaultRetryInterval = 50 * time.Millisecond
)

type RedisLocker struct {
	client        *redis.Client
	ttl           time.Duration
	retryInterval time.Duration
}

// NewRedisLocker falls back to defaults for non-positive ttl or retry
// values: a zero ttl would store lock keys with no expiry so a crashed
// holder could wedge the resource forever, and a zero retry interval is
// not a valid jitter bound.
func NewRedisLocker(cfg config.RedisConfig, ttl, retryInterval time.Duration) *RedisLocker {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	if retryInterval <= 0 {
		retryInterval = defaultRetryInterval
	}
	return &RedisLocker{
		client:        redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		ttl:           ttl,
		retryInterval: retryInterval,
	}
}

// Acquire blocks until the named resource is free or ctx is done. It
// returns a token identifying this acquisition alone; Release consumes
// it, so a lock that expired and was re-acquired elsewhere can never be
// released on the new holder's behalf. Waiters poll with a jittered
// interval; ordering between waiters is not strict.
func (l *RedisLocker) Acquire(ctx context.Context, resourceID string) (string, error) {
	token := uuid.NewString()
	key := lockKey(resourceID)

	for {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return "", fmt.Errorf("acquire lock %s: %w", resourceID, err)
		}
		if ok {
			return token, nil
		}

		wait := l.retryInterval + time.Duration(rand.Int63n(int64(l.retryInterval)))
		select {
		case <-ctx.Done():
			return "", fmt.Errorf("acquire lock %s: %w", resourceID, ctx.Err())
		case <-time.After(wait):
		}
	}
}

// Release frees the resource if the acquisition behind token still holds
// it. A lock that already expired counts as released.
func (l *RedisLocker) Release(ctx context.Context, resourceID, token string) error {
	if token == "" {
		return ErrNotHeld
	}

	if err := releaseScript.Run(ctx, l.client, []string{lockKey(resourceID)}, token).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("release lock %s: %w", resourceID, err)
	}
	return nil
}

func lockKey(resourceID string) string {
	return fmt.Sprintf("lock:event:%s", resourceID)
}
