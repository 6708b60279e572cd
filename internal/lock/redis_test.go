package lock

import (
	"context"
	"testing"
	"time"

	"github.com/avoronov/eventbooking/config"
	"github.com/stretchr/testify/assert"
)

func TestNewRedisLocker(t *testing.T) {
	locker := NewRedisLocker(config.RedisConfig{Addr: "localhost:6379"}, 10*time.Second, 100*time.Millisecond)
	assert.NotNil(t, locker)
	assert.NotNil(t, locker.client)
	assert.Equal(t, 10*time.Second, locker.ttl)
	assert.Equal(t, 100*time.Millisecond, locker.retryInterval)
}

func TestNewRedisLocker_DefaultsZeroValues(t *testing.T) {
	locker := NewRedisLocker(config.RedisConfig{Addr: "localhost:6379"}, 0, 0)

	assert.Equal(t, defaultTTL, locker.ttl)
	assert.Equal(t, defaultRetryInterval, locker.retryInterval)
}

func TestNewRedisLocker_DefaultsNegativeValues(t *testing.T) {
	locker := NewRedisLocker(config.RedisConfig{Addr: "localhost:6379"}, -time.Second, -time.Millisecond)

	assert.Equal(t, defaultTTL, locker.ttl)
	assert.Equal(t, defaultRetryInterval, locker.retryInterval)
}

func TestRelease_EmptyToken(t *testing.T) {
	locker := NewRedisLocker(config.RedisConfig{Addr: "localhost:6379"}, 10*time.Second, 100*time.Millisecond)

	err := locker.Release(context.Background(), "someEventId", "")

	assert.ErrorIs(t, err, ErrNotHeld)
}

func TestLockKey(t *testing.T) {
	assert.Equal(t, "lock:event:someEventId", lockKey("someEventId"))
}
