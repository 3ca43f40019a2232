package redisclient

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/hackgods/saude-connect/internal/lock"
	"github.com/hackgods/saude-connect/internal/metrics"
)

const retryInterval = 25 * time.Millisecond

type redisLocker struct {
	client  *redis.Client
	ttl     time.Duration
	wait    time.Duration
	metrics *metrics.Collector
}

// NewRedisLocker returns a lock.Locker backed by one Redis key per resource,
// shared by every process using the same Redis. Busy keys are retried until
// wait elapses.
func NewRedisLocker(client *redis.Client, ttl, wait time.Duration, m *metrics.Collector) lock.Locker {
	return &redisLocker{
		client:  client,
		ttl:     ttl,
		wait:    wait,
		metrics: m,
	}
}

func (l *redisLocker) WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	redisKey := fmt.Sprintf("saude:lock:%s", key)
	token := uuid.NewString()

	if err := l.acquire(ctx, redisKey, token); err != nil {
		return err
	}

	defer func() {
		_ = l.release(context.WithoutCancel(ctx), redisKey, token)
	}()

	ctxWithTimeout, cancel := context.WithTimeout(ctx, l.ttl)
	defer cancel()

	return fn(ctxWithTimeout)
}

func (l *redisLocker) acquire(ctx context.Context, key, token string) error {
	deadline := time.Now().Add(l.wait)
	for {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			l.metrics.ObserveLock("error")
			return fmt.Errorf("acquire lock %s: %w", key, err)
		}
		if ok {
			l.metrics.ObserveLock("acquired")
			return nil
		}
		if !time.Now().Before(deadline) {
			l.metrics.ObserveLock("busy")
			return lock.ErrNotAcquired
		}

		timer := time.NewTimer(retryInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

var unlockScript = redis.NewScript(`
local val = redis.call("GET", KEYS[1])
if val == ARGV[1] then
  return redis.call("DEL", KEYS[1])
else
  return 0
end
`)

func (l *redisLocker) release(ctx context.Context, key, token string) error {
	_, err := unlockScript.Run(ctx, l.client, []string{key}, token).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("release lock %s: %w", key, err)
	}
	return nil
}
