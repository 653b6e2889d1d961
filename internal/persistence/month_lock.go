package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// MonthLocker guards a (year, month) so two concurrent generation runs
// cannot race each other to the persist step.
type MonthLocker interface {
	Acquire(ctx context.Context, year, month int) (release func(), acquired bool, err error)
}

// RedisMonthLock is an advisory lock backed by SET NX with a TTL. The TTL
// bounds how long a crashed run can wedge the month.
type RedisMonthLock struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisMonthLock wires the lock.
func NewRedisMonthLock(r *Redis, ttl time.Duration) *RedisMonthLock {
	var client *redis.Client
	if r != nil {
		client = r.Client
	}
	return &RedisMonthLock{client: client, ttl: ttl}
}

// Acquire takes the month lock. When redis is not configured the lock
// degrades to a no-op so single-instance deployments still work.
func (l *RedisMonthLock) Acquire(ctx context.Context, year, month int) (func(), bool, error) {
	if l.client == nil {
		return func() {}, true, nil
	}
	key := lockKey(year, month)
	ok, err := l.client.SetNX(ctx, key, "locked", l.ttl).Result()
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, nil
	}
	release := func() {
		_ = l.client.Del(context.Background(), key).Err()
	}
	return release, true, nil
}

func lockKey(year, month int) string {
	return fmt.Sprintf("lock:schedule:%d-%d", year, month)
}
