package reminders

import (
	"context"
	"errors"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"

	"TRIPPLANNER_BACK-END/internal/logger"
)

// ErrLocked means another process holds the lock.
var ErrLocked = errors.New("lock held elsewhere")

// Locker guards a scan so only one process runs it at a time.
type Locker interface {
	Lock(ctx context.Context, key string, ttl time.Duration) (unlock func(), err error)
}

// RedisLocker implements Locker with redislock.
type RedisLocker struct {
	locker *redislock.Client
}

func NewRedisLocker(rdb *redis.Client) *RedisLocker {
	return &RedisLocker{locker: redislock.New(rdb)}
}

func (l *RedisLocker) Lock(ctx context.Context, key string, ttl time.Duration) (func(), error) {
	lock, err := l.locker.Obtain(ctx, key, ttl, nil)
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, ErrLocked
	}
	if err != nil {
		return nil, err
	}
	return func() {
		if err := lock.Release(context.Background()); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			logger.L().Warnf("release %s: %v", key, err)
		}
	}, nil
}
