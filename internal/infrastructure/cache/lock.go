package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"p2p-backoffice/pkg/id"
)

var ErrLockHeld = errors.New("lock is held by another owner")

// release only when the stored token is still ours
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Locker hands out advisory locks backed by SETNX with a TTL.
type Locker struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewLocker(rdb *redis.Client, ttl time.Duration) *Locker {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &Locker{rdb: rdb, ttl: ttl}
}

type Lock struct {
	rdb   *redis.Client
	key   string
	token string
}

func (l *Locker) Acquire(ctx context.Context, name string) (*Lock, error) {
	key := "lock:" + name
	token := id.NewID32()
	ok, err := l.rdb.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrLockHeld
	}
	return &Lock{rdb: l.rdb, key: key, token: token}, nil
}

func (l *Lock) Release(ctx context.Context) error {
	return releaseScript.Run(ctx, l.rdb, []string{l.key}, l.token).Err()
}

// Guard runs fn while holding the named lock. A held lock yields ErrLockHeld
// without calling fn.
func (l *Locker) Guard(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	lk, err := l.Acquire(ctx, name)
	if err != nil {
		return err
	}
	defer func() { _ = lk.Release(context.Background()) }()
	return fn(ctx)
}
