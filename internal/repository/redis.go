package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// releaseScript deletes the lock only if we still own it.
const releaseScript = `if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`

// RedisBackend stores keys as plain Redis strings. Update takes a short
// SET NX lock on "<key>:lock" so writers from several processes do not
// interleave.
type RedisBackend struct {
	client   redis.Cmdable
	lockTTL  time.Duration
	lockWait time.Duration
	newToken func() string
	log      zerolog.Logger
}

// NewRedisBackend constructs a RedisBackend.
func NewRedisBackend(client redis.Cmdable, log zerolog.Logger) *RedisBackend {
	return &RedisBackend{
		client:   client,
		log:      log,
		lockTTL:  5 * time.Second,
		lockWait: 2 * time.Second,
		newToken: func() string { return uuid.New().String() },
	}
}

// Get implements Backend.
func (r *RedisBackend) Get(ctx context.Context, key string) ([]byte, error) {
	v, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrKeyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	return v, nil
}

// Update implements Backend.
func (r *RedisBackend) Update(ctx context.Context, key string, fn func([]byte, bool) ([]byte, error)) error {
	lockKey := key + ":lock"
	token := r.newToken()
	if err := r.acquire(ctx, lockKey, token); err != nil {
		return err
	}
	defer r.release(context.WithoutCancel(ctx), lockKey, token)

	cur, err := r.Get(ctx, key)
	found := true
	if errors.Is(err, ErrKeyNotFound) {
		found, err = false, nil
	}
	if err != nil {
		return err
	}

	next, err := fn(cur, found)
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, key, string(next), 0).Err(); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

func (r *RedisBackend) acquire(ctx context.Context, lockKey, token string) error {
	deadline := time.Now().Add(r.lockWait)
	for {
		ok, err := r.client.SetNX(ctx, lockKey, token, r.lockTTL).Result()
		if err != nil {
			return fmt.Errorf("acquire %s: %w", lockKey, err)
		}
		if ok {
			return nil
		}
		if !time.Now().Before(deadline) {
			return fmt.Errorf("acquire %s: lock busy", lockKey)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(50 * time.Millisecond):
		}
	}
}

// release drops the lock if token still owns it. A failure only delays the
// next writer until lockTTL, so it is logged and not returned.
func (r *RedisBackend) release(ctx context.Context, lockKey, token string) {
	n, err := r.client.Eval(ctx, releaseScript, []string{lockKey}, token).Int64()
	switch {
	case err != nil:
		r.log.Debug().Err(err).Str("lock", lockKey).Msg("redis lock release failed")
	case n == 0:
		r.log.Debug().Str("lock", lockKey).Msg("redis lock expired before release")
	}
}
