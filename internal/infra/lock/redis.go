package lock

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"affiliate-notify/internal/usecase/shared"

	"github.com/cenkalti/backoff/v4"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "affiliate-notify:lock:"

// releaseScript deletes the key only while it still holds our token, so a
// lock that expired and was re-taken by someone else is left alone.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type RedisLocker struct {
	client redis.UniversalClient
}

func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	client := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

func NewRedisLocker(client redis.UniversalClient) *RedisLocker {
	return &RedisLocker{client: client}
}

// Acquire polls SET NX PX until it wins, ctx ends, or ttl has elapsed
// without success.
func (l *RedisLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (shared.Lock, error) {
	token, err := newToken()
	if err != nil {
		return nil, err
	}
	fullKey := keyPrefix + key

	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = pollMin
	exp.MaxInterval = pollMax
	exp.Multiplier = 2
	exp.MaxElapsedTime = ttl
	exp.Reset()

	for {
		ok, err := l.client.SetNX(ctx, fullKey, token, ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("acquire lock %s: %w", key, err)
		}
		if ok {
			return &redisLock{client: l.client, key: fullKey, token: token}, nil
		}
		wait := exp.NextBackOff()
		if wait == backoff.Stop {
			return nil, ErrLockHeld
		}
		select {
		case <-ctx.Done():
			return nil, ErrLockHeld
		case <-time.After(wait):
		}
	}
}

type redisLock struct {
	client redis.UniversalClient
	key    string
	token  string
}

func (l *redisLock) Release(ctx context.Context) error {
	n, err := releaseScript.Run(ctx, l.client, []string{l.key}, l.token).Int()
	if err != nil {
		return fmt.Errorf("release lock %s: %w", l.key, err)
	}
	if n == 0 {
		slog.Warn("lock expired before release", "key", l.key)
	}
	return nil
}

func newToken() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("lock token: %w", err)
	}
	return hex.EncodeToString(b), nil
}
