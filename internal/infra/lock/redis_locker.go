package lock

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

const keyPrefix = "attribution:lease:"

// releaseScript deletes the key only while it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker shares leases between processes through SET NX PX.
type RedisLocker struct {
	client  redis.UniversalClient
	ttl     time.Duration
	release time.Duration
}

// NewRedisLocker creates a locker backed by client.
func NewRedisLocker(client redis.UniversalClient, ttl time.Duration) *RedisLocker {
	return &RedisLocker{
		client:  client,
		ttl:     ttl,
		release: 2 * time.Second,
	}
}

// TryAcquire sets the lease key with a random token when it is absent.
func (l *RedisLocker) TryAcquire(ctx context.Context, key string) (func(), bool, error) {
	token := uuid.NewString()
	redisKey := keyPrefix + key

	ok, err := l.client.SetNX(ctx, redisKey, token, l.ttl).Result()
	if err != nil {
		return nil, false, errors.Wrapf(err, "acquire lease %s", key)
	}
	if !ok {
		return nil, false, nil
	}

	release := func() {
		// The caller's context may already be done; the lease still has to go.
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), l.release)
		defer cancel()

		_ = releaseScript.Run(ctx, l.client, []string{redisKey}, token).Err()
	}

	return release, true, nil
}
