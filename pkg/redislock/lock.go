// Package redislock provides a minimal advisory lock on top of Redis,
// used to keep overlapping scheduler invocations from scanning the cart
// pool at the same time. The lock is best effort: storage-level guards
// remain the correctness backstop when it is unavailable.
package redislock

import (
	"context"
	"time"

	rd "github.com/redis/go-redis/v9"
)

// SchedulerPassKey names the lock held while a scheduler pass runs.
const SchedulerPassKey = "cart_recovery:scheduler:pass"

// luaReleaseIfMatch deletes the lock only when it still holds our token,
// so an expired lock reacquired by another pass is never released by us.
const luaReleaseIfMatch = `
local lockKey = KEYS[1]
local token = ARGV[1]
if redis.call('GET', lockKey) == token then
  return redis.call('DEL', lockKey)
end
return 0
`

// Acquire takes the lock for ttl. ok is false when another holder has it.
func Acquire(ctx context.Context, rdb *rd.Client, key, token string, ttl time.Duration) (bool, error) {
	return rdb.SetNX(ctx, key, token, ttl).Result()
}

// Release safely frees the lock if the token still matches.
func Release(ctx context.Context, rdb *rd.Client, key, token string) error {
	_, err := rdb.Eval(ctx, luaReleaseIfMatch, []string{key}, token).Int()
	return err
}
