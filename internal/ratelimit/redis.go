package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// takeScript increments the counter and starts its window on first use.
var takeScript = redis.NewScript(`
local n = redis.call("INCR", KEYS[1])
if n == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return {n, redis.call("PTTL", KEYS[1])}
`)

// RedisStore shares counters between instances. Windows run on the Redis
// clock; the now passed to Take is ignored.
type RedisStore struct {
	client *redis.Client
	policy Policy
	prefix string
}

func NewRedisStore(client *redis.Client, policy Policy) *RedisStore {
	return &RedisStore{client: client, policy: policy, prefix: "ratelimit:"}
}

func (s *RedisStore) Take(ctx context.Context, key string, _ time.Time) (Decision, error) {
	res, err := takeScript.Run(ctx, s.client, []string{s.prefix + key}, s.policy.Window.Milliseconds()).Int64Slice()
	if err != nil {
		return Decision{}, fmt.Errorf("rate limit counter: %w", err)
	}
	if len(res) != 2 {
		return Decision{}, fmt.Errorf("rate limit counter: unexpected reply %v", res)
	}

	count, ttl := int(res[0]), time.Duration(res[1])*time.Millisecond
	if ttl < 0 {
		ttl = s.policy.Window
	}

	remaining := s.policy.Limit - count
	if remaining < 0 {
		remaining = 0
	}
	return Decision{
		Allowed:    count <= s.policy.Limit,
		Limit:      s.policy.Limit,
		Remaining:  remaining,
		RetryAfter: ttl,
	}, nil
}
