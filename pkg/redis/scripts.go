package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// windowScript increments KEYS[1], starts its expiry on the first hit, and
// returns {count, remaining ttl in ms}.
var windowScript = redis.NewScript(`
local count = redis.call('INCR', KEYS[1])
if count == 1 then
  redis.call('PEXPIRE', KEYS[1], ARGV[1])
end
return {count, redis.call('PTTL', KEYS[1])}
`)

// releaseScript deletes KEYS[1] only while it still holds ARGV[1].
var releaseScript = redis.NewScript(`
if redis.call('GET', KEYS[1]) == ARGV[1] then
  return redis.call('DEL', KEYS[1])
end
return 0
`)

// Decision is the outcome of one rate-limited call.
type Decision struct {
	Allowed    bool
	Count      int64
	RetryAfter time.Duration
}

// Allow counts one call against scope's fixed window of length window.
func (c *Client) Allow(ctx context.Context, scope string, limit int64, window time.Duration) (Decision, error) {
	if c.store == nil {
		return Decision{}, errNotInitialized
	}
	raw, err := windowScript.Run(ctx, c.store, []string{c.RateLimitKey(scope)}, window.Milliseconds()).Int64Slice()
	if err != nil {
		return Decision{}, fmt.Errorf("rate window %s: %w", scope, err)
	}
	if len(raw) != 2 {
		return Decision{}, fmt.Errorf("rate window %s: unexpected reply %v", scope, raw)
	}
	d := Decision{Count: raw[0], Allowed: raw[0] <= limit}
	if !d.Allowed && raw[1] > 0 {
		d.RetryAfter = time.Duration(raw[1]) * time.Millisecond
	}
	return d, nil
}

// ReleaseIfOwner deletes key when its value is still token.
func (c *Client) ReleaseIfOwner(ctx context.Context, key, token string) (bool, error) {
	if c.store == nil {
		return false, errNotInitialized
	}
	n, err := releaseScript.Run(ctx, c.store, []string{key}, token).Int64()
	if err != nil {
		return false, fmt.Errorf("release %s: %w", key, err)
	}
	return n == 1, nil
}
