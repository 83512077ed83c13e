package redis

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/ovenly-backend/pkg/config"
)

// fakeStore keeps strings in memory and executes the client's Lua scripts
// natively, keyed by their SHA.
type fakeStore struct {
	data     map[string]string
	counters map[string]int64
	ttls     map[string]time.Duration
}

func newFakeStore() *fakeStore {
	return &fakeStore{data: map[string]string{}, counters: map[string]int64{}, ttls: map[string]time.Duration{}}
}

func (f *fakeStore) Ping(context.Context) *redis.StatusCmd { return redis.NewStatusResult("PONG", nil) }

func (f *fakeStore) Get(_ context.Context, key string) *redis.StringCmd {
	v, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeStore) Set(_ context.Context, key string, value any, ttl time.Duration) *redis.StatusCmd {
	f.data[key] = fmt.Sprint(value)
	f.ttls[key] = ttl
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeStore) SetNX(ctx context.Context, key string, value any, ttl time.Duration) *redis.BoolCmd {
	if _, ok := f.data[key]; ok {
		return redis.NewBoolResult(false, nil)
	}
	f.Set(ctx, key, value, ttl)
	return redis.NewBoolResult(true, nil)
}

func (f *fakeStore) Del(_ context.Context, keys ...string) *redis.IntCmd {
	var n int64
	for _, k := range keys {
		if _, ok := f.data[k]; ok {
			n++
		}
		delete(f.data, k)
	}
	return redis.NewIntResult(n, nil)
}

func (f *fakeStore) EvalSha(_ context.Context, sha string, keys []string, args ...any) *redis.Cmd {
	switch sha {
	case windowScript.Hash():
		f.counters[keys[0]]++
		if f.counters[keys[0]] == 1 {
			f.ttls[keys[0]] = time.Duration(args[0].(int64)) * time.Millisecond
		}
		return redis.NewCmdResult([]any{f.counters[keys[0]], f.ttls[keys[0]].Milliseconds()}, nil)
	case releaseScript.Hash():
		if f.data[keys[0]] == args[0] {
			delete(f.data, keys[0])
			return redis.NewCmdResult(int64(1), nil)
		}
		return redis.NewCmdResult(int64(0), nil)
	}
	return redis.NewCmdResult(nil, fmt.Errorf("unknown script %s", sha))
}

func (f *fakeStore) Eval(ctx context.Context, _ string, keys []string, args ...any) *redis.Cmd {
	return redis.NewCmdResult(nil, fmt.Errorf("eval not supported"))
}

func (f *fakeStore) EvalRO(ctx context.Context, script string, keys []string, args ...any) *redis.Cmd {
	return f.Eval(ctx, script, keys, args...)
}

func (f *fakeStore) EvalShaRO(ctx context.Context, sha string, keys []string, args ...any) *redis.Cmd {
	return f.EvalSha(ctx, sha, keys, args...)
}

func (f *fakeStore) ScriptExists(context.Context, ...string) *redis.BoolSliceCmd {
	return redis.NewBoolSliceResult([]bool{true}, nil)
}

func (f *fakeStore) ScriptLoad(context.Context, string) *redis.StringCmd {
	return redis.NewStringResult("", nil)
}

func TestAllowFixedWindow(t *testing.T) {
	ctx := context.Background()
	fake := newFakeStore()
	client := &Client{store: fake}

	var decisions []Decision
	for range 3 {
		d, err := client.Allow(ctx, "orders:user-1", 2, time.Minute)
		require.NoError(t, err)
		decisions = append(decisions, d)
	}

	assert.True(t, decisions[0].Allowed)
	assert.True(t, decisions[1].Allowed)
	assert.False(t, decisions[2].Allowed)
	assert.Equal(t, int64(3), decisions[2].Count)
	assert.Equal(t, time.Minute, decisions[2].RetryAfter)
	assert.Zero(t, decisions[0].RetryAfter)
	assert.Equal(t, time.Minute, fake.ttls["ovenly:rate_limit:orders:user-1"])

	other, err := client.Allow(ctx, "orders:user-2", 2, time.Minute)
	require.NoError(t, err)
	assert.True(t, other.Allowed)
}

func TestReleaseIfOwner(t *testing.T) {
	ctx := context.Background()
	client := &Client{store: newFakeStore()}
	lockKey := LockKey("cron-worker:test")

	ok, err := client.SetNX(ctx, lockKey, "token-a", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	released, err := client.ReleaseIfOwner(ctx, lockKey, "token-b")
	require.NoError(t, err)
	assert.False(t, released)

	released, err = client.ReleaseIfOwner(ctx, lockKey, "token-a")
	require.NoError(t, err)
	assert.True(t, released)

	_, err = client.Get(ctx, lockKey)
	assert.True(t, IsMiss(err))
}

func TestIdempotencyRecordLifecycle(t *testing.T) {
	ctx := context.Background()
	client := &Client{store: newFakeStore()}
	k := client.IdempotencyKey("POST /api/v1/orders", "user-1:abc")

	won, err := client.SetNX(ctx, k, "pending", time.Minute)
	require.NoError(t, err)
	assert.True(t, won)
	won, err = client.SetNX(ctx, k, "pending", time.Minute)
	require.NoError(t, err)
	assert.False(t, won)

	require.NoError(t, client.Set(ctx, k, "stored", time.Minute))
	got, err := client.Get(ctx, k)
	require.NoError(t, err)
	assert.Equal(t, "stored", got)

	require.NoError(t, client.Del(ctx, k))
	_, err = client.Get(ctx, k)
	assert.True(t, IsMiss(err))
}

func TestKeys(t *testing.T) {
	client := &Client{}
	assert.Equal(t, "ovenly:idempotency:scope:id", client.IdempotencyKey("scope", "id"))
	assert.Equal(t, "ovenly:idempotency:scope", client.IdempotencyKey("scope", "  "))
	assert.Equal(t, "ovenly:rate_limit:orders:u1", client.RateLimitKey("orders:u1"))
	assert.Equal(t, "ovenly:lock:cron-worker:prod", LockKey("cron-worker:prod"))
}

func TestUninitializedClient(t *testing.T) {
	client := &Client{}
	assert.Error(t, client.Ping(context.Background()))
	_, err := client.Allow(context.Background(), "x", 1, time.Second)
	assert.Error(t, err)
	assert.NoError(t, client.Close())
}

func TestOptionsFromConfig(t *testing.T) {
	_, err := optionsFromConfig(config.RedisConfig{})
	assert.Error(t, err)

	opts, err := optionsFromConfig(config.RedisConfig{URL: "redis://localhost:6379/2", PoolSize: 7, DialTimeout: 3 * time.Second})
	require.NoError(t, err)
	assert.Equal(t, 2, opts.DB)
	assert.Equal(t, 7, opts.PoolSize)
	assert.Equal(t, 3*time.Second, opts.DialTimeout)

	opts, err = optionsFromConfig(config.RedisConfig{Address: "cache:6379", DB: 4})
	require.NoError(t, err)
	assert.Equal(t, "cache:6379", opts.Addr)
	assert.Equal(t, 4, opts.DB)
}
