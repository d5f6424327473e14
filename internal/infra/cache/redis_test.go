package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRedis answers GET and SET from a map inside a client hook, so no
// server is dialed.
type fakeRedis struct {
	data map[string]string
	ttls map[string]string
	fail error
}

func (f *fakeRedis) DialHook(next redis.DialHook) redis.DialHook { return next }

func (f *fakeRedis) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return next
}

func (f *fakeRedis) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		if f.fail != nil {
			cmd.SetErr(f.fail)
			return f.fail
		}
		args := cmd.Args()
		key := fmt.Sprint(args[1])
		switch c := cmd.(type) {
		case *redis.StringCmd:
			v, ok := f.data[key]
			if !ok {
				c.SetErr(redis.Nil)
				return redis.Nil
			}
			c.SetVal(v)
		case *redis.StatusCmd:
			f.data[key] = fmt.Sprint(args[2])
			if len(args) >= 5 {
				f.ttls[key] = strings.ToLower(fmt.Sprint(args[3])) + " " + fmt.Sprint(args[4])
			}
			c.SetVal("OK")
		default:
			return fmt.Errorf("unexpected command %s", cmd.Name())
		}
		return nil
	}
}

func newFakeCache(t *testing.T, ttl time.Duration) (*RedisSlugCache, *fakeRedis) {
	t.Helper()
	fake := &fakeRedis{data: map[string]string{}, ttls: map[string]string{}}
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})
	client.AddHook(fake)
	t.Cleanup(func() { client.Close() })
	return newRedisSlugCache(client, ttl), fake
}

func TestRedisSlugCache(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		stored  map[string]string
		fail    error
		slug    string
		want    int64
		wantErr error
		anyErr  bool
	}{
		{name: "hit", stored: map[string]string{"footprint:slug:fp-1002-abcd": "1002"}, slug: "fp-1002-abcd", want: 1002},
		{name: "miss", slug: "fp-1002-none", wantErr: ErrMiss},
		{name: "corrupt value", stored: map[string]string{"footprint:slug:fp-bad": "x"}, slug: "fp-bad", anyErr: true},
		{name: "server down", fail: errors.New("connection refused"), slug: "fp-1002-abcd", anyErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, fake := newFakeCache(t, 10*time.Minute)
			for k, v := range tt.stored {
				fake.data[k] = v
			}
			fake.fail = tt.fail

			got, err := c.Get(ctx, tt.slug)
			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.anyErr:
				require.Error(t, err)
				assert.NotErrorIs(t, err, ErrMiss)
			default:
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestRedisSlugCache_SetStoresSerialWithTTL(t *testing.T) {
	ctx := context.Background()
	c, fake := newFakeCache(t, 10*time.Minute)

	require.NoError(t, c.Set(ctx, "fp-1002-abcd", 1002))
	assert.Equal(t, "1002", fake.data["footprint:slug:fp-1002-abcd"])
	assert.Equal(t, "ex 600", fake.ttls["footprint:slug:fp-1002-abcd"])

	got, err := c.Get(ctx, "fp-1002-abcd")
	require.NoError(t, err)
	assert.Equal(t, int64(1002), got)
}
