// Package cache holds the slug -> serial read-through cache.
package cache

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrMiss = errors.New("cache miss")

// SlugCache maps slugs to owner serials. A page's owner never changes, so
// entries only expire to bound memory.
type SlugCache interface {
	Get(ctx context.Context, slug string) (int64, error)
	Set(ctx context.Context, slug string, serial int64) error
}

// RedisSlugCache wraps a redis client.
type RedisSlugCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisSlugCache(addr, password string, ttl time.Duration) (*RedisSlugCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           0,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  500 * time.Millisecond,
		WriteTimeout: 500 * time.Millisecond,
		PoolSize:     10,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}
	return newRedisSlugCache(client, ttl), nil
}

func newRedisSlugCache(client *redis.Client, ttl time.Duration) *RedisSlugCache {
	return &RedisSlugCache{client: client, ttl: ttl}
}

func slugKey(slug string) string {
	return "footprint:slug:" + slug
}

func (r *RedisSlugCache) Get(ctx context.Context, slug string) (int64, error) {
	v, err := r.client.Get(ctx, slugKey(slug)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, ErrMiss
	}
	if err != nil {
		return 0, err
	}
	return strconv.ParseInt(v, 10, 64)
}

func (r *RedisSlugCache) Set(ctx context.Context, slug string, serial int64) error {
	return r.client.Set(ctx, slugKey(slug), strconv.FormatInt(serial, 10), r.ttl).Err()
}

func (r *RedisSlugCache) Close() error {
	return r.client.Close()
}
