package identity

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisKV is the small subset of redis operations the store needs.
type RedisKV interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// RedisStore shares the identity between devices pointed at the same key.
type RedisStore struct {
	kv  RedisKV
	key string
}

func NewRedisStore(addr, password, key string) *RedisStore {
	c := redis.NewClient(&redis.Options{Addr: addr, Password: password})
	return &RedisStore{kv: c, key: key}
}

func NewRedisStoreWith(kv RedisKV, key string) *RedisStore { return &RedisStore{kv: kv, key: key} }

func (r *RedisStore) Get(ctx context.Context) (string, error) {
	v, err := r.kv.Get(ctx, r.key).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return v, err
}

func (r *RedisStore) Set(ctx context.Context, id string) error {
	return r.kv.Set(ctx, r.key, id, 0).Err()
}

func (r *RedisStore) Clear(ctx context.Context) error {
	return r.kv.Del(ctx, r.key).Err()
}

// Close releases the underlying client when the store owns one.
func (r *RedisStore) Close() error {
	if c, ok := r.kv.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}
