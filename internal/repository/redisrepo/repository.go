package redisrepo

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

type Default interface {
	SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Get(ctx context.Context, key string) *redis.StringCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

type RedisRepository struct {
	Default
	TTL time.Duration
}

func New(rdb *redis.Client, ttl time.Duration) *RedisRepository {
	return &RedisRepository{
		Default: newDefaultRepo(rdb),
		TTL:     ttl,
	}
}
