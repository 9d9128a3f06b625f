package repository

import (
	"time"

	"github.com/BloggingApp/post-store/internal/repository/filestore"
	"github.com/BloggingApp/post-store/internal/repository/redisrepo"
	"github.com/redis/go-redis/v9"
)

type Repository struct {
	File  *filestore.Store
	Redis *redisrepo.RedisRepository
}

// New wires the file store at path. rdb may be nil, in which case the
// collection is always read from the file.
func New(path string, rdb *redis.Client, cacheTTL time.Duration) *Repository {
	repo := &Repository{
		File: filestore.New(path),
	}
	if rdb != nil {
		repo.Redis = redisrepo.New(rdb, cacheTTL)
	}
	return repo
}
