package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/BloggingApp/post-store/internal/dto"
	"github.com/BloggingApp/post-store/internal/metrics"
	"github.com/BloggingApp/post-store/internal/model"
	"github.com/BloggingApp/post-store/internal/repository"
	"github.com/BloggingApp/post-store/internal/repository/filestore"
	"github.com/BloggingApp/post-store/internal/repository/redisrepo"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	opList   = "list"
	opGet    = "get"
	opAdd    = "add"
	opUpdate = "update"
	opDelete = "delete"
)

type postService struct {
	logger  *zap.Logger
	repo    *repository.Repository
	metrics *metrics.Metrics

	// mu serializes load-mutate-save sequences so concurrent mutations
	// cannot overwrite each other's changes.
	mu sync.RWMutex

	// cacheDirty is set when the cached collection could not be cleared
	// after a save. Reads bypass the cache until a later delete succeeds.
	cacheDirty atomic.Bool
}

func newPostService(logger *zap.Logger, repo *repository.Repository, metrics *metrics.Metrics) Post {
	return &postService{
		logger:  logger,
		repo:    repo,
		metrics: metrics,
	}
}

func (s *postService) ListPosts(ctx context.Context) (posts []model.Post, err error) {
	defer func() { s.metrics.ObserveStoreOperation(opList, err) }()

	return s.listPosts(ctx)
}

func (s *postService) GetPost(ctx context.Context, id int64) (post *model.Post, err error) {
	defer func() { s.metrics.ObserveStoreOperation(opGet, err) }()

	posts, err := s.listPosts(ctx)
	if err != nil {
		return nil, err
	}

	i := indexOf(posts, id)
	if i < 0 {
		return nil, ErrPostNotFound
	}

	found := posts[i]
	return &found, nil
}

func (s *postService) AddPost(ctx context.Context, input dto.PostRequest) (post *model.Post, err error) {
	defer func() { s.metrics.ObserveStoreOperation(opAdd, err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	posts, err := s.load()
	if err != nil {
		return nil, err
	}

	id, err := filestore.NextID(posts)
	if err != nil {
		s.logger.Sugar().Errorf("failed to allocate post id: %s", err.Error())
		return nil, err
	}

	created := model.Post{
		ID:      id,
		Author:  input.Author,
		Title:   input.Title,
		Content: input.Content,
	}
	posts = append(posts, created)

	if err := s.save(ctx, posts); err != nil {
		return nil, err
	}

	s.logger.Sugar().Infof("created post(%d)", created.ID)

	return &created, nil
}

func (s *postService) UpdatePost(ctx context.Context, id int64, input dto.PostRequest) (post *model.Post, err error) {
	defer func() { s.metrics.ObserveStoreOperation(opUpdate, err) }()

	s.logger.Sugar().Debugf("updating post(%d): title=%q author=%q content=%q", id, input.Title, input.Author, input.Content)

	s.mu.Lock()
	defer s.mu.Unlock()

	posts, err := s.load()
	if err != nil {
		return nil, err
	}

	i := indexOf(posts, id)
	if i < 0 {
		return nil, ErrPostNotFound
	}

	posts[i].Title = input.Title
	posts[i].Author = input.Author
	posts[i].Content = input.Content

	if err := s.save(ctx, posts); err != nil {
		return nil, err
	}

	updated := posts[i]
	return &updated, nil
}

// DeletePost removes the post with the given id. An unknown id is not an
// error; the collection is saved either way.
func (s *postService) DeletePost(ctx context.Context, id int64) (err error) {
	defer func() { s.metrics.ObserveStoreOperation(opDelete, err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	posts, err := s.load()
	if err != nil {
		return err
	}

	kept := make([]model.Post, 0, len(posts))
	for _, p := range posts {
		if p.ID != id {
			kept = append(kept, p)
		}
	}

	if err := s.save(ctx, kept); err != nil {
		return err
	}

	if len(kept) < len(posts) {
		s.logger.Sugar().Infof("deleted post(%d)", id)
	}

	return nil
}

func (s *postService) listPosts(ctx context.Context) ([]model.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if posts, ok := s.cachedPosts(ctx); ok {
		return posts, nil
	}

	posts, err := s.load()
	if err != nil {
		return nil, err
	}

	s.cachePosts(ctx, posts)

	return posts, nil
}

func (s *postService) load() ([]model.Post, error) {
	posts, err := s.repo.File.Load()
	if err != nil {
		s.logger.Sugar().Errorf("failed to load posts from %s: %s", s.repo.File.Path(), err.Error())
		return nil, err
	}
	return posts, nil
}

func (s *postService) save(ctx context.Context, posts []model.Post) error {
	if err := s.repo.File.Save(posts); err != nil {
		s.logger.Sugar().Errorf("failed to save posts to %s: %s", s.repo.File.Path(), err.Error())
		return err
	}

	s.invalidateCache(ctx)

	return nil
}

func (s *postService) cachedPosts(ctx context.Context) ([]model.Post, bool) {
	if s.repo.Redis == nil {
		return nil, false
	}

	if s.cacheDirty.Load() {
		if err := s.repo.Redis.Del(ctx, redisrepo.PostsKey()).Err(); err != nil {
			s.logger.Sugar().Warnf("posts cache is stale and still cannot be cleared: %s", err.Error())
			return nil, false
		}
		s.cacheDirty.Store(false)
	}

	cached, err := redisrepo.Get[[]model.Post](s.repo.Redis.Default, ctx, redisrepo.PostsKey())
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.Sugar().Warnf("failed to get posts from redis: %s", err.Error())
		}
		return nil, false
	}
	if cached == nil {
		return nil, false
	}

	return *cached, true
}

func (s *postService) cachePosts(ctx context.Context, posts []model.Post) {
	if s.repo.Redis == nil || s.cacheDirty.Load() {
		return
	}

	if err := s.repo.Redis.SetJSON(ctx, redisrepo.PostsKey(), posts, s.repo.Redis.TTL); err != nil {
		s.logger.Sugar().Warnf("failed to set posts in redis: %s", err.Error())
	}
}

func (s *postService) invalidateCache(ctx context.Context) {
	if s.repo.Redis == nil {
		return
	}

	if err := s.repo.Redis.Del(ctx, redisrepo.PostsKey()).Err(); err != nil {
		s.logger.Sugar().Errorf("failed to delete posts from redis: %s", err.Error())
		s.cacheDirty.Store(true)
	}
}

func indexOf(posts []model.Post, id int64) int {
	for i, p := range posts {
		if p.ID == id {
			return i
		}
	}
	return -1
}
