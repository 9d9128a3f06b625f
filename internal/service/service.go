package service

import (
	"context"

	"github.com/BloggingApp/post-store/internal/dto"
	"github.com/BloggingApp/post-store/internal/metrics"
	"github.com/BloggingApp/post-store/internal/model"
	"github.com/BloggingApp/post-store/internal/repository"
	"go.uber.org/zap"
)

// Post is the boundary the HTTP layer and the CLI call into. Each mutation
// is one load, one in-memory change and one save of the whole collection.
type Post interface {
	ListPosts(ctx context.Context) ([]model.Post, error)
	GetPost(ctx context.Context, id int64) (*model.Post, error)
	AddPost(ctx context.Context, input dto.PostRequest) (*model.Post, error)
	UpdatePost(ctx context.Context, id int64, input dto.PostRequest) (*model.Post, error)
	DeletePost(ctx context.Context, id int64) error
}

type Service struct {
	Post
}

func New(logger *zap.Logger, repo *repository.Repository, metrics *metrics.Metrics) *Service {
	return &Service{
		Post: newPostService(logger, repo, metrics),
	}
}
