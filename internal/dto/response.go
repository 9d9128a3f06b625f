package dto

import (
	"time"

	"github.com/BloggingApp/post-store/internal/model"
)

type BasicResponse struct {
	Ok        bool      `json:"ok"`
	Details   string    `json:"details"`
	Timestamp time.Time `json:"timestamp"`
}

func NewBasicResponse(ok bool, details string) BasicResponse {
	return BasicResponse{
		Ok:        ok,
		Details:   details,
		Timestamp: time.Now(),
	}
}

type PostsResponse struct {
	Posts []model.Post `json:"posts"`
	Count int          `json:"count"`
}

func NewPostsResponse(posts []model.Post) PostsResponse {
	if posts == nil {
		posts = []model.Post{}
	}
	return PostsResponse{
		Posts: posts,
		Count: len(posts),
	}
}
