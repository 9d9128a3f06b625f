package filestore

import "github.com/BloggingApp/post-store/internal/model"

// SeedPosts returns the collection written by Bootstrap when no backing
// file exists yet.
func SeedPosts() []model.Post {
	return []model.Post{
		{ID: 1, Author: "John Doe", Title: "First Post", Content: "This is my first post."},
		{ID: 2, Author: "Jane Doe", Title: "Second Post", Content: "This is another post."},
	}
}
