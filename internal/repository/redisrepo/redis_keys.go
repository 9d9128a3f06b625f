package redisrepo

const (
	POSTS_KEY = "posts:all"
)

func PostsKey() string {
	return POSTS_KEY
}
