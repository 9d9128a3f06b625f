package handler

import "errors"

var (
	errInvalidPostID     = errors.New("invalid post ID")
	errIncompleteForm    = errors.New("form data is incomplete")
	errStoreUnavailable  = errors.New("post store is unavailable")
	errRateLimitExceeded = errors.New("rate limit exceeded")
)
