package rate

import "errors"

var (
	// ErrRateLimited is returned by callers that turn a rejected Decision into an error.
	ErrRateLimited = errors.New("rate limited")
	// ErrRedisUnavailable wraps Redis failures.
	ErrRedisUnavailable = errors.New("redis unavailable")
)
