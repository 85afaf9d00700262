package session

import "errors"

// Sentinel errors for store operations.
var (
	ErrNotFound   = errors.New("session not found")
	ErrLoadFailed = errors.New("session load failed")
	ErrSaveFailed = errors.New("session save failed")
	ErrInvalidID  = errors.New("invalid session id")
)
