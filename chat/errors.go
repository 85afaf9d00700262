package chat

import "errors"

// Sentinel errors returned by the executor. Callers match with errors.Is
// to distinguish missing sessions from model and storage failures.
var (
	// ErrSessionNotFound indicates the target session id has no record.
	ErrSessionNotFound = errors.New("session not found")
	// ErrModelInvocation indicates the generator failed or returned an
	// empty reply for a turn.
	ErrModelInvocation = errors.New("model invocation failed")
	// ErrPersistence indicates a session write failed mid-exchange.
	ErrPersistence = errors.New("session persistence failed")
)
