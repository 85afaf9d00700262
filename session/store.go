package session

import "context"

// Store persists Session records addressed by session id. Implementations
// are stateless — they perform I/O on each call without caching — and all
// sessions live in one logical namespace.
//
// Get reports absence through the found result rather than an error, so
// callers can distinguish "never existed" from "storage read failed".
// Delete is asymmetric by contract: deleting a missing record returns
// ErrNotFound.
type Store interface {
	// Get returns the persisted session for id, or found=false if no
	// record exists. A record that exists but cannot be read or decoded
	// is an error wrapping ErrLoadFailed, not absence.
	Get(ctx context.Context, id string) (sess *Session, found bool, err error)
	// Save writes the full session record, creating or overwriting as
	// needed. A save in progress is never observable as a partial record
	// to a concurrent Get.
	Save(ctx context.Context, sess *Session) error
	// Delete removes the persisted record, returning ErrNotFound when no
	// record exists for the session id.
	Delete(ctx context.Context, id string) error
}
