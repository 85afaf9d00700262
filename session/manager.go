package session

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// Manager orchestrates session creation and deletion on top of a Store.
// It holds no state of its own beyond the store handle.
type Manager struct {
	store Store
}

// NewManager creates a Manager that persists through the given store.
func NewManager(store Store) *Manager {
	return &Manager{store: store}
}

// Create generates a new session with an empty history, the given system
// instructions and generation configuration, persists it, and returns its
// id. Empty instructions fall back to DefaultInstructions; zero generation
// parameters fall back to the package defaults. Sessions are only ever
// created here — never implicitly on message send.
func (m *Manager) Create(ctx context.Context, instructions string, cfg GenerationConfig) (string, error) {
	if instructions == "" {
		instructions = DefaultInstructions
	}

	resolved := DefaultGenerationConfig()
	resolved.Merge(&cfg)

	sess := &Session{
		ID:           uuid.Must(uuid.NewV7()).String(),
		Instructions: instructions,
		Config:       resolved,
	}

	if err := m.store.Save(ctx, sess); err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}

	return sess.ID, nil
}

// Delete removes the persisted session. Returns an error wrapping
// ErrNotFound when no session exists for the id.
func (m *Manager) Delete(ctx context.Context, id string) error {
	return m.store.Delete(ctx, id)
}
