package session_test

import (
	"context"
	"errors"
	"testing"

	"github.com/parley-ai/parley/session"
)

func TestManager_Create_Defaults(t *testing.T) {
	store := session.NewMemoryStore()
	mgr := session.NewManager(store)

	id, err := mgr.Create(context.Background(), "", session.GenerationConfig{})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if id == "" {
		t.Fatal("Create() returned empty id")
	}

	sess, found, err := store.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !found {
		t.Fatal("created session not found in store")
	}

	if sess.Instructions != session.DefaultInstructions {
		t.Errorf("Instructions = %q, want %q", sess.Instructions, session.DefaultInstructions)
	}
	if sess.Config.MaxOutputTokens != session.DefaultMaxOutputTokens {
		t.Errorf("MaxOutputTokens = %d, want %d", sess.Config.MaxOutputTokens, session.DefaultMaxOutputTokens)
	}
	if sess.Config.Temperature != session.DefaultTemperature {
		t.Errorf("Temperature = %v, want %v", sess.Config.Temperature, session.DefaultTemperature)
	}
	if len(sess.Config.StopSequences) != 0 {
		t.Errorf("StopSequences = %v, want empty", sess.Config.StopSequences)
	}
	if len(sess.History) != 0 {
		t.Errorf("History length = %d, want 0", len(sess.History))
	}
}

func TestManager_Create_Overrides(t *testing.T) {
	store := session.NewMemoryStore()
	mgr := session.NewManager(store)

	cfg := session.GenerationConfig{
		MaxOutputTokens: 512,
		Temperature:     0.2,
		StopSequences:   []string{"END"},
	}
	id, err := mgr.Create(context.Background(), "You are a pirate.", cfg)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	sess, _, err := store.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if sess.Instructions != "You are a pirate." {
		t.Errorf("Instructions = %q, want %q", sess.Instructions, "You are a pirate.")
	}
	if sess.Config.MaxOutputTokens != 512 {
		t.Errorf("MaxOutputTokens = %d, want 512", sess.Config.MaxOutputTokens)
	}
	if sess.Config.Temperature != 0.2 {
		t.Errorf("Temperature = %v, want 0.2", sess.Config.Temperature)
	}
	if len(sess.Config.StopSequences) != 1 || sess.Config.StopSequences[0] != "END" {
		t.Errorf("StopSequences = %v, want [END]", sess.Config.StopSequences)
	}
}

func TestManager_Create_UniqueIDs(t *testing.T) {
	mgr := session.NewManager(session.NewMemoryStore())

	id1, err := mgr.Create(context.Background(), "", session.GenerationConfig{})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	id2, err := mgr.Create(context.Background(), "", session.GenerationConfig{})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if id1 == id2 {
		t.Errorf("two sessions share id %q", id1)
	}
}

func TestManager_Delete(t *testing.T) {
	store := session.NewMemoryStore()
	mgr := session.NewManager(store)

	id, err := mgr.Create(context.Background(), "", session.GenerationConfig{})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if err := mgr.Delete(context.Background(), id); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	_, found, err := store.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if found {
		t.Error("session still present after Delete")
	}
}

func TestManager_Delete_Missing(t *testing.T) {
	mgr := session.NewManager(session.NewMemoryStore())

	if err := mgr.Delete(context.Background(), "nonexistent"); !errors.Is(err, session.ErrNotFound) {
		t.Errorf("Delete() error = %v, want %v", err, session.ErrNotFound)
	}
}
