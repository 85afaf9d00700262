package session

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

type fileStore struct {
	root string
}

// NewFileStore creates a Store backed by the filesystem. Each session maps
// 1:1 to a JSON file named <id>.json under root. The root directory is
// created on first save.
func NewFileStore(root string) Store {
	return &fileStore{root: root}
}

func (s *fileStore) path(id string) (string, error) {
	// Ids are caller-supplied on lookup; refuse anything that could
	// escape the root.
	if id == "" || strings.ContainsAny(id, `/\`) || strings.Contains(id, "..") {
		return "", fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return filepath.Join(s.root, id+".json"), nil
}

func (s *fileStore) Get(_ context.Context, id string) (*Session, bool, error) {
	path, err := s.path(id)
	if err != nil {
		return nil, false, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("%w: %s: %v", ErrLoadFailed, id, err)
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		// A record that exists but does not decode is a read failure,
		// never absence.
		return nil, false, fmt.Errorf("%w: %s: %v", ErrLoadFailed, id, err)
	}

	return &sess, true, nil
}

func (s *fileStore) Save(_ context.Context, sess *Session) error {
	path, err := s.path(sess.ID)
	if err != nil {
		return err
	}

	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrSaveFailed, sess.ID, err)
	}

	if err := os.MkdirAll(s.root, 0o755); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrSaveFailed, sess.ID, err)
	}

	// Write to a temp file and rename so a concurrent Get sees either
	// the old record or the new one, never a partial write.
	tmp, err := os.CreateTemp(s.root, ".tmp-*")
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrSaveFailed, sess.ID, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("%w: %s: %v", ErrSaveFailed, sess.ID, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: %s: %v", ErrSaveFailed, sess.ID, err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: %s: %v", ErrSaveFailed, sess.ID, err)
	}

	return nil
}

func (s *fileStore) Delete(_ context.Context, id string) error {
	path, err := s.path(id)
	if err != nil {
		return err
	}

	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return fmt.Errorf("delete failed: %s: %w", id, err)
	}

	return nil
}
