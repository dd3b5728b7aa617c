// Package jsonfile implements the statestore port as a single JSON document
// on disk: loaded wholesale at startup, rewritten wholesale after every
// mutation. The rewrite is atomic (temp file + rename), so a crash can lose
// the very last transition but never produce a torn document.
package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/rmess/messd/internal/port/statestore"
)

// Store holds the whole application state in memory behind a single lock
// and mirrors it to one JSON file.
type Store struct {
	mu    sync.RWMutex
	path  string
	state statestore.State
}

// Open loads the document at path, backfilling any missing top-level keys
// from seed (union-with-defaults migration). A missing file starts from the
// seed and is written out immediately.
func Open(path string, seed func() statestore.State) (*Store, error) {
	st := seed()

	data, err := os.ReadFile(path) //nolint:gosec // G304: path comes from config
	switch {
	case errors.Is(err, os.ErrNotExist):
		s := &Store{path: path, state: st}
		if err := s.persist(); err != nil {
			return nil, fmt.Errorf("write initial state: %w", err)
		}
		slog.Info("state file created", "path", path)
		return s, nil
	case err != nil:
		return nil, fmt.Errorf("read state file: %w", err)
	}

	// Unmarshaling over the seeded value keeps defaults for absent keys
	// while present keys replace them wholesale.
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	slog.Info("state file loaded",
		"path", path,
		"users", len(st.Users),
		"bill_items", len(st.BillItems),
		"tenants", len(st.Tenants),
	)
	return &Store{path: path, state: st}, nil
}

// View runs fn against the current state under a read lock.
func (s *Store) View(_ context.Context, fn func(st *statestore.State) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(&s.state)
}

// Update runs fn under the write lock and persists the document when fn
// succeeds. When fn fails nothing is written and the in-memory state is
// assumed untouched (closures reject before mutating). A persist failure is
// returned but the applied mutation is kept: the transition is logically
// committed even if durability lagged.
func (s *Store) Update(_ context.Context, fn func(st *statestore.State) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := fn(&s.state); err != nil {
		return err
	}
	if err := s.persist(); err != nil {
		slog.Error("state persist failed; in-memory state retained", "path", s.path, "error", err)
		return fmt.Errorf("persist state: %w", err)
	}
	return nil
}

// persist atomically rewrites the whole document. Caller holds the lock.
func (s *Store) persist() error {
	data, err := json.MarshalIndent(&s.state, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".messd-state-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
