// Package testutil provides shared test helpers for setting up workspaces and databases.
package testutil

import (
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"

	"github.com/starford/foldernotes/internal/index"
	"github.com/starford/foldernotes/internal/state"
	"github.com/starford/foldernotes/internal/storage"
)

// TestDB creates a temporary SQLite database that is automatically cleaned up.
func TestDB(t *testing.T) *index.DB {
	t.Helper()
	db, err := index.Open(filepath.Join(t.TempDir(), "foldernotes-test.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestWorkspace creates a temporary workspace directory, a state selecting
// it and a store bound to that state.
func TestWorkspace(t *testing.T) (string, *state.State, *storage.Store) {
	t.Helper()
	dir := t.TempDir()
	st, err := state.Open(filepath.Join(t.TempDir(), "state.yaml"), dir)
	if err != nil {
		t.Fatal(err)
	}
	return dir, st, storage.NewStore(st)
}

// Logger returns a logger that discards everything.
func Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Recorder collects notifications. It satisfies any Notify(E) interface.
type Recorder[E any] struct {
	mu     sync.Mutex
	events []E
}

// Notify records e.
func (r *Recorder[E]) Notify(e E) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

// Events returns a copy of the recorded events.
func (r *Recorder[E]) Events() []E {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]E(nil), r.events...)
}

// Reset forgets recorded events.
func (r *Recorder[E]) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}
