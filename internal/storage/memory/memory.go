// Package memory is a process-local persister, used for ephemeral runs and
// tests.
package memory

import (
	"context"
	"sync"

	"worktrack/internal/core"
	"worktrack/internal/storage"
)

type Repository struct {
	mu      sync.Mutex
	entries core.Entries
	saves   int
	failErr error
}

var _ storage.Persister = (*Repository)(nil)

// New returns a repository seeded with a copy of entries.
func New(entries core.Entries) *Repository {
	return &Repository{entries: entries.Clone()}
}

func (r *Repository) Load(_ context.Context) (core.Entries, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.entries.Clone(), nil
}

func (r *Repository) Save(_ context.Context, entries core.Entries) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failErr != nil {
		return r.failErr
	}
	r.entries = entries.Clone()
	r.saves++
	return nil
}

// FailSaves makes every following Save return err; nil restores normal saves.
func (r *Repository) FailSaves(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failErr = err
}

// Saves returns how many saves succeeded.
func (r *Repository) Saves() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.saves
}
