// Package store holds the in-memory entry store: the live copy of every
// logged day for the running process.
package store

import (
	"sync"

	"worktrack/internal/core"
)

type Store struct {
	mu      sync.Mutex
	entries core.Entries
}

// New returns a store seeded with a copy of entries (which may be nil).
func New(entries core.Entries) *Store {
	return &Store{entries: entries.Clone()}
}

// Get returns the entry stored at key, if any.
func (s *Store) Get(key string) (core.WorkEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	return e, ok
}

// Put stores {key, hours, notes} at key, replacing any previous entry.
// Invalid input returns a validation error and leaves the store untouched.
func (s *Store) Put(key string, hours float64, notes string) error {
	e := core.WorkEntry{Date: key, Hours: hours, Notes: notes}
	if err := e.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = e
	return nil
}

// Delete removes key and reports whether it was present.
func (s *Store) Delete(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[key]; !ok {
		return false
	}
	delete(s.entries, key)
	return true
}

// Clear removes every entry.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(core.Entries)
}

// ReplaceAll swaps the whole contents for a copy of entries. No validation is
// applied to the supplied records.
func (s *Store) ReplaceAll(entries core.Entries) {
	next := entries.Clone()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = next
}

// All returns a copy of the full mapping.
func (s *Store) All() core.Entries {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.entries.Clone()
}

// List returns every entry ordered by date-key.
func (s *Store) List() []core.WorkEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.entries.Sorted()
}

// InMonth returns the entries of year/month ordered by date-key.
func (s *Store) InMonth(year, month int) []core.WorkEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.entries.InMonth(year, month)
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
