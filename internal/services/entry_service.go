package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"worktrack/internal/amqp"
	"worktrack/internal/core"
	"worktrack/internal/storage"
	"worktrack/internal/store"
)

var (
	// ErrPersist wraps a failed write of the backing store. The in-memory
	// mutation has been rolled back when it is returned.
	ErrPersist = errors.New("persist entries")

	ErrClearNotConfirmed = errors.New("clear all requires confirmation")
)

// EventPublisher receives an event after each persisted mutation.
type EventPublisher interface {
	PublishEntryEvent(ctx context.Context, ev *amqp.EntryEvent) error
}

// EntryService orchestrates entry mutations across the store, the persister
// and the optional event publisher.
type EntryService struct {
	mu        sync.Mutex
	store     *store.Store
	persister storage.Persister
	events    *eventDispatcher
}

func NewEntryService(st *store.Store, persister storage.Persister, publisher EventPublisher) *EntryService {
	if st == nil {
		st = store.New(nil)
	}
	s := &EntryService{
		store:     st,
		persister: persister,
	}
	if publisher != nil {
		s.events = newEventDispatcher(publisher, eventQueueSize)
	}
	return s
}

// Close waits for queued events to be handed to the publisher. It does not
// close the publisher or the persister.
func (s *EntryService) Close(ctx context.Context) error {
	if s.events == nil {
		return nil
	}
	return s.events.close(ctx)
}

// Load replaces the store with the persisted mapping. Called once at startup;
// a decode failure here is fatal for the caller.
func (s *EntryService) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.persister == nil {
		return nil
	}
	entries, err := s.persister.Load(ctx)
	if err != nil {
		return fmt.Errorf("load entries: %w", err)
	}
	s.store.ReplaceAll(entries)
	slog.InfoContext(ctx, "Entries loaded", "count", len(entries))
	return nil
}

func (s *EntryService) Get(key string) (core.WorkEntry, bool) {
	return s.store.Get(key)
}

// Save stores hours and notes for the day at key and persists the store.
func (s *EntryService) Save(ctx context.Context, key string, hours float64, notes string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	before := s.store.All()
	if err := s.store.Put(key, hours, notes); err != nil {
		return err
	}
	if err := s.persist(ctx, before); err != nil {
		return err
	}
	s.publish(amqp.NewEntryEvent(amqp.EventEntrySaved, key, hours, s.store.Len()))
	return nil
}

// Delete removes the entry at key. Deleting an absent key is a no-op that
// reports false and touches nothing.
func (s *EntryService) Delete(ctx context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	before := s.store.All()
	if !s.store.Delete(key) {
		return false, nil
	}
	if err := s.persist(ctx, before); err != nil {
		return false, err
	}
	s.publish(amqp.NewEntryEvent(amqp.EventEntryDeleted, key, 0, s.store.Len()))
	return true, nil
}

// Clear removes every entry and returns how many were dropped.
func (s *EntryService) Clear(ctx context.Context, confirmed bool) (int, error) {
	if !confirmed {
		return 0, ErrClearNotConfirmed
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	before := s.store.All()
	s.store.Clear()
	if err := s.persist(ctx, before); err != nil {
		return 0, err
	}
	s.publish(amqp.NewEntryEvent(amqp.EventEntriesCleared, "", 0, 0))
	return len(before), nil
}

// Import decodes a JSON mapping from r and replaces the whole store with it.
// Malformed input is rejected before anything changes.
func (s *EntryService) Import(ctx context.Context, r io.Reader) (int, error) {
	entries, err := storage.Decode(r)
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	before := s.store.All()
	s.store.ReplaceAll(entries)
	if err := s.persist(ctx, before); err != nil {
		return 0, err
	}
	s.publish(amqp.NewEntryEvent(amqp.EventEntriesImported, "", 0, len(entries)))
	return len(entries), nil
}

// Export returns the pretty-printed mapping. The backing store is not touched.
func (s *EntryService) Export() ([]byte, error) {
	return storage.Export(s.store.All())
}

func (s *EntryService) Entries() core.Entries {
	return s.store.All()
}

func (s *EntryService) Len() int {
	return s.store.Len()
}

func (s *EntryService) MonthEntries(year, month int) []core.WorkEntry {
	return s.store.InMonth(year, month)
}

func (s *EntryService) MonthSummary(year, month int) core.Summary {
	return core.Summarize(s.store.InMonth(year, month))
}

func (s *EntryService) AllTimeSummary() core.Summary {
	return core.Summarize(s.store.List())
}

// persist saves the current store; on failure it restores before so memory
// keeps matching what is on disk. Caller holds s.mu.
func (s *EntryService) persist(ctx context.Context, before core.Entries) error {
	if s.persister == nil {
		return nil
	}
	if err := s.persister.Save(ctx, s.store.All()); err != nil {
		s.store.ReplaceAll(before)
		slog.ErrorContext(ctx, "Failed to persist entries, rolled back", "error", err, "count", len(before))
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}
	return nil
}

// publish queues ev for the publisher; mutations never wait on the broker.
func (s *EntryService) publish(ev *amqp.EntryEvent) {
	if s.events == nil {
		return
	}
	s.events.enqueue(ev)
}
