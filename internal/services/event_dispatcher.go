package services

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"worktrack/internal/amqp"
)

const (
	eventQueueSize = 64
	publishTimeout = 10 * time.Second
)

// eventDispatcher publishes events from a buffered queue on one goroutine,
// so mutations never wait on the broker. Events keep their order; when the
// queue is full new events are dropped and logged.
type eventDispatcher struct {
	publisher EventPublisher
	events    chan *amqp.EntryEvent
	done      chan struct{}

	mu     sync.RWMutex
	closed bool
}

func newEventDispatcher(publisher EventPublisher, size int) *eventDispatcher {
	d := &eventDispatcher{
		publisher: publisher,
		events:    make(chan *amqp.EntryEvent, size),
		done:      make(chan struct{}),
	}
	go d.run()
	return d
}

func (d *eventDispatcher) run() {
	defer close(d.done)
	for ev := range d.events {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		if err := d.publisher.PublishEntryEvent(ctx, ev); err != nil {
			// The entry is already persisted; the event is best effort.
			slog.Warn("Failed to publish entry event", "type", ev.Type, "date", ev.Date, "error", err)
		}
		cancel()
	}
}

// enqueue reports whether ev was accepted.
func (d *eventDispatcher) enqueue(ev *amqp.EntryEvent) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return false
	}
	select {
	case d.events <- ev:
		return true
	default:
		slog.Warn("Entry event queue full, dropping event", "type", ev.Type, "date", ev.Date)
		return false
	}
}

// close stops accepting events and waits for queued ones to be published,
// or for ctx to end.
func (d *eventDispatcher) close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.events)
	}
	d.mu.Unlock()

	select {
	case <-d.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
