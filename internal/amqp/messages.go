package amqp

import (
	"encoding/json"
	"time"
)

// EventType names a change applied to the entry store.
type EventType string

const (
	EventEntrySaved      EventType = "entry.saved"
	EventEntryDeleted    EventType = "entry.deleted"
	EventEntriesCleared  EventType = "entries.cleared"
	EventEntriesImported EventType = "entries.imported"
)

// EntryEvent is published after a mutation has been persisted. Date and Hours
// are set for single-entry events; Count carries the store size afterwards.
type EntryEvent struct {
	Type      EventType `json:"type"`
	Date      string    `json:"date,omitempty"`
	Hours     float64   `json:"hours,omitempty"`
	Count     int       `json:"count"`
	Timestamp time.Time `json:"timestamp"`
}

// NewEntryEvent creates an event stamped with the current time.
func NewEntryEvent(t EventType, date string, hours float64, count int) *EntryEvent {
	return &EntryEvent{
		Type:      t,
		Date:      date,
		Hours:     hours,
		Count:     count,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the event to JSON bytes
func (e *EntryEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}
