// Package storage defines the persistence ports for the entry store and the
// JSON wire format shared by the backing file, export and import.
package storage

import (
	"context"

	"worktrack/internal/core"
)

// Ports for persistence adapters.
type (
	// Loader reads the full mapping. A missing backing store yields an empty
	// mapping, not an error.
	Loader interface {
		Load(ctx context.Context) (core.Entries, error)
	}

	// Saver replaces the backing store with the full mapping.
	Saver interface {
		Save(ctx context.Context, entries core.Entries) error
	}

	Persister interface {
		Loader
		Saver
	}
)
