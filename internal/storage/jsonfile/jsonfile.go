// Package jsonfile persists entries to a single JSON backing file.
package jsonfile

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/natefinch/atomic"

	"worktrack/internal/core"
	"worktrack/internal/storage"
)

// DefaultPath is the backing file used when none is configured.
const DefaultPath = "work_hours_data.json"

type Repository struct {
	path string
}

var _ storage.Persister = (*Repository)(nil)

func New(path string) *Repository {
	if path == "" {
		path = DefaultPath
	}
	return &Repository{path: path}
}

// Path returns the backing file location.
func (r *Repository) Path() string {
	return r.path
}

// Load reads the backing file. A missing file is an empty mapping.
func (r *Repository) Load(ctx context.Context) (core.Entries, error) {
	data, err := os.ReadFile(r.path)
	if errors.Is(err, fs.ErrNotExist) {
		slog.DebugContext(ctx, "Backing file not found, starting empty", "path", r.path)
		return core.Entries{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", r.path, err)
	}
	entries, err := storage.DecodeBytes(data)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", r.path, err)
	}
	return entries, nil
}

// Save rewrites the backing file with the full mapping. The write goes to a
// temporary file renamed over the target, so a failed save leaves the
// previous file in place.
func (r *Repository) Save(ctx context.Context, entries core.Entries) error {
	data, err := storage.Encode(entries)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(r.path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create data directory: %w", err)
		}
	}
	if err := atomic.WriteFile(r.path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("write %s: %w", r.path, err)
	}
	slog.DebugContext(ctx, "Entries saved to file", "path", r.path, "count", len(entries), "bytes", len(data))
	return nil
}
