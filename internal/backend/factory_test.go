package backend

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"worktrack/internal/config"
	"worktrack/internal/core"
	"worktrack/internal/storage/jsonfile"
	"worktrack/internal/storage/memory"
	"worktrack/internal/storage/sqlite"
)

func quietFactory() Factory {
	return NewFactory(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestFromAppConfig(t *testing.T) {
	cfg, err := FromAppConfig(&config.Config{DataBackend: "json", DataFile: "x.json", SQLiteDBPath: "db"})
	if err != nil {
		t.Fatalf("FromAppConfig: %v", err)
	}
	if cfg.Type != JSONBackend || cfg.DataFile != "x.json" || cfg.SQLiteDBPath != "db" {
		t.Fatalf("unexpected config: %+v", cfg)
	}

	if _, err := FromAppConfig(nil); err == nil {
		t.Error("expected error for nil config")
	}
	_, err = FromAppConfig(&config.Config{DataBackend: "sheets"})
	if err == nil || !strings.Contains(err.Error(), "json, sqlite, memory") {
		t.Errorf("unknown backend error = %v, want the supported list", err)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"json ok", Config{Type: JSONBackend, DataFile: "a.json"}, false},
		{"json missing file", Config{Type: JSONBackend}, true},
		{"sqlite missing path", Config{Type: SQLiteBackend}, true},
		{"memory ok", Config{Type: MemoryBackend}, false},
		{"invalid", Config{Type: "nope"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestCreateBackend(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	f := quietFactory()

	res, err := f.CreateBackend(ctx, Config{Type: JSONBackend, DataFile: filepath.Join(dir, "data.json")})
	if err != nil {
		t.Fatalf("json: %v", err)
	}
	if _, ok := res.Persister.(*jsonfile.Repository); !ok || res.Cleanup != nil {
		t.Fatalf("json backend: got %T cleanup=%v", res.Persister, res.Cleanup != nil)
	}

	res, err = f.CreateBackend(ctx, Config{Type: MemoryBackend})
	if err != nil {
		t.Fatalf("memory: %v", err)
	}
	if _, ok := res.Persister.(*memory.Repository); !ok {
		t.Fatalf("memory backend: got %T", res.Persister)
	}

	res, err = f.CreateBackend(ctx, Config{Type: SQLiteBackend, SQLiteDBPath: filepath.Join(dir, "wt.db")})
	if err != nil {
		t.Fatalf("sqlite: %v", err)
	}
	if _, ok := res.Persister.(*sqlite.Repository); !ok || res.Cleanup == nil {
		t.Fatalf("sqlite backend: got %T", res.Persister)
	}
	defer res.Cleanup()

	entries := core.Entries{"2026-02-14": {Date: "2026-02-14", Hours: 8}}
	if err := res.Persister.Save(ctx, entries); err != nil {
		t.Fatalf("sqlite save: %v", err)
	}
	got, err := res.Persister.Load(ctx)
	if err != nil || got["2026-02-14"].Hours != 8 {
		t.Fatalf("sqlite round trip: %v %v", got, err)
	}
}

func TestCreateBackendRejectsInvalid(t *testing.T) {
	if _, err := quietFactory().CreateBackend(context.Background(), Config{Type: "sheets"}); err == nil {
		t.Fatal("expected error")
	}
}
