package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"worktrack/internal/core"
)

// ExportFilename is the name offered for downloaded backups.
const ExportFilename = "work_hours_backup.json"

// Encode serializes entries as a JSON object keyed by date-key.
func Encode(entries core.Entries) ([]byte, error) {
	if entries == nil {
		entries = core.Entries{}
	}
	data, err := json.Marshal(entries)
	if err != nil {
		return nil, fmt.Errorf("encode entries: %w", err)
	}
	return data, nil
}

// Export serializes entries pretty-printed with a two-space indent.
func Export(entries core.Entries) ([]byte, error) {
	if entries == nil {
		entries = core.Entries{}
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("export entries: %w", err)
	}
	return append(data, '\n'), nil
}

// Decode reads a JSON object of entries. Only the structure is checked; any
// failure is reported as core.ErrDecode. A JSON null decodes to an empty
// mapping.
func Decode(r io.Reader) (core.Entries, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: read entries: %w", core.ErrDecode, err)
	}
	return DecodeBytes(data)
}

// DecodeBytes is Decode for an in-memory payload.
func DecodeBytes(data []byte) (core.Entries, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("%w: empty document", core.ErrDecode)
	}
	var entries core.Entries
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrDecode, err)
	}
	if entries == nil {
		entries = core.Entries{}
	}
	return entries, nil
}
