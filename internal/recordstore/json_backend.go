package recordstore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"milelog/internal/faults"
	"milelog/internal/fileutil"
	"milelog/internal/records"
)

// JSONBackend stores records as one indented JSON array.
type JSONBackend struct {
	path string
	now  func() time.Time
}

// NewJSONBackend returns a backend for the JSON file at path. The file is
// created on first write.
func NewJSONBackend(path string) *JSONBackend {
	return &JSONBackend{path: path, now: time.Now}
}

func (b *JSONBackend) Name() string { return "json" }

func (b *JSONBackend) Path() string { return b.path }

func (b *JSONBackend) Read(_ context.Context) ([]records.Record, error) {
	data, err := os.ReadFile(b.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, faults.Wrap(faults.ErrDataMissing, "recordstore", "read", b.path, err)
		}
		return nil, fmt.Errorf("read record file: %w", err)
	}
	items, err := records.Decode(data)
	if err != nil {
		return nil, faults.Wrap(faults.ErrMalformedStorage, "recordstore", "decode", b.path, err)
	}
	return items, nil
}

func (b *JSONBackend) Write(_ context.Context, items []records.Record) error {
	data, err := records.Encode(items)
	if err != nil {
		return faults.Wrap(faults.ErrWrite, "recordstore", "encode", b.path, err)
	}
	if err := fileutil.WriteFileAtomic(b.path, data, 0o644); err != nil {
		return faults.Wrap(faults.ErrWrite, "recordstore", "write", b.path, err)
	}
	return nil
}

// Backup copies the record file to dest and verifies the copy.
func (b *JSONBackend) Backup(_ context.Context, dest string) error {
	if _, err := os.Stat(b.path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return faults.Wrap(faults.ErrDataMissing, "recordstore", "backup", b.path, err)
		}
		return fmt.Errorf("stat record file: %w", err)
	}
	if err := fileutil.CopyFileVerified(b.path, dest); err != nil {
		return faults.Wrap(faults.ErrWrite, "recordstore", "backup", dest, err)
	}
	return nil
}

// Quarantine renames an unreadable record file so the next write starts a
// fresh log without destroying the old bytes.
func (b *JSONBackend) Quarantine() (string, error) {
	dest := fmt.Sprintf("%s.corrupt-%s", b.path, b.now().UTC().Format("20060102T150405"))
	if err := os.Rename(b.path, dest); err != nil {
		return "", fmt.Errorf("quarantine record file: %w", err)
	}
	return dest, nil
}

func (b *JSONBackend) Close() error { return nil }
