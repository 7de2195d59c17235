package recordstore

import (
	"context"

	"milelog/internal/records"
)

// Backend reads and writes the whole ordered record collection.
//
// Read returns an error wrapping faults.ErrDataMissing when nothing has been
// stored yet and faults.ErrMalformedStorage when stored data cannot be
// decoded. Write replaces the collection atomically.
type Backend interface {
	Name() string
	Path() string
	Read(ctx context.Context) ([]records.Record, error)
	Write(ctx context.Context, items []records.Record) error
	Backup(ctx context.Context, dest string) error
	Close() error
}

// quarantiner is implemented by backends that can move unreadable data
// aside before it is overwritten.
type quarantiner interface {
	Quarantine() (string, error)
}
