package recordstore

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"milelog/internal/faults"
	"milelog/internal/records"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is the current schema version. Bump this when the schema changes.
const schemaVersion = 1

// ErrSchemaMismatch indicates the database schema version doesn't match the expected version.
var ErrSchemaMismatch = errors.New("schema version mismatch")

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

// SQLiteBackend stores records as rows ordered by position.
type SQLiteBackend struct {
	db   *sql.DB
	path string
}

// OpenSQLiteBackend opens or creates the database at path.
func OpenSQLiteBackend(ctx context.Context, path string) (*SQLiteBackend, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.ExecContext(ctx, pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	b := &SQLiteBackend{db: db, path: path}
	if err := b.initSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return b, nil
}

func (b *SQLiteBackend) Name() string { return "sqlite" }

func (b *SQLiteBackend) Path() string { return b.path }

func (b *SQLiteBackend) initSchema(ctx context.Context) error {
	var tableExists int
	err := b.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}

	if tableExists == 0 {
		return b.createSchema(ctx)
	}

	var version int
	if err := b.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: database has version %d, expected %d", ErrSchemaMismatch, version, schemaVersion)
	}
	return nil
}

func (b *SQLiteBackend) createSchema(ctx context.Context) error {
	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema: %w", err)
	}
	return nil
}

// Read returns every row in position order. An empty table reports
// faults.ErrDataMissing so both backends behave the same on first use.
func (b *SQLiteBackend) Read(ctx context.Context) ([]records.Record, error) {
	var items []records.Record
	err := retryOnBusy(ctx, func() error {
		items = items[:0]
		rows, err := b.db.QueryContext(ctx, `SELECT source_id, observed_date, observed_time, mileage, class, identity, notes
FROM records ORDER BY position`)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var (
				sourceID, date, clock, class, identity, notes string
				mileage                                      int64
			)
			if err := rows.Scan(&sourceID, &date, &clock, &mileage, &class, &identity, &notes); err != nil {
				return err
			}
			observed, known, err := records.Combine(date, clock)
			if err != nil {
				return faults.Wrap(faults.ErrMalformedStorage, "recordstore", "decode row", b.path, err)
			}
			rec := records.Record{
				SourceID:   sourceID,
				ObservedAt: observed,
				TimeKnown:  known,
				Mileage:    mileage,
				Class:      records.ParseClass(class),
				Identity:   records.ParseIdentity(identity),
				Notes:      notes,
			}
			if err := rec.Validate(); err != nil {
				return faults.Wrap(faults.ErrMalformedStorage, "recordstore", "decode row", b.path, err)
			}
			items = append(items, rec)
		}
		return rows.Err()
	})
	if err != nil {
		if errors.Is(err, faults.ErrMalformedStorage) {
			return nil, err
		}
		return nil, fmt.Errorf("query records: %w", err)
	}
	if len(items) == 0 {
		return nil, faults.Wrap(faults.ErrDataMissing, "recordstore", "read", b.path, nil)
	}
	return items, nil
}

// Write replaces all rows in one transaction.
func (b *SQLiteBackend) Write(ctx context.Context, items []records.Record) error {
	err := retryOnBusy(ctx, func() error {
		tx, err := b.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback() }()

		if _, err := tx.ExecContext(ctx, "DELETE FROM records"); err != nil {
			return err
		}
		stmt, err := tx.PrepareContext(ctx, `INSERT INTO records
(position, source_id, observed_date, observed_time, mileage, class, identity, notes)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()
		for i, r := range items {
			identity := r.Identity
			if identity == "" {
				identity = records.IdentityUnknown
			}
			if _, err := stmt.ExecContext(ctx, i, r.SourceID, r.Date(), r.Clock(), r.Mileage,
				string(r.Class), string(identity), r.Notes); err != nil {
				return err
			}
		}
		return tx.Commit()
	})
	if err != nil {
		return faults.Wrap(faults.ErrWrite, "recordstore", "write", b.path, err)
	}
	return nil
}

// Backup writes a consistent copy of the database to dest.
func (b *SQLiteBackend) Backup(ctx context.Context, dest string) error {
	if err := retryOnBusy(ctx, func() error {
		_, err := b.db.ExecContext(ctx, "VACUUM INTO ?", dest)
		return err
	}); err != nil {
		return faults.Wrap(faults.ErrWrite, "recordstore", "backup", dest, err)
	}
	return nil
}

// Close closes the underlying database connection.
func (b *SQLiteBackend) Close() error {
	if b == nil || b.db == nil {
		return nil
	}
	return b.db.Close()
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}
