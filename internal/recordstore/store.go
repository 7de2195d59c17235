package recordstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"milelog/internal/config"
	"milelog/internal/faults"
	"milelog/internal/logging"
	"milelog/internal/records"
)

const lockRetryDelay = 25 * time.Millisecond

// Outcome reports what AppendOrMerge did with a record.
type Outcome int

const (
	Inserted Outcome = iota + 1
	Merged
)

func (o Outcome) String() string {
	switch o {
	case Inserted:
		return "inserted"
	case Merged:
		return "merged"
	default:
		return "none"
	}
}

// Store is the durable, deduplicating record log.
type Store struct {
	backend     Backend
	lock        *flock.Flock
	lockTimeout time.Duration
	logger      *slog.Logger
	mu          sync.Mutex
}

// Open builds the store described by cfg.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.Storage.Path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure store directory: %w", err)
	}

	var backend Backend
	switch cfg.Storage.Backend {
	case "sqlite":
		b, err := OpenSQLiteBackend(ctx, cfg.Storage.Path)
		if err != nil {
			return nil, err
		}
		backend = b
	default:
		backend = NewJSONBackend(cfg.Storage.Path)
	}
	return New(backend, cfg.LockPath(), cfg.LockTimeout(), logger), nil
}

// New wraps backend with the advisory lock at lockPath.
func New(backend Backend, lockPath string, lockTimeout time.Duration, logger *slog.Logger) *Store {
	if logger == nil {
		logger = logging.NewNop()
	}
	if lockTimeout <= 0 {
		lockTimeout = 10 * time.Second
	}
	logger = logging.NewComponentLogger(logger, "recordstore").With(
		logging.String(logging.FieldBackend, backend.Name()),
		logging.String(logging.FieldStorePath, backend.Path()),
	)
	return &Store{
		backend:     backend,
		lock:        flock.New(lockPath),
		lockTimeout: lockTimeout,
		logger:      logger,
	}
}

// Path returns the backend location.
func (s *Store) Path() string { return s.backend.Path() }

// Backend returns the backend name.
func (s *Store) Backend() string { return s.backend.Name() }

// Close releases backend resources.
func (s *Store) Close() error {
	return s.backend.Close()
}

// Load returns the full collection in insertion order. Missing or malformed
// storage yields an empty collection.
func (s *Store) Load(ctx context.Context) ([]records.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	unlock, err := s.acquire(ctx, false)
	if err != nil {
		return nil, err
	}
	defer unlock()

	items, _, err := s.read(ctx)
	return items, err
}

// Save replaces the stored collection with items.
func (s *Store) Save(ctx context.Context, items []records.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	unlock, err := s.acquire(ctx, true)
	if err != nil {
		return err
	}
	defer unlock()

	return s.write(ctx, items)
}

// AppendOrMerge stores record, merging notes into an existing record with
// the same key.
func (s *Store) AppendOrMerge(ctx context.Context, record records.Record) (Outcome, error) {
	outcomes, err := s.AppendOrMergeAll(ctx, []records.Record{record})
	if err != nil {
		return 0, err
	}
	return outcomes[0], nil
}

// AppendOrMergeAll applies AppendOrMerge to each record in order within one
// locked cycle. Nothing is written when any record is invalid.
func (s *Store) AppendOrMergeAll(ctx context.Context, incoming []records.Record) ([]Outcome, error) {
	outcomes, _, err := s.AppendOrMergeStored(ctx, incoming)
	return outcomes, err
}

// AppendOrMergeStored is AppendOrMergeAll that also returns each record as
// stored after its own step, so merged notes are visible to the caller.
func (s *Store) AppendOrMergeStored(ctx context.Context, incoming []records.Record) ([]Outcome, []records.Record, error) {
	incoming = slices.Clone(incoming)
	for i, r := range incoming {
		if r.Identity == "" {
			incoming[i].Identity = records.IdentityUnknown
			r = incoming[i]
		}
		if err := r.Validate(); err != nil {
			return nil, nil, faults.Wrap(faults.ErrValidation, "recordstore", "append", fmt.Sprintf("record %d", i), err)
		}
	}

	var (
		outcomes []Outcome
		stored   []records.Record
	)
	err := s.Update(ctx, func(items []records.Record) ([]records.Record, error) {
		outcomes = make([]Outcome, len(incoming))
		stored = make([]records.Record, len(incoming))
		index := indexByKey(items)
		for i, r := range incoming {
			var outcome Outcome
			items, outcome = appendOrMerge(items, index, r)
			outcomes[i] = outcome
			stored[i] = items[index[r.Key()]]
		}
		return items, nil
	})
	if err != nil {
		return nil, nil, err
	}
	inserted, merged := 0, 0
	for _, o := range outcomes {
		if o == Inserted {
			inserted++
		} else {
			merged++
		}
	}
	s.logger.Debug("records stored",
		logging.Int("inserted", inserted),
		logging.Int("merged", merged))
	return outcomes, stored, nil
}

// Update runs fn over the stored collection under the write lock and saves
// its result. When fn returns an error nothing is written.
func (s *Store) Update(ctx context.Context, fn func([]records.Record) ([]records.Record, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	unlock, err := s.acquire(ctx, true)
	if err != nil {
		return err
	}
	defer unlock()

	items, malformed, err := s.read(ctx)
	if err != nil {
		return err
	}
	updated, err := fn(items)
	if err != nil {
		return err
	}
	if malformed {
		s.quarantine()
	}
	return s.write(ctx, updated)
}

// Backup copies the stored collection to dest under the read lock.
func (s *Store) Backup(ctx context.Context, dest string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	unlock, err := s.acquire(ctx, false)
	if err != nil {
		return err
	}
	defer unlock()

	if err := s.backend.Backup(ctx, dest); err != nil {
		return err
	}
	s.logger.Info("store backed up", logging.String("destination", dest))
	return nil
}

func (s *Store) read(ctx context.Context) ([]records.Record, bool, error) {
	items, err := s.backend.Read(ctx)
	switch {
	case err == nil:
		return items, false, nil
	case errors.Is(err, faults.ErrDataMissing):
		s.logger.Info("no stored records yet, starting empty")
		return []records.Record{}, false, nil
	case errors.Is(err, faults.ErrMalformedStorage):
		logging.WarnWithContext(s.logger, "stored records unreadable, treating as empty", "store_malformed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "inspect or restore the store file from a backup"),
			logging.String(logging.FieldImpact, "previous records are ignored until the file is repaired"))
		return []records.Record{}, true, nil
	default:
		return nil, false, fmt.Errorf("load records: %w", err)
	}
}

func (s *Store) write(ctx context.Context, items []records.Record) error {
	if items == nil {
		items = []records.Record{}
	}
	if err := s.backend.Write(ctx, items); err != nil {
		logging.ErrorWithContext(s.logger, "failed to save records", "store_write_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check free space and permissions of the store directory"))
		return err
	}
	return nil
}

func (s *Store) quarantine() {
	q, ok := s.backend.(quarantiner)
	if !ok {
		return
	}
	dest, err := q.Quarantine()
	if err != nil {
		logging.WarnWithContext(s.logger, "could not move unreadable store aside", "store_quarantine_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "unreadable data will be overwritten"))
		return
	}
	s.logger.Warn("unreadable store moved aside",
		logging.Alert("store_quarantined"),
		logging.String("destination", dest))
}

func (s *Store) acquire(ctx context.Context, exclusive bool) (func(), error) {
	if ctx == nil {
		ctx = context.Background()
	}
	lockCtx, cancel := context.WithTimeout(ctx, s.lockTimeout)
	defer cancel()

	var (
		ok  bool
		err error
	)
	if exclusive {
		ok, err = s.lock.TryLockContext(lockCtx, lockRetryDelay)
	} else {
		ok, err = s.lock.TryRLockContext(lockCtx, lockRetryDelay)
	}
	if err != nil && ctx.Err() == nil && errors.Is(err, context.DeadlineExceeded) {
		return nil, faults.Wrap(faults.ErrLockTimeout, "recordstore", "lock", s.lock.Path(), err)
	}
	if err != nil {
		return nil, fmt.Errorf("acquire store lock: %w", err)
	}
	if !ok {
		return nil, faults.Wrap(faults.ErrLockTimeout, "recordstore", "lock", s.lock.Path(), nil)
	}
	return func() {
		if err := s.lock.Unlock(); err != nil {
			s.logger.Warn("failed to release store lock", logging.Error(err))
		}
	}, nil
}

func indexByKey(items []records.Record) map[records.Key]int {
	index := make(map[records.Key]int, len(items))
	for i, r := range items {
		if _, seen := index[r.Key()]; !seen {
			index[r.Key()] = i
		}
	}
	return index
}

func appendOrMerge(items []records.Record, index map[records.Key]int, r records.Record) ([]records.Record, Outcome) {
	key := r.Key()
	if i, ok := index[key]; ok {
		records.MergeInto(&items[i], r)
		return items, Merged
	}
	index[key] = len(items)
	return append(items, r), Inserted
}
