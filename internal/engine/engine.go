package engine

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"milelog/internal/config"
	"milelog/internal/faults"
	"milelog/internal/fleet"
	"milelog/internal/logging"
	"milelog/internal/metrics"
	"milelog/internal/records"
	"milelog/internal/recordstore"
)

// Engine exposes record and analysis operations over one store.
type Engine struct {
	cfg    *config.Config
	store  *recordstore.Store
	fleet  *fleet.Registry
	logger *slog.Logger
}

// New assembles an engine from an open store.
func New(cfg *config.Config, store *recordstore.Store, registry *fleet.Registry, logger *slog.Logger) *Engine {
	if registry == nil {
		registry = fleet.Default()
	}
	return &Engine{
		cfg:    cfg,
		store:  store,
		fleet:  registry,
		logger: logging.NewComponentLogger(logger, "engine"),
	}
}

// Open builds the fleet registry and opens the store described by cfg.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Engine, error) {
	registry, err := fleet.FromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("load fleet: %w", err)
	}
	store, err := recordstore.Open(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return New(cfg, store, registry, logger), nil
}

// Close releases the store.
func (e *Engine) Close() error {
	return e.store.Close()
}

// Config returns the engine configuration.
func (e *Engine) Config() *config.Config { return e.cfg }

// Fleet returns the vehicle registry.
func (e *Engine) Fleet() *fleet.Registry { return e.fleet }

// Store returns the underlying record store.
func (e *Engine) Store() *recordstore.Store { return e.store }

// Selection narrows a record set to one class or one vehicle. The zero
// value selects everything.
type Selection struct {
	Class    records.Class
	Identity records.Identity
}

// Apply returns the selected records, preserving order.
func (s Selection) Apply(items []records.Record) []records.Record {
	out := items
	if s.Class.Known() {
		out = records.FilterClass(out, s.Class)
	}
	if s.Identity.Known() {
		filtered := make([]records.Record, 0, len(out))
		for _, r := range out {
			if r.Identity == s.Identity {
				filtered = append(filtered, r)
			}
		}
		out = filtered
	}
	return out
}

// String describes the selection for logs and reports.
func (s Selection) String() string {
	switch {
	case s.Identity.Known():
		return "vehicle " + string(s.Identity)
	case s.Class.Known():
		return "class " + string(s.Class)
	default:
		return "all records"
	}
}

// Resolve canonicalizes the identity against the fleet registry. An
// unregistered identity is a validation error.
func (e *Engine) Resolve(sel Selection) (Selection, error) {
	if !sel.Identity.Known() {
		return sel, nil
	}
	v, ok := e.fleet.Lookup(string(sel.Identity))
	if !ok {
		return sel, faults.Wrap(faults.ErrValidation, "engine", "select", fmt.Sprintf("unknown vehicle %q", sel.Identity), nil)
	}
	sel.Identity = v.Name
	return sel, nil
}

// LoadRecords returns every stored record in insertion order.
func (e *Engine) LoadRecords(ctx context.Context) ([]records.Record, error) {
	return e.store.Load(ctx)
}

// LoadSelection returns the stored records matching sel.
func (e *Engine) LoadSelection(ctx context.Context, sel Selection) ([]records.Record, error) {
	sel, err := e.Resolve(sel)
	if err != nil {
		return nil, err
	}
	items, err := e.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	return sel.Apply(items), nil
}

// AppendOrMergeRecord validates r and stores it, merging notes into an
// existing record with the same key. The record is returned as stored.
func (e *Engine) AppendOrMergeRecord(ctx context.Context, r records.Record) (records.Record, recordstore.Outcome, error) {
	outcomes, stored, err := e.appendOrMerge(ctx, []records.Record{r})
	if err != nil {
		return records.Record{}, 0, err
	}
	return stored[0], outcomes[0], nil
}

// AppendOrMergeRecords stores a batch in one locked cycle.
func (e *Engine) AppendOrMergeRecords(ctx context.Context, items []records.Record) ([]recordstore.Outcome, error) {
	outcomes, _, err := e.appendOrMerge(ctx, items)
	return outcomes, err
}

func (e *Engine) appendOrMerge(ctx context.Context, items []records.Record) ([]recordstore.Outcome, []records.Record, error) {
	items = slices.Clone(items)
	for i := range items {
		items[i].Identity = e.canonicalIdentity(items[i].Identity)
	}
	outcomes, stored, err := e.store.AppendOrMergeStored(ctx, items)
	if err != nil {
		return nil, nil, err
	}
	for _, o := range outcomes {
		metrics.RecordOutcome(o.String())
	}
	return outcomes, stored, nil
}

func (e *Engine) canonicalIdentity(id records.Identity) records.Identity {
	if !id.Known() {
		return records.IdentityUnknown
	}
	if v, ok := e.fleet.Lookup(string(id)); ok {
		return v.Name
	}
	return id
}
