package ingest

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"milelog/internal/logging"
	"milelog/internal/records"
)

// Status classifies the outcome of reading one source.
type Status string

const (
	StatusOK         Status = "ok"
	StatusUnreadable Status = "unreadable"
	StatusAmbiguous  Status = "ambiguous"
	StatusFailed     Status = "failed"
)

// Source is one input to the pipeline.
type Source struct {
	Path string
	// Class overrides the classifier when known.
	Class records.Class
	Notes string
}

// Reading is the pipeline's verdict on one source.
type Reading struct {
	Source        Source
	Status        Status
	Candidates    []int64
	Record        records.Record
	TimeSynthetic bool
	Err           error
}

// Stored reports whether the reading produced a record.
func (r Reading) Stored() bool { return r.Status == StatusOK }

// Pipeline reads sources through its collaborators.
type Pipeline struct {
	Timestamps TimestampReader
	Mileage    MileageReader
	Classes    ClassClassifier
	// AcceptFirst keeps the first candidate instead of reporting ambiguity.
	AcceptFirst bool
	Now         func() time.Time
	Logger      *slog.Logger
}

// Process reads a single source.
func (p *Pipeline) Process(ctx context.Context, src Source) Reading {
	logger := logging.NewComponentLogger(p.Logger, "ingest")
	out := Reading{Source: src}

	if p.Mileage == nil {
		out.Status = StatusFailed
		out.Err = errors.New("ingest: no mileage reader configured")
		return out
	}
	candidates, err := p.Mileage.ReadMileage(ctx, src.Path)
	if err != nil {
		out.Status = StatusFailed
		out.Err = err
		logging.WarnWithContext(logger, "mileage read failed", "ingest_read_failed",
			logging.String(logging.FieldSourceID, src.Path),
			logging.Error(err),
			logging.String(logging.FieldImpact, "source skipped"),
		)
		return out
	}
	out.Candidates = candidates
	switch {
	case len(candidates) == 0:
		out.Status = StatusUnreadable
		return out
	case len(candidates) > 1 && !p.AcceptFirst:
		out.Status = StatusAmbiguous
		return out
	}

	observedAt, timeKnown := p.timestamp(src.Path)
	out.TimeSynthetic = !timeKnown
	if !timeKnown {
		logger.Info("capture time unavailable, using current time", logging.String(logging.FieldSourceID, src.Path))
	}

	class := src.Class
	if !class.Known() && p.Classes != nil {
		class, err = p.Classes.ClassifyVehicle(ctx, src.Path)
		if err != nil {
			logging.WarnWithContext(logger, "vehicle classification failed", "ingest_classify_failed",
				logging.String(logging.FieldSourceID, src.Path),
				logging.Error(err),
				logging.String(logging.FieldImpact, "class recorded as unknown"),
			)
			class = records.ClassUnknown
		}
	}
	if !class.Known() {
		class = records.ClassUnknown
	}

	out.Record = records.New(src.Path, observedAt, true, candidates[0], class, src.Notes)
	out.Status = StatusOK
	return out
}

// ProcessAll reads sources in order, stopping early if ctx is cancelled.
func (p *Pipeline) ProcessAll(ctx context.Context, sources []Source) ([]Reading, error) {
	out := make([]Reading, 0, len(sources))
	for _, src := range sources {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		out = append(out, p.Process(ctx, src))
	}
	return out, nil
}

func (p *Pipeline) timestamp(source string) (time.Time, bool) {
	if p.Timestamps != nil {
		if t, err := p.Timestamps.ReadTimestamp(source); err == nil {
			return t.UTC(), true
		}
	}
	now := time.Now
	if p.Now != nil {
		now = p.Now
	}
	return now().UTC().Truncate(time.Second), false
}

// Summary counts readings by status.
func Summary(readings []Reading) map[Status]int {
	out := make(map[Status]int, 4)
	for _, r := range readings {
		out[r.Status]++
	}
	return out
}

// Records returns the records of successful readings, in order.
func Records(readings []Reading) []records.Record {
	var out []records.Record
	for _, r := range readings {
		if r.Stored() {
			out = append(out, r.Record)
		}
	}
	return out
}

var imageExtensions = []string{".png", ".jpg", ".jpeg"}

// Discover lists image files under root, sorted by path.
func Discover(root string) ([]string, error) {
	var out []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if slices.Contains(imageExtensions, strings.ToLower(filepath.Ext(path))) {
			out = append(out, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	slices.Sort(out)
	return out, nil
}
