package engine

import (
	"context"
	"errors"

	"milelog/internal/faults"
	"milelog/internal/ingest"
	"milelog/internal/logging"
	"milelog/internal/metrics"
	"milelog/internal/records"
	"milelog/internal/recordstore"
)

// IngestOptions tunes Ingest.
type IngestOptions struct {
	DryRun bool
	// ErrorDir receives copies of unreadable and ambiguous sources. Empty
	// falls back to ingest.error_dir; both empty disables copying.
	ErrorDir string
	// Suggest predicts an identity for each stored reading. Suggestions are
	// reported only; stored records keep an unknown identity.
	Suggest bool
}

// IngestItem is the outcome for one source.
type IngestItem struct {
	Reading   ingest.Reading
	Outcome   recordstore.Outcome
	Suggested records.Identity
	// CopiedTo is the error-folder copy of a rejected source.
	CopiedTo string
}

// IngestReport summarizes an ingest run.
type IngestReport struct {
	Items    []IngestItem
	Inserted int
	Merged   int
	ByStatus map[ingest.Status]int
}

// Pipeline builds an ingest pipeline from configuration around the given
// mileage reader.
func (e *Engine) Pipeline(reader ingest.MileageReader) *ingest.Pipeline {
	return &ingest.Pipeline{
		Timestamps:  ingest.FilenameTimestamps{},
		Mileage:     reader,
		Classes:     ingest.StaticClassifier{Class: records.ParseClass(e.cfg.Ingest.DefaultClass)},
		AcceptFirst: e.cfg.Ingest.AcceptFirstCandidate,
		Logger:      e.logger,
	}
}

// Ingest reads sources through p and stores every successful reading in one
// locked cycle. Unreadable and ambiguous sources are reported, never stored,
// and are copied into the error directory when one is set.
func (e *Engine) Ingest(ctx context.Context, p *ingest.Pipeline, sources []ingest.Source, opts IngestOptions) (IngestReport, error) {
	readings, err := p.ProcessAll(ctx, sources)
	report := IngestReport{Items: make([]IngestItem, len(readings)), ByStatus: ingest.Summary(readings)}
	for i, r := range readings {
		report.Items[i].Reading = r
		metrics.ObserveIngest(string(r.Status))
	}
	if err != nil {
		return report, err
	}

	errorDir := opts.ErrorDir
	if errorDir == "" {
		errorDir = e.cfg.Ingest.ErrorDir
	}
	if errorDir != "" && !opts.DryRun {
		copied, err := ingest.CopyRejected(readings, errorDir)
		for i, dest := range copied {
			report.Items[i].CopiedTo = dest
		}
		if err != nil {
			return report, faults.Wrap(faults.ErrWrite, "engine", "copy rejected sources", errorDir, err)
		}
	}

	batch := ingest.Records(readings)
	var stored []int
	for i, item := range report.Items {
		if item.Reading.Stored() {
			stored = append(stored, i)
		}
	}

	if opts.Suggest {
		for _, i := range stored {
			rec := report.Items[i].Reading.Record
			prediction, err := e.PredictIdentity(ctx, rec.Mileage, rec.ObservedAt, rec.Class)
			if err != nil && !errors.Is(err, faults.ErrInsufficientData) {
				return report, err
			}
			report.Items[i].Suggested = prediction.Identity
		}
	}

	if opts.DryRun || len(batch) == 0 {
		return report, nil
	}
	outcomes, err := e.AppendOrMergeRecords(ctx, batch)
	if err != nil {
		return report, err
	}
	for j, i := range stored {
		report.Items[i].Outcome = outcomes[j]
		switch outcomes[j] {
		case recordstore.Inserted:
			report.Inserted++
		case recordstore.Merged:
			report.Merged++
		}
	}
	e.logger.Info("ingest finished",
		logging.Int("sources", len(sources)),
		logging.Int("inserted", report.Inserted),
		logging.Int("merged", report.Merged),
		logging.Int("unreadable", report.ByStatus[ingest.StatusUnreadable]),
		logging.Int("ambiguous", report.ByStatus[ingest.StatusAmbiguous]))
	return report, nil
}
