package engine

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"milelog/internal/faults"
	"milelog/internal/logging"
	"milelog/internal/metrics"
	"milelog/internal/records"
)

// Rebuild methods.
const (
	MethodResidual = "residual"
	MethodSole     = "sole"
	MethodSkipped  = "skipped"
)

// RebuildOptions tunes Rebuild.
type RebuildOptions struct {
	DryRun bool
}

// ClassReport summarizes what rebuild did with one class.
type ClassReport struct {
	Class     records.Class            `json:"class"`
	Method    string                   `json:"method"`
	Records   int                      `json:"records"`
	Changed   int                      `json:"changed"`
	Assigned  map[records.Identity]int `json:"assigned,omitempty"`
	LowerMean float64                  `json:"lower_mean,omitempty"`
	UpperMean float64                  `json:"upper_mean,omitempty"`
	Reason    string                   `json:"reason,omitempty"`
}

// RebuildReport is the outcome of one rebuild run.
type RebuildReport struct {
	RunID    string        `json:"run_id"`
	DryRun   bool          `json:"dry_run"`
	Records  int           `json:"records"`
	Changed  int           `json:"changed"`
	Classes  []ClassReport `json:"classes"`
	Duration time.Duration `json:"duration"`
}

// Rebuild reassigns vehicle identities across the store. Classes with a
// residual group are split by residual against one class-wide trend;
// classes with a single registered vehicle get that vehicle; other classes
// are left untouched. Classes with too little data keep their identities.
// The whole run happens under one store lock.
func (e *Engine) Rebuild(ctx context.Context, opts RebuildOptions) (RebuildReport, error) {
	start := time.Now()
	report := RebuildReport{RunID: uuid.NewString(), DryRun: opts.DryRun}
	ctx = logging.WithRunID(ctx, report.RunID)
	logger := logging.WithContext(ctx, e.logger)

	if opts.DryRun {
		items, err := e.store.Load(ctx)
		if err != nil {
			return report, err
		}
		e.plan(items, &report)
	} else {
		err := e.store.Update(ctx, func(items []records.Record) ([]records.Record, error) {
			return e.plan(items, &report), nil
		})
		if err != nil {
			return report, err
		}
	}
	report.Duration = time.Since(start)

	metrics.ObserveRebuild(opts.DryRun)
	if !opts.DryRun {
		for _, c := range report.Classes {
			metrics.ObserveAssigned(c.Method, c.Changed)
		}
	}
	logger.Info("rebuild finished",
		logging.Int(logging.FieldRecords, report.Records),
		logging.Int("changed", report.Changed),
		logging.Bool("dry_run", opts.DryRun),
		logging.Duration("duration", report.Duration))
	return report, nil
}

// plan computes new identities for items and fills report.
func (e *Engine) plan(items []records.Record, report *RebuildReport) []records.Record {
	report.Records = len(items)
	report.Classes = report.Classes[:0]
	report.Changed = 0

	for _, class := range records.ClassesPresent(items) {
		idx := make([]int, 0, len(items))
		for i, r := range items {
			if r.Class == class {
				idx = append(idx, i)
			}
		}
		cr := ClassReport{Class: class, Records: len(idx), Method: MethodSkipped}
		var assigned []records.Identity

		if _, grouped := e.fleet.ResidualLabels(class); grouped {
			cr.Method = MethodResidual
			subset := make([]records.Record, len(idx))
			for j, i := range idx {
				subset[j] = items[i]
			}
			res, err := e.ClassifyResiduals(subset, class)
			switch {
			case errors.Is(err, faults.ErrInsufficientData):
				cr.Reason = faults.Diagnostic(err)
			case err != nil:
				cr.Reason = err.Error()
			default:
				assigned = res.Identities
				cr.LowerMean, cr.UpperMean = res.LowerMean, res.UpperMean
			}
		} else if id, ok := e.fleet.SoleVehicle(class); ok {
			cr.Method = MethodSole
			assigned = make([]records.Identity, len(idx))
			for j := range assigned {
				assigned[j] = id
			}
		} else {
			cr.Reason = "no residual group and no single registered vehicle"
		}

		if assigned != nil {
			cr.Assigned = make(map[records.Identity]int, 2)
			for j, i := range idx {
				cr.Assigned[assigned[j]]++
				if items[i].Identity != assigned[j] {
					items[i].Identity = assigned[j]
					cr.Changed++
				}
			}
		}
		report.Changed += cr.Changed
		report.Classes = append(report.Classes, cr)
	}
	return items
}
