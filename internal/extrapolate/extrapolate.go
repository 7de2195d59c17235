// Package extrapolate projects a mileage trend forward in time.
package extrapolate

import (
	"time"

	"milelog/internal/records"
	"milelog/internal/trend"
)

// DefaultStepMonths is the sampling interval of the projection grid.
const DefaultStepMonths = 1

// Sample is one point on the projected curve.
type Sample struct {
	At      time.Time
	Mileage float64
	// Projected is true for samples after the latest observation.
	Projected bool
}

// Projection is the sampled trend of a record history.
type Projection struct {
	Samples  []Sample
	Extended bool
	Degree   int
	Earliest time.Time
	Latest   time.Time
	Target   time.Time
}

// Final returns the last sample. ok is false for an empty projection.
func (p Projection) Final() (Sample, bool) {
	if len(p.Samples) == 0 {
		return Sample{}, false
	}
	return p.Samples[len(p.Samples)-1], true
}

// Options tunes Project.
type Options struct {
	StepMonths int
	Degree     int
}

// Project refits the trend over items and samples it every StepMonths from
// the earliest observation through target, which is always the final
// sample. When target is not after the latest observation only the
// historical span is sampled and Extended is false.
func Project(items []records.Record, target time.Time, opts Options) (Projection, error) {
	step := opts.StepMonths
	if step <= 0 {
		step = DefaultStepMonths
	}
	fitOpts := []trend.Option{}
	if opts.Degree > 0 {
		fitOpts = append(fitOpts, trend.WithDegree(opts.Degree))
	}
	model, err := trend.FitRecords(items, fitOpts...)
	if err != nil {
		return Projection{}, err
	}

	earliest, latest, _ := records.Span(items)
	target = records.CivilDate(target)
	p := Projection{
		Degree:   model.Degree(),
		Earliest: earliest,
		Latest:   latest,
		Target:   target,
		Extended: target.After(latest),
	}
	end := target
	if !p.Extended {
		end = latest
	}
	for _, at := range Grid(earliest, end, step) {
		p.Samples = append(p.Samples, Sample{
			At:        at,
			Mileage:   model.Predict(at),
			Projected: at.After(latest),
		})
	}
	return p, nil
}

// Grid returns dates from start stepping stepMonths at a time, strictly
// before end, followed by end itself. Month arithmetic clamps to the last
// day of shorter months and is always taken from start.
func Grid(start, end time.Time, stepMonths int) []time.Time {
	start, end = records.CivilDate(start), records.CivilDate(end)
	if stepMonths <= 0 {
		stepMonths = DefaultStepMonths
	}
	var out []time.Time
	for i := 0; ; i++ {
		at := records.AddMonths(start, i*stepMonths)
		if !at.Before(end) {
			break
		}
		out = append(out, at)
	}
	return append(out, end)
}
