package api

import (
	"errors"
	"fmt"
	"time"

	"milelog/internal/engine"
	"milelog/internal/extrapolate"
	"milelog/internal/faults"
	"milelog/internal/predict"
	"milelog/internal/records"
)

// FromRecord converts a stored record to its API representation.
func FromRecord(r records.Record) Record {
	return Record{
		SourceID: r.SourceID,
		Date:     r.Date(),
		Time:     r.Clock(),
		Mileage:  r.Mileage,
		Class:    string(r.Class),
		Identity: string(r.Identity),
		Notes:    r.Notes,
	}
}

// FromRecords converts a record slice, never returning nil.
func FromRecords(items []records.Record) RecordListResponse {
	out := make([]Record, len(items))
	for i, r := range items {
		out[i] = FromRecord(r)
	}
	return RecordListResponse{Records: out, Count: len(out)}
}

// ToRecord validates req and builds the record it describes.
func ToRecord(req AppendRecordRequest) (records.Record, error) {
	if err := records.Describe(records.Validator().Struct(req)); err != nil {
		return records.Record{}, faults.Wrap(faults.ErrValidation, "api", "decode record", err.Error(), nil)
	}
	observedAt, known, err := records.Combine(req.Date, req.Time)
	if err != nil {
		return records.Record{}, faults.Wrap(faults.ErrValidation, "api", "decode record", "", err)
	}
	r := records.New(req.SourceID, observedAt, known, *req.Mileage, records.ParseClass(req.Class), req.Notes)
	r.Identity = records.ParseIdentity(req.Identity)
	if err := r.Validate(); err != nil {
		return records.Record{}, faults.Wrap(faults.ErrValidation, "api", "decode record", err.Error(), nil)
	}
	return r, nil
}

// FromTrendReport converts an engine trend report.
func FromTrendReport(report engine.TrendReport) TrendResponse {
	points := make([]TrendPoint, len(report.Points))
	for i, p := range report.Points {
		points[i] = TrendPoint{
			Date:     p.Record.Date(),
			Mileage:  p.Record.Mileage,
			Identity: string(p.Record.Identity),
			Fitted:   p.Fitted,
			Residual: p.Residual,
		}
	}
	return TrendResponse{Selection: report.Selection, Degree: report.Degree, Points: points}
}

// FromProjection converts an extrapolation result.
func FromProjection(selection string, p extrapolate.Projection) ExtrapolationResponse {
	samples := make([]Sample, len(p.Samples))
	for i, s := range p.Samples {
		samples[i] = Sample{Date: formatDate(s.At), Mileage: s.Mileage, Projected: s.Projected}
	}
	return ExtrapolationResponse{
		Selection: selection,
		Extended:  p.Extended,
		Degree:    p.Degree,
		Earliest:  formatDate(p.Earliest),
		Latest:    formatDate(p.Latest),
		Target:    formatDate(p.Target),
		Samples:   samples,
	}
}

// FromPrediction converts a k-NN prediction.
func FromPrediction(p predict.Prediction) PredictionResponse {
	out := PredictionResponse{Identity: string(p.Identity), K: p.K}
	if out.Identity == "" {
		out.Identity = string(records.IdentityUnknown)
	}
	if len(p.Votes) > 0 {
		out.Votes = make(map[string]int, len(p.Votes))
		for id, n := range p.Votes {
			out.Votes[string(id)] = n
		}
	}
	for _, n := range p.Neighbors {
		out.Neighbors = append(out.Neighbors, Neighbor{
			Date:     n.Record.Date(),
			Mileage:  n.Record.Mileage,
			Identity: string(n.Record.Identity),
			Distance: n.Distance,
		})
	}
	return out
}

// FromRebuildReport converts a rebuild report.
func FromRebuildReport(report engine.RebuildReport) RebuildResponse {
	classes := make([]ClassReport, len(report.Classes))
	for i, c := range report.Classes {
		dto := ClassReport{
			Class:     string(c.Class),
			Method:    c.Method,
			Records:   c.Records,
			Changed:   c.Changed,
			LowerMean: c.LowerMean,
			UpperMean: c.UpperMean,
			Reason:    c.Reason,
		}
		if len(c.Assigned) > 0 {
			dto.Assigned = make(map[string]int, len(c.Assigned))
			for id, n := range c.Assigned {
				dto.Assigned[string(id)] = n
			}
		}
		classes[i] = dto
	}
	return RebuildResponse{
		RunID:      report.RunID,
		DryRun:     report.DryRun,
		Records:    report.Records,
		Changed:    report.Changed,
		DurationMs: report.Duration.Milliseconds(),
		Classes:    classes,
	}
}

// FromIngestReport converts an ingest report.
func FromIngestReport(report engine.IngestReport) IngestResponse {
	items := make([]IngestItem, len(report.Items))
	for i, item := range report.Items {
		r := item.Reading
		dto := IngestItem{
			Source:        r.Source.Path,
			Status:        string(r.Status),
			Candidates:    r.Candidates,
			TimeSynthetic: r.TimeSynthetic,
			CopiedTo:      item.CopiedTo,
		}
		if r.Stored() {
			dto.Date = r.Record.Date()
			dto.Time = r.Record.Clock()
			dto.Mileage = r.Record.Mileage
			dto.Class = string(r.Record.Class)
		}
		if item.Outcome != 0 {
			dto.Outcome = item.Outcome.String()
		}
		if item.Suggested.Known() {
			dto.Suggested = string(item.Suggested)
		}
		if r.Err != nil {
			dto.Error = r.Err.Error()
		}
		items[i] = dto
	}
	byStatus := make(map[string]int, len(report.ByStatus))
	for status, n := range report.ByStatus {
		byStatus[string(status)] = n
	}
	return IngestResponse{Items: items, Inserted: report.Inserted, Merged: report.Merged, ByStatus: byStatus}
}

// ErrorKind names the fault class of err for clients.
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, faults.ErrValidation):
		return "validation"
	case errors.Is(err, faults.ErrInsufficientData):
		return "insufficient_data"
	case errors.Is(err, faults.ErrDataMissing):
		return "not_found"
	case errors.Is(err, faults.ErrLockTimeout):
		return "busy"
	case errors.Is(err, faults.ErrWrite):
		return "write_failed"
	case errors.Is(err, faults.ErrUnavailable):
		return "unavailable"
	default:
		return ""
	}
}

// ParseDateParam parses an optional YYYY-MM-DD parameter, using fallback
// when value is empty.
func ParseDateParam(name, value string, fallback time.Time) (time.Time, error) {
	if value == "" {
		return fallback, nil
	}
	t, err := records.ParseDate(value)
	if err != nil {
		return time.Time{}, faults.Wrap(faults.ErrValidation, "api", name, fmt.Sprintf("expected YYYY-MM-DD, got %q", value), nil)
	}
	return t, nil
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(records.DateLayout)
}
