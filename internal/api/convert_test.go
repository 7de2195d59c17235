package api

import (
	"errors"
	"testing"
	"time"

	"milelog/internal/engine"
	"milelog/internal/faults"
	"milelog/internal/ingest"
	"milelog/internal/predict"
	"milelog/internal/records"
	"milelog/internal/recordstore"
)

func mileage(v int64) *int64 { return &v }

func TestToRecord(t *testing.T) {
	r, err := ToRecord(AppendRecordRequest{
		SourceID: "IMG_1.jpg",
		Date:     "2024-02-15",
		Time:     "08:30:00",
		Mileage:  mileage(99000),
		Class:    "Dostawczy",
		Identity: "L3H2",
		Notes:    "manual\r\n",
	})
	if err != nil {
		t.Fatalf("ToRecord: %v", err)
	}
	if r.Class != records.ClassCargo || r.Identity != "L3H2" || r.Notes != "manual" {
		t.Fatalf("unexpected record %+v", r)
	}
	if !r.TimeKnown || r.Clock() != "08:30:00" || r.Date() != "2024-02-15" {
		t.Fatalf("unexpected timestamp %s %s", r.Date(), r.Clock())
	}
}

func TestToRecordRejectsInvalidInput(t *testing.T) {
	cases := map[string]AppendRecordRequest{
		"missing mileage":  {Date: "2024-01-01"},
		"negative mileage": {Date: "2024-01-01", Mileage: mileage(-1)},
		"bad date":         {Date: "01/02/2024", Mileage: mileage(1)},
		"bad time":         {Date: "2024-01-01", Time: "25:00", Mileage: mileage(1)},
		"missing date":     {Mileage: mileage(1)},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := ToRecord(req); !errors.Is(err, faults.ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestFromRecordOmitsUnknownTime(t *testing.T) {
	at, _ := records.ParseDate("2024-01-01")
	dto := FromRecord(records.New("a", at, false, 5, records.ClassPersonal, ""))
	if dto.Time != "" || dto.Identity != "unknown" || dto.Class != "personal" {
		t.Fatalf("unexpected dto %+v", dto)
	}
	if list := FromRecords(nil); list.Records == nil || list.Count != 0 {
		t.Fatalf("expected empty non-nil listing, got %+v", list)
	}
}

func TestFromPredictionDefaultsUnknown(t *testing.T) {
	if got := FromPrediction(predict.Prediction{}); got.Identity != "unknown" {
		t.Fatalf("identity = %q", got.Identity)
	}
}

func TestFromRebuildReport(t *testing.T) {
	dto := FromRebuildReport(engine.RebuildReport{
		RunID:    "run",
		Records:  4,
		Changed:  4,
		Duration: 1500 * time.Millisecond,
		Classes: []engine.ClassReport{{
			Class:    records.ClassCargo,
			Method:   engine.MethodResidual,
			Records:  4,
			Changed:  4,
			Assigned: map[records.Identity]int{"L3H2": 2, "L4H2": 2},
		}},
	})
	if dto.DurationMs != 1500 || dto.Classes[0].Assigned["L3H2"] != 2 || dto.Classes[0].Class != "cargo" {
		t.Fatalf("unexpected dto %+v", dto)
	}
}

func TestFromIngestReport(t *testing.T) {
	at, _ := records.ParseDate("2024-01-01")
	report := engine.IngestReport{
		Items: []engine.IngestItem{
			{
				Reading: ingest.Reading{
					Source: ingest.Source{Path: "a.jpg"},
					Status: ingest.StatusOK,
					Record: records.New("a.jpg", at, true, 100, records.ClassCargo, ""),
				},
				Outcome:   recordstore.Inserted,
				Suggested: "L3H2",
			},
			{Reading: ingest.Reading{Source: ingest.Source{Path: "b.jpg"}, Status: ingest.StatusAmbiguous, Candidates: []int64{1, 2}}},
		},
		Inserted: 1,
		ByStatus: map[ingest.Status]int{ingest.StatusOK: 1, ingest.StatusAmbiguous: 1},
	}
	dto := FromIngestReport(report)
	if dto.Items[0].Outcome != "inserted" || dto.Items[0].Suggested != "L3H2" || dto.Items[0].Mileage != 100 {
		t.Fatalf("unexpected first item %+v", dto.Items[0])
	}
	if dto.Items[1].Outcome != "" || len(dto.Items[1].Candidates) != 2 {
		t.Fatalf("unexpected second item %+v", dto.Items[1])
	}
	if dto.ByStatus["ambiguous"] != 1 {
		t.Fatalf("byStatus = %v", dto.ByStatus)
	}
}

func TestErrorKind(t *testing.T) {
	if got := ErrorKind(faults.Insufficient("trend", 1, 2)); got != "insufficient_data" {
		t.Fatalf("kind = %q", got)
	}
	if got := ErrorKind(errors.New("boom")); got != "" {
		t.Fatalf("kind = %q", got)
	}
}

func TestParseDateParam(t *testing.T) {
	fallback := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	got, err := ParseDateParam("target", "", fallback)
	if err != nil || !got.Equal(fallback) {
		t.Fatalf("fallback not used: %v %v", got, err)
	}
	if _, err := ParseDateParam("target", "tomorrow", fallback); !errors.Is(err, faults.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
