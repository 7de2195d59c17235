package extrapolate_test

import (
	"errors"
	"math"
	"testing"
	"time"

	"milelog/internal/extrapolate"
	"milelog/internal/faults"
	"milelog/internal/records"
)

func day(t *testing.T, value string) time.Time {
	t.Helper()
	d, err := records.ParseDate(value)
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func linearHistory(t *testing.T) []records.Record {
	start := day(t, "2024-01-01")
	var out []records.Record
	for i := 0; i < 6; i++ {
		at := start.AddDate(0, 0, i*30)
		out = append(out, records.New("", at, false, int64(20000+50*i*30), records.ClassPersonal, ""))
	}
	return out
}

func TestGridIncludesTargetAndClampsMonthEnd(t *testing.T) {
	got := extrapolate.Grid(day(t, "2024-01-31"), day(t, "2024-05-10"), 1)
	want := []string{"2024-01-31", "2024-02-29", "2024-03-31", "2024-04-30", "2024-05-10"}
	if len(got) != len(want) {
		t.Fatalf("grid = %v", got)
	}
	for i, at := range got {
		if at.Format(records.DateLayout) != want[i] {
			t.Fatalf("grid[%d] = %s, want %s", i, at.Format(records.DateLayout), want[i])
		}
	}
}

func TestGridStepMonths(t *testing.T) {
	got := extrapolate.Grid(day(t, "2024-01-01"), day(t, "2024-07-01"), 3)
	want := []string{"2024-01-01", "2024-04-01", "2024-07-01"}
	if len(got) != len(want) {
		t.Fatalf("grid = %v", got)
	}
	for i, at := range got {
		if at.Format(records.DateLayout) != want[i] {
			t.Fatalf("grid[%d] = %s, want %s", i, at.Format(records.DateLayout), want[i])
		}
	}
}

func TestProjectExtendsPastLatest(t *testing.T) {
	items := linearHistory(t)
	target := day(t, "2025-01-01")
	p, err := extrapolate.Project(items, target, extrapolate.Options{})
	if err != nil {
		t.Fatalf("Project: %v", err)
	}
	if !p.Extended {
		t.Fatal("expected extended projection")
	}
	final, ok := p.Final()
	if !ok || !final.At.Equal(target) || !final.Projected {
		t.Fatalf("unexpected final sample %+v", final)
	}
	days := float64(records.DayOrdinal(target) - records.DayOrdinal(day(t, "2024-01-01")))
	if math.Abs(final.Mileage-(20000+50*days)) > 0.5 {
		t.Fatalf("final mileage = %f", final.Mileage)
	}
	if p.Samples[0].Projected || !p.Samples[0].At.Equal(p.Earliest) {
		t.Fatalf("first sample should be the earliest observation: %+v", p.Samples[0])
	}
	if len(p.Samples) != 13 {
		t.Fatalf("expected 13 monthly samples, got %d", len(p.Samples))
	}
}

func TestProjectHistoricalOnly(t *testing.T) {
	items := linearHistory(t)
	p, err := extrapolate.Project(items, day(t, "2024-02-01"), extrapolate.Options{})
	if err != nil {
		t.Fatal(err)
	}
	if p.Extended {
		t.Fatal("expected historical trend only")
	}
	final, _ := p.Final()
	if !final.At.Equal(p.Latest) {
		t.Fatalf("expected samples through latest observation, ended at %s", final.At)
	}
	for _, s := range p.Samples {
		if s.Projected {
			t.Fatalf("unexpected projected sample %+v", s)
		}
	}
}

func TestProjectNeedsTwoRecords(t *testing.T) {
	items := linearHistory(t)[:1]
	if _, err := extrapolate.Project(items, day(t, "2025-01-01"), extrapolate.Options{}); !errors.Is(err, faults.ErrInsufficientData) {
		t.Fatalf("expected insufficient data, got %v", err)
	}
}
