package trend_test

import (
	"errors"
	"math"
	"testing"
	"time"

	"milelog/internal/faults"
	"milelog/internal/records"
	"milelog/internal/trend"
)

func at(t *testing.T, value string) time.Time {
	t.Helper()
	d, err := records.ParseDate(value)
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func cargoScenario(t *testing.T) []trend.Point {
	return []trend.Point{
		{At: at(t, "2024-01-01"), Mileage: 100000},
		{At: at(t, "2024-02-01"), Mileage: 103000},
		{At: at(t, "2024-03-01"), Mileage: 98500},
		{At: at(t, "2024-04-01"), Mileage: 101500},
	}
}

func near(a, b, tol float64) bool { return math.Abs(a-b) <= tol }

func TestFitRequiresTwoPoints(t *testing.T) {
	for _, pts := range [][]trend.Point{nil, {{At: at(t, "2024-01-01"), Mileage: 1}}} {
		_, err := trend.Fit(pts)
		if !errors.Is(err, faults.ErrInsufficientData) {
			t.Fatalf("expected insufficient data for %d points, got %v", len(pts), err)
		}
	}
}

func TestFitReproducesLinearData(t *testing.T) {
	start := at(t, "2023-06-01")
	var pts []trend.Point
	for i := 0; i < 12; i++ {
		day := start.AddDate(0, 0, i*30)
		pts = append(pts, trend.Point{At: day, Mileage: 50000 + 40*float64(i*30)})
	}
	m, err := trend.Fit(pts)
	if err != nil {
		t.Fatalf("Fit: %v", err)
	}
	if m.Degree() != 3 {
		t.Fatalf("expected degree 3, got %d", m.Degree())
	}
	for i, v := range m.Values() {
		if !near(v, pts[i].Mileage, 1e-3) {
			t.Fatalf("value %d = %f, want %f", i, v, pts[i].Mileage)
		}
	}
	future := start.AddDate(0, 0, 400)
	if got := m.Predict(future); !near(got, 50000+40*400, 1e-2) {
		t.Fatalf("Predict = %f", got)
	}
}

func TestFitIsDeterministic(t *testing.T) {
	pts := cargoScenario(t)
	a, err := trend.Fit(pts)
	if err != nil {
		t.Fatal(err)
	}
	b, err := trend.Fit(pts)
	if err != nil {
		t.Fatal(err)
	}
	av, bv := a.Values(), b.Values()
	for i := range av {
		if av[i] != bv[i] {
			t.Fatalf("value %d differs: %v vs %v", i, av[i], bv[i])
		}
	}
}

func TestDegreeReducedForFewDistinctDates(t *testing.T) {
	pts := []trend.Point{
		{At: at(t, "2024-01-01"), Mileage: 100},
		{At: at(t, "2024-01-01").Add(6 * time.Hour), Mileage: 120},
		{At: at(t, "2024-01-11"), Mileage: 300},
	}
	m, err := trend.Fit(pts)
	if err != nil {
		t.Fatalf("Fit: %v", err)
	}
	if m.Degree() != 1 {
		t.Fatalf("expected degree 1 with two distinct dates, got %d", m.Degree())
	}
	if got := m.Predict(at(t, "2024-01-01")); !near(got, 110, 1e-6) {
		t.Fatalf("expected mean of same-day readings, got %f", got)
	}
}

func TestSingleDistinctDateFitsConstant(t *testing.T) {
	d := at(t, "2024-01-01")
	m, err := trend.Fit([]trend.Point{{At: d, Mileage: 10}, {At: d, Mileage: 30}})
	if err != nil {
		t.Fatalf("Fit: %v", err)
	}
	if m.Degree() != 0 || !near(m.Predict(d.AddDate(1, 0, 0)), 20, 1e-9) {
		t.Fatalf("expected constant 20, got degree %d", m.Degree())
	}
}

func TestResidualFreedomKeepsResiduals(t *testing.T) {
	pts := cargoScenario(t)

	full, err := trend.Fit(pts)
	if err != nil {
		t.Fatal(err)
	}
	for _, r := range full.Residuals(pts) {
		if !near(r, 0, 1e-4) {
			t.Fatalf("cubic through four points should interpolate, residual %f", r)
		}
	}

	capped, err := trend.Fit(pts, trend.WithResidualFreedom())
	if err != nil {
		t.Fatal(err)
	}
	if capped.Degree() != 2 {
		t.Fatalf("expected degree 2, got %d", capped.Degree())
	}
	want := []float64{-720.07, 2259.54, -2259.54, 720.07}
	for i, r := range capped.Residuals(pts) {
		if !near(r, want[i], 0.01) {
			t.Fatalf("residual %d = %f, want %f", i, r, want[i])
		}
	}
}

func TestWithDegree(t *testing.T) {
	m, err := trend.Fit(cargoScenario(t), trend.WithDegree(1))
	if err != nil {
		t.Fatal(err)
	}
	if m.Degree() != 1 {
		t.Fatalf("expected degree 1, got %d", m.Degree())
	}
	if got := m.Predict(at(t, "2024-02-15")); !near(got, 100749.67, 0.01) {
		t.Fatalf("Predict = %f", got)
	}
}

func TestFitRecordsUsesInputOrder(t *testing.T) {
	items := []records.Record{
		records.New("b", at(t, "2024-03-01"), false, 300, records.ClassCargo, ""),
		records.New("a", at(t, "2024-01-01"), false, 100, records.ClassCargo, ""),
		records.New("c", at(t, "2024-02-01"), false, 200, records.ClassCargo, ""),
	}
	m, err := trend.FitRecords(items, trend.WithDegree(1))
	if err != nil {
		t.Fatal(err)
	}
	values := m.Values()
	if !(values[0] > values[2] && values[2] > values[1]) {
		t.Fatalf("values not aligned with input order: %v", values)
	}
}
