package predict_test

import (
	"errors"
	"testing"
	"time"

	"milelog/internal/faults"
	"milelog/internal/predict"
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

func labelled(t *testing.T, date string, mileage int64, class records.Class, id records.Identity) records.Record {
	t.Helper()
	r := records.New(date, day(t, date), false, mileage, class, "")
	r.Identity = id
	return r
}

func cargoTraining(t *testing.T) []records.Record {
	return []records.Record{
		labelled(t, "2024-01-01", 100000, records.ClassCargo, "L3H2"),
		labelled(t, "2024-02-01", 103000, records.ClassCargo, "L4H2"),
		labelled(t, "2024-03-01", 98500, records.ClassCargo, "L3H2"),
		labelled(t, "2024-04-01", 101500, records.ClassCargo, "L4H2"),
	}
}

func TestPredictMajorityOfNearest(t *testing.T) {
	got, err := predict.Predict(cargoTraining(t), records.ClassCargo, 3, 99000, day(t, "2024-02-15"))
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	if got.Identity != "L3H2" {
		t.Fatalf("expected L3H2, got %s (votes %v)", got.Identity, got.Votes)
	}
	if got.K != 3 || len(got.Neighbors) != 3 {
		t.Fatalf("expected 3 neighbours, got k=%d n=%d", got.K, len(got.Neighbors))
	}
	if got.Neighbors[0].Record.Mileage != 98500 {
		t.Fatalf("nearest neighbour = %d", got.Neighbors[0].Record.Mileage)
	}
}

func TestPredictNoExamples(t *testing.T) {
	items := []records.Record{records.New("a", day(t, "2024-01-01"), false, 10, records.ClassCargo, "")}
	got, err := predict.Predict(items, records.ClassUnknown, 3, 10, day(t, "2024-01-02"))
	if !errors.Is(err, faults.ErrInsufficientData) {
		t.Fatalf("expected insufficient data, got %v", err)
	}
	if got.Identity != records.IdentityUnknown {
		t.Fatalf("expected unknown identity, got %s", got.Identity)
	}
}

func TestPredictReducesK(t *testing.T) {
	items := []records.Record{labelled(t, "2024-01-01", 500, records.ClassPersonal, "Scudo")}
	got, err := predict.Predict(items, records.ClassPersonal, 3, 900, day(t, "2024-06-01"))
	if err != nil {
		t.Fatal(err)
	}
	if got.K != 1 || got.Identity != "Scudo" {
		t.Fatalf("expected k=1 Scudo, got k=%d %s", got.K, got.Identity)
	}
}

func TestPredictTieGoesToNearest(t *testing.T) {
	items := []records.Record{
		labelled(t, "2024-01-01", 1000, records.ClassCargo, "L4H2"),
		labelled(t, "2024-01-01", 1100, records.ClassCargo, "L3H2"),
	}
	got, err := predict.Predict(items, records.ClassCargo, 2, 1090, day(t, "2024-01-01"))
	if err != nil {
		t.Fatal(err)
	}
	if got.Identity != "L3H2" {
		t.Fatalf("expected tie to go to nearest L3H2, got %s", got.Identity)
	}
}

func TestPredictFiltersClass(t *testing.T) {
	items := append(cargoTraining(t), labelled(t, "2024-02-15", 99000, records.ClassPersonal, "Scudo"))
	got, err := predict.Predict(items, records.ClassCargo, 1, 99000, day(t, "2024-02-15"))
	if err != nil {
		t.Fatal(err)
	}
	if got.Identity == "Scudo" {
		t.Fatal("personal record used for cargo prediction")
	}
	all, err := predict.Predict(items, records.ClassUnknown, 1, 99000, day(t, "2024-02-15"))
	if err != nil {
		t.Fatal(err)
	}
	if all.Identity != "Scudo" {
		t.Fatalf("expected unfiltered prediction to find Scudo, got %s", all.Identity)
	}
}

func TestClassifierIgnoresUnresolved(t *testing.T) {
	items := append(cargoTraining(t), records.New("x", day(t, "2024-02-15"), false, 99000, records.ClassCargo, ""))
	c, err := predict.New(items, records.ClassCargo, 3)
	if err != nil {
		t.Fatal(err)
	}
	if c.Size() != 4 {
		t.Fatalf("expected 4 training examples, got %d", c.Size())
	}
}
