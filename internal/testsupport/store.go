package testsupport

import (
	"context"
	"testing"

	"milelog/internal/config"
	"milelog/internal/logging"
	"milelog/internal/records"
	"milelog/internal/recordstore"
)

// MustOpenStore opens a recordstore.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *recordstore.Store {
	t.Helper()

	store, err := recordstore.Open(context.Background(), cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("recordstore.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// Record builds a record observed on date (YYYY-MM-DD).
func Record(t testing.TB, date string, mileage int64, class records.Class, identity records.Identity) records.Record {
	t.Helper()

	at, err := records.ParseDate(date)
	if err != nil {
		t.Fatalf("parse %s: %v", date, err)
	}
	r := records.New("IMG_"+date+".jpg", at, false, mileage, class, "")
	if identity != "" {
		r.Identity = identity
	}
	return r
}

// CargoScenario returns four cargo readings from two vans alternating
// between two mileage levels.
func CargoScenario(t testing.TB) []records.Record {
	t.Helper()

	return []records.Record{
		Record(t, "2024-01-01", 100000, records.ClassCargo, ""),
		Record(t, "2024-02-01", 103000, records.ClassCargo, ""),
		Record(t, "2024-03-01", 98500, records.ClassCargo, ""),
		Record(t, "2024-04-01", 101500, records.ClassCargo, ""),
	}
}

// Seed saves items to the store.
func Seed(t testing.TB, store *recordstore.Store, items []records.Record) {
	t.Helper()

	if err := store.Save(context.Background(), items); err != nil {
		t.Fatalf("seed store: %v", err)
	}
}
