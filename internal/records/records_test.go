package records_test

import (
	"strings"
	"testing"
	"time"

	"milelog/internal/records"
)

func day(t *testing.T, value string) time.Time {
	t.Helper()
	d, err := records.ParseDate(value)
	if err != nil {
		t.Fatalf("ParseDate(%q): %v", value, err)
	}
	return d
}

func TestParseClassAliases(t *testing.T) {
	cases := map[string]records.Class{
		"personal":   records.ClassPersonal,
		"Osobowy":    records.ClassPersonal,
		"car":        records.ClassPersonal,
		"cargo":      records.ClassCargo,
		" Dostawczy": records.ClassCargo,
		"TRUCK":      records.ClassCargo,
		"":           records.ClassUnknown,
		"bus":        records.ClassUnknown,
	}
	for input, want := range cases {
		if got := records.ParseClass(input); got != want {
			t.Fatalf("ParseClass(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestParseIdentity(t *testing.T) {
	if got := records.ParseIdentity(""); got != records.IdentityUnknown {
		t.Fatalf("empty identity = %q", got)
	}
	if got := records.ParseIdentity("Unknown"); got.Known() {
		t.Fatalf("expected Unknown to be unresolved, got %q", got)
	}
	if got := records.ParseIdentity(" L3H2 "); got != "L3H2" || !got.Known() {
		t.Fatalf("unexpected identity %q", got)
	}
}

func TestDayOrdinal(t *testing.T) {
	if got := records.DayOrdinal(day(t, "1970-01-01")); got != 719163 {
		t.Fatalf("epoch ordinal = %d", got)
	}
	if got := records.DayOrdinal(day(t, "2024-01-01")); got != 738886 {
		t.Fatalf("2024-01-01 ordinal = %d", got)
	}
	if got := records.DayOrdinal(day(t, "0001-01-01")); got != 1 {
		t.Fatalf("0001-01-01 ordinal = %d", got)
	}
	afternoon := day(t, "2024-01-01").Add(15 * time.Hour)
	if records.DayOrdinal(afternoon) != 738886 {
		t.Fatal("time of day must not change the ordinal")
	}
	if got := records.FromOrdinal(738886); !got.Equal(day(t, "2024-01-01")) {
		t.Fatalf("FromOrdinal = %v", got)
	}
}

func TestAddMonthsClampsDay(t *testing.T) {
	got := records.AddMonths(day(t, "2024-01-31"), 1)
	if got.Format(records.DateLayout) != "2024-02-29" {
		t.Fatalf("AddMonths = %s", got.Format(records.DateLayout))
	}
	got = records.AddMonths(day(t, "2024-11-15"), 3)
	if got.Format(records.DateLayout) != "2025-02-15" {
		t.Fatalf("AddMonths across year = %s", got.Format(records.DateLayout))
	}
}

func TestKeyIgnoresIdentityAndTime(t *testing.T) {
	a := records.New("a.jpg", day(t, "2024-01-01").Add(8*time.Hour), true, 100000, records.ClassCargo, "")
	b := records.New("b.jpg", day(t, "2024-01-01").Add(17*time.Hour), true, 100000, records.ClassCargo, "x")
	b.Identity = "L4H2"
	if a.Key() != b.Key() {
		t.Fatalf("keys differ: %+v vs %+v", a.Key(), b.Key())
	}
	c := b
	c.Class = records.ClassPersonal
	if c.Key() == a.Key() {
		t.Fatal("class must be part of the key")
	}
}

func TestMergeIntoConcatenatesNotes(t *testing.T) {
	existing := records.New("a.jpg", day(t, "2024-01-01"), false, 1, records.ClassCargo, "first")
	existing.Identity = "L3H2"
	incoming := records.New("b.jpg", day(t, "2024-01-01"), false, 1, records.ClassCargo, "second")

	records.MergeInto(&existing, incoming)
	if existing.Notes != "first\nsecond" {
		t.Fatalf("notes = %q", existing.Notes)
	}
	if existing.Identity != "L3H2" || existing.SourceID != "a.jpg" {
		t.Fatalf("merge changed other fields: %+v", existing)
	}

	records.MergeInto(&existing, records.New("c.jpg", day(t, "2024-01-01"), false, 1, records.ClassCargo, ""))
	if existing.Notes != "first\nsecond" {
		t.Fatalf("empty incoming note changed notes: %q", existing.Notes)
	}
}

func TestValidate(t *testing.T) {
	r := records.New("a.jpg", day(t, "2024-01-01"), false, 100, records.ClassCargo, "")
	if err := r.Validate(); err != nil {
		t.Fatalf("valid record rejected: %v", err)
	}
	r.Mileage = -1
	err := r.Validate()
	if err == nil || !strings.Contains(err.Error(), "Mileage must be >= 0") {
		t.Fatalf("expected mileage error, got %v", err)
	}
	r = records.Record{Mileage: 5, Class: records.ClassCargo, Identity: records.IdentityUnknown}
	if err := r.Validate(); err == nil || !strings.Contains(err.Error(), "ObservedAt is required") {
		t.Fatalf("expected ObservedAt error, got %v", err)
	}
}

func TestSpanAndSort(t *testing.T) {
	items := []records.Record{
		records.New("b", day(t, "2024-03-01"), false, 3, records.ClassCargo, ""),
		records.New("a", day(t, "2024-01-01"), false, 1, records.ClassCargo, ""),
		records.New("c", day(t, "2024-02-01"), false, 2, records.ClassPersonal, ""),
	}
	earliest, latest, ok := records.Span(items)
	if !ok || earliest.Format(records.DateLayout) != "2024-01-01" || latest.Format(records.DateLayout) != "2024-03-01" {
		t.Fatalf("Span = %v %v %v", earliest, latest, ok)
	}
	sorted := records.SortChronological(items)
	if sorted[0].SourceID != "a" || sorted[2].SourceID != "b" || items[0].SourceID != "b" {
		t.Fatalf("unexpected sort result %v", sorted)
	}
	if got := records.FilterClass(items, records.ClassCargo); len(got) != 2 {
		t.Fatalf("FilterClass returned %d", len(got))
	}
	if classes := records.ClassesPresent(items); len(classes) != 2 || classes[0] != records.ClassCargo {
		t.Fatalf("ClassesPresent = %v", classes)
	}
}
