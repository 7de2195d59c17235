package records

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"milelog/internal/textutil"
)

// Record is one odometer reading.
type Record struct {
	// SourceID names the image or input the reading came from.
	SourceID   string    `validate:"max=1024"`
	ObservedAt time.Time `validate:"required"`
	// TimeKnown is false when only the date of ObservedAt is meaningful.
	TimeKnown bool
	Mileage   int64    `validate:"gte=0"`
	Class     Class    `validate:"oneof=personal cargo unknown"`
	Identity  Identity `validate:"required"`
	Notes     string
}

// Key identifies a record for deduplication.
type Key struct {
	Date    string
	Mileage int64
	Class   Class
}

// New builds a record with an unknown identity.
func New(sourceID string, observedAt time.Time, timeKnown bool, mileage int64, class Class, notes string) Record {
	return Record{
		SourceID:   strings.TrimSpace(sourceID),
		ObservedAt: observedAt.UTC(),
		TimeKnown:  timeKnown,
		Mileage:    mileage,
		Class:      class,
		Identity:   IdentityUnknown,
		Notes:      textutil.NormalizeNotes(notes),
	}
}

// Date returns the record's calendar date as YYYY-MM-DD.
func (r Record) Date() string {
	return r.ObservedAt.UTC().Format(DateLayout)
}

// Clock returns the time of day as HH:MM:SS, or "" when it is not known.
func (r Record) Clock() string {
	if !r.TimeKnown {
		return ""
	}
	return r.ObservedAt.UTC().Format(TimeLayout)
}

// Key returns the deduplication key.
func (r Record) Key() Key {
	return Key{Date: r.Date(), Mileage: r.Mileage, Class: r.Class}
}

// Ordinal returns the day ordinal of the observation date.
func (r Record) Ordinal() int64 {
	return DayOrdinal(r.ObservedAt)
}

// MergeInto folds incoming into existing: notes are concatenated, every
// other field of existing is kept.
func MergeInto(existing *Record, incoming Record) {
	existing.Notes = textutil.JoinNotes(existing.Notes, textutil.NormalizeNotes(incoming.Notes))
}

// FilterClass returns the records of the given class, preserving order.
func FilterClass(items []Record, class Class) []Record {
	out := make([]Record, 0, len(items))
	for _, r := range items {
		if r.Class == class {
			out = append(out, r)
		}
	}
	return out
}

// Resolved returns records with a known identity, preserving order.
func Resolved(items []Record) []Record {
	out := make([]Record, 0, len(items))
	for _, r := range items {
		if r.Identity.Known() {
			out = append(out, r)
		}
	}
	return out
}

// SortChronological returns a copy of items ordered by observation time.
// Records observed at the same instant keep their input order.
func SortChronological(items []Record) []Record {
	out := slices.Clone(items)
	slices.SortStableFunc(out, func(a, b Record) int {
		return a.ObservedAt.Compare(b.ObservedAt)
	})
	return out
}

// Span returns the earliest and latest observation dates. ok is false for
// an empty slice.
func Span(items []Record) (earliest, latest time.Time, ok bool) {
	if len(items) == 0 {
		return time.Time{}, time.Time{}, false
	}
	earliest = items[0].ObservedAt
	latest = earliest
	for _, r := range items[1:] {
		earliest = minTime(earliest, r.ObservedAt)
		latest = maxTime(latest, r.ObservedAt)
	}
	return CivilDate(earliest), CivilDate(latest), true
}

// CountByClass tallies records per class.
func CountByClass(items []Record) map[Class]int {
	counts := make(map[Class]int)
	for _, r := range items {
		counts[r.Class]++
	}
	return counts
}

// ClassesPresent returns the distinct classes in items, sorted.
func ClassesPresent(items []Record) []Class {
	seen := CountByClass(items)
	out := make([]Class, 0, len(seen))
	for class := range seen {
		out = append(out, class)
	}
	slices.SortFunc(out, func(a, b Class) int { return cmp.Compare(a, b) })
	return out
}

func minTime(a, b time.Time) time.Time {
	if b.Before(a) {
		return b
	}
	return a
}

func maxTime(a, b time.Time) time.Time {
	if b.After(a) {
		return b
	}
	return a
}
