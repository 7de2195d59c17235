package records

import (
	"fmt"
	"strings"
	"time"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04:05"

	// unixEpochOrdinal is the ordinal of 1970-01-01 when 0001-01-01 is day 1.
	unixEpochOrdinal = 719163
	secondsPerDay    = 86400
)

// DayOrdinal returns the proleptic Gregorian ordinal of t's UTC calendar
// date, with 0001-01-01 as day 1.
func DayOrdinal(t time.Time) int64 {
	return floorDiv(CivilDate(t).Unix(), secondsPerDay) + unixEpochOrdinal
}

// FromOrdinal returns UTC midnight of the given day ordinal.
func FromOrdinal(ordinal int64) time.Time {
	return time.Unix((ordinal-unixEpochOrdinal)*secondsPerDay, 0).UTC()
}

// CivilDate truncates t to midnight UTC of its UTC calendar date.
func CivilDate(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD date as UTC midnight.
func ParseDate(value string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, strings.TrimSpace(value), time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", value, err)
	}
	return t, nil
}

// Combine builds an observation time from a date and an optional HH:MM:SS
// time of day. An empty clock value yields midnight and known=false.
func Combine(date, clock string) (t time.Time, known bool, err error) {
	day, err := ParseDate(date)
	if err != nil {
		return time.Time{}, false, err
	}
	clock = strings.TrimSpace(clock)
	if clock == "" {
		return day, false, nil
	}
	tod, err := time.ParseInLocation(TimeLayout, clock, time.UTC)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("parse time %q: %w", clock, err)
	}
	return day.Add(time.Duration(tod.Hour())*time.Hour +
		time.Duration(tod.Minute())*time.Minute +
		time.Duration(tod.Second())*time.Second), true, nil
}

// AddMonths moves t by n calendar months, clamping the day to the end of
// the target month so that Jan 31 + 1 month is the last day of February.
func AddMonths(t time.Time, n int) time.Time {
	t = t.UTC()
	year, month, day := t.Date()
	first := time.Date(year, month+time.Month(n), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1).Day()
	if day > last {
		day = last
	}
	return time.Date(first.Year(), first.Month(), day, t.Hour(), t.Minute(), t.Second(), 0, time.UTC)
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
