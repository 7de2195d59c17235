package ingest

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"time"

	"milelog/internal/records"
)

// TimestampReader recovers when a source was captured.
type TimestampReader interface {
	ReadTimestamp(source string) (time.Time, error)
}

// MileageReader returns every mileage candidate found in a source.
type MileageReader interface {
	ReadMileage(ctx context.Context, source string) ([]int64, error)
}

// ClassClassifier assigns a vehicle class to a source.
type ClassClassifier interface {
	ClassifyVehicle(ctx context.Context, source string) (records.Class, error)
}

// FilenameLayout is the capture stamp cameras put in photo names.
const FilenameLayout = "20060102_150405"

var filenameStamp = regexp.MustCompile(`\d{8}_\d{6}`)

// FilenameTimestamps reads YYYYMMDD_HHMMSS from the base name of a source.
type FilenameTimestamps struct{}

// ReadTimestamp implements TimestampReader.
func (FilenameTimestamps) ReadTimestamp(source string) (time.Time, error) {
	base := filepath.Base(source)
	match := filenameStamp.FindString(base)
	if match == "" {
		return time.Time{}, fmt.Errorf("no capture timestamp in %q", base)
	}
	t, err := time.ParseInLocation(FilenameLayout, match, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("capture timestamp in %q: %w", base, err)
	}
	return t, nil
}

// StaticClassifier gives every source the same class.
type StaticClassifier struct {
	Class records.Class
}

// ClassifyVehicle implements ClassClassifier.
func (s StaticClassifier) ClassifyVehicle(context.Context, string) (records.Class, error) {
	if !s.Class.Known() {
		return records.ClassUnknown, nil
	}
	return s.Class, nil
}

// MileageFunc adapts a function to MileageReader.
type MileageFunc func(ctx context.Context, source string) ([]int64, error)

// ReadMileage implements MileageReader.
func (f MileageFunc) ReadMileage(ctx context.Context, source string) ([]int64, error) {
	return f(ctx, source)
}
