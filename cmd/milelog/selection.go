package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"milelog/internal/engine"
	"milelog/internal/faults"
	"milelog/internal/records"
)

type selectionFlags struct {
	class   string
	vehicle string
}

func (f *selectionFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.class, "class", "", "Restrict to a vehicle class (personal or cargo)")
	cmd.Flags().StringVar(&f.vehicle, "vehicle", "", "Restrict to one vehicle")
}

func (f selectionFlags) selection() (engine.Selection, error) {
	class, err := parseClassFlag(f.class)
	if err != nil {
		return engine.Selection{}, err
	}
	return engine.Selection{Class: class, Identity: records.ParseIdentity(f.vehicle)}, nil
}

// parseClassFlag accepts an empty value as "no class".
func parseClassFlag(value string) (records.Class, error) {
	if strings.TrimSpace(value) == "" {
		return records.ClassUnknown, nil
	}
	class := records.ParseClass(value)
	if !class.Known() && !strings.EqualFold(strings.TrimSpace(value), string(records.ClassUnknown)) {
		return records.ClassUnknown, faults.Wrap(faults.ErrValidation, "cli", "class", fmt.Sprintf("unrecognized class %q", value), nil)
	}
	return class, nil
}

func parseDateFlag(name, value string, fallback time.Time) (time.Time, error) {
	if strings.TrimSpace(value) == "" {
		return fallback, nil
	}
	t, err := records.ParseDate(value)
	if err != nil {
		return time.Time{}, faults.Wrap(faults.ErrValidation, "cli", name, fmt.Sprintf("expected YYYY-MM-DD, got %q", value), nil)
	}
	return t, nil
}

func parseMileageArg(value string) (int64, error) {
	mileage, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil || mileage < 0 {
		return 0, faults.Wrap(faults.ErrValidation, "cli", "mileage", fmt.Sprintf("expected a non-negative whole number, got %q", value), nil)
	}
	return mileage, nil
}

func formatMileage(value float64) string {
	return strconv.FormatFloat(value, 'f', 0, 64)
}

func formatSigned(value float64) string {
	return strconv.FormatFloat(value, 'f', 1, 64)
}
