package faults

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrDataMissing      = errors.New("data missing")
	ErrInsufficientData = errors.New("not enough data")
	ErrMalformedStorage = errors.New("malformed storage")
	ErrWrite            = errors.New("write failure")
	ErrValidation       = errors.New("validation error")
	ErrUnavailable      = errors.New("unavailable")
	ErrLockTimeout      = errors.New("store lock timeout")
)

// Wrap builds an error message that includes component context while tagging
// it with the provided marker. The marker should be one of the exported
// sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrUnavailable
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Insufficient reports that an algorithm needs more input than it received.
func Insufficient(component string, have, need int) error {
	return Wrap(ErrInsufficientData, component, "", fmt.Sprintf("have %d, need %d", have, need), nil)
}

// Degraded reports whether err describes a state the engine recovers from
// locally (missing data, too little data, unavailable collaborator) rather
// than a failure of the operation.
func Degraded(err error) bool {
	return errors.Is(err, ErrDataMissing) ||
		errors.Is(err, ErrInsufficientData) ||
		errors.Is(err, ErrUnavailable)
}

// Diagnostic renders the short message shown to users.
func Diagnostic(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInsufficientData):
		return "not enough data: " + trimMarker(err, ErrInsufficientData)
	case errors.Is(err, ErrDataMissing):
		return "no data available: " + trimMarker(err, ErrDataMissing)
	case errors.Is(err, ErrUnavailable):
		return "unavailable: " + trimMarker(err, ErrUnavailable)
	case errors.Is(err, ErrMalformedStorage):
		return "stored data unreadable, treated as empty: " + trimMarker(err, ErrMalformedStorage)
	case errors.Is(err, ErrWrite):
		return "write failed, previous data kept: " + trimMarker(err, ErrWrite)
	case errors.Is(err, ErrLockTimeout):
		return "store is busy: " + trimMarker(err, ErrLockTimeout)
	case errors.Is(err, ErrValidation):
		return "invalid input: " + trimMarker(err, ErrValidation)
	default:
		return err.Error()
	}
}

func trimMarker(err, marker error) string {
	msg := err.Error()
	prefix := marker.Error() + ": "
	return strings.TrimPrefix(msg, prefix)
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "engine failure"
	}
	return strings.Join(parts, ": ")
}
