package faults_test

import (
	"errors"
	"strings"
	"testing"

	"milelog/internal/faults"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("disk full")
	err := faults.Wrap(faults.ErrWrite, "recordstore", "save", "replace store", base)
	if !errors.Is(err, faults.ErrWrite) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"recordstore", "save", "replace store", "disk full"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapDefaultsMarker(t *testing.T) {
	err := faults.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, faults.ErrUnavailable) {
		t.Fatalf("expected default marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "engine failure") {
		t.Fatalf("expected default detail, got %q", err.Error())
	}
}

func TestDegraded(t *testing.T) {
	cases := []struct {
		err  error
		want bool
	}{
		{faults.Insufficient("trend", 1, 2), true},
		{faults.Wrap(faults.ErrDataMissing, "ingest", "ocr", "no reading", nil), true},
		{faults.Wrap(faults.ErrUnavailable, "ocr", "", "", nil), true},
		{faults.Wrap(faults.ErrWrite, "recordstore", "save", "", errors.New("io")), false},
		{errors.New("plain"), false},
	}
	for _, tc := range cases {
		if got := faults.Degraded(tc.err); got != tc.want {
			t.Fatalf("Degraded(%v) = %v, want %v", tc.err, got, tc.want)
		}
	}
}

func TestDiagnosticStripsMarker(t *testing.T) {
	err := faults.Insufficient("predict", 0, 1)
	got := faults.Diagnostic(err)
	if got != "not enough data: predict: have 0, need 1" {
		t.Fatalf("unexpected diagnostic %q", got)
	}
	if faults.Diagnostic(nil) != "" {
		t.Fatal("expected empty diagnostic for nil error")
	}
}
