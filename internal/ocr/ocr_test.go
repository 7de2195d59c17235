package ocr_test

import (
	"context"
	"errors"
	"slices"
	"testing"

	"milelog/internal/faults"
	"milelog/internal/ocr"
)

func TestExtractCandidates(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		digits int
		want   []int64
	}{
		{name: "single", text: "ODO 123456 km", digits: 6, want: []int64{123456}},
		{name: "leading zeros", text: "012345", digits: 6, want: []int64{12345}},
		{name: "ignores longer runs", text: "1234567 654321", digits: 6, want: []int64{654321}},
		{name: "ignores shorter runs", text: "12345 99", digits: 6, want: nil},
		{name: "multiple distinct", text: "111111\n222222\n111111", digits: 6, want: []int64{111111, 222222}},
		{name: "custom width", text: "trip 0421 total 98765", digits: 5, want: []int64{98765}},
		{name: "default width", text: "000042", digits: 0, want: []int64{42}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ocr.ExtractCandidates(tt.text, tt.digits)
			if !slices.Equal(got, tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestReaderWithoutTesseractIsUnavailable(t *testing.T) {
	if ocr.Available() {
		t.Skip("built with tesseract")
	}
	r, err := ocr.NewReader(ocr.Options{})
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	if _, err := r.ReadMileage(context.Background(), "x.jpg"); !errors.Is(err, faults.ErrUnavailable) {
		t.Fatalf("expected unavailable, got %v", err)
	}
}
