//go:build !tesseract

package ocr

import (
	"context"

	"milelog/internal/faults"
)

// Reader stands in for the Tesseract reader in builds without OCR support.
type Reader struct {
	opts Options
}

// Available reports whether this build can run OCR.
func Available() bool { return false }

// NewReader returns a reader whose every call fails with
// faults.ErrUnavailable.
func NewReader(opts Options) (*Reader, error) {
	return &Reader{opts: opts}, nil
}

// ReadMileage implements ingest.MileageReader.
func (r *Reader) ReadMileage(context.Context, string) ([]int64, error) {
	return nil, faults.Wrap(faults.ErrUnavailable, "ocr", "read mileage", "built without tesseract support; rebuild with -tags tesseract", nil)
}

// Close is a no-op.
func (r *Reader) Close() error { return nil }
