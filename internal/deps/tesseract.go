package deps

import (
	"context"

	"milelog/internal/ocr"
)

// CheckOCR reports whether photo ingest can read odometers: the tesseract
// program must be installed and the binary built with the tesseract tag.
// Both are optional; without them records are added by hand.
func CheckOCR(ctx context.Context, command string) []Status {
	statuses := CheckBinaries(ctx, []Requirement{{
		Name:        "Tesseract",
		Command:     command,
		Description: "Reads odometer digits from photos",
		Optional:    true,
		VersionArgs: []string{"--version"},
	}})
	linked := Status{
		Name:        "OCR support",
		Command:     "-tags tesseract",
		Description: "libtesseract linked into this build",
		Optional:    true,
		Available:   ocr.Available(),
	}
	if !linked.Available {
		linked.Detail = "built without tesseract tag"
	}
	return append(statuses, linked)
}
