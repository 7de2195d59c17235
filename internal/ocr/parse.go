// Package ocr reads odometer digits from photos.
//
// Recognition uses Tesseract through gosseract and is compiled only with the
// "tesseract" build tag, since it links against libtesseract. Without the tag
// NewReader returns a reader that reports faults.ErrUnavailable.
package ocr

import (
	"fmt"
	"regexp"
	"strconv"
)

// DigitWhitelist restricts recognition to odometer characters.
const DigitWhitelist = "0123456789"

// DefaultDigits is the odometer width.
const DefaultDigits = 6

// Options configures a Reader.
type Options struct {
	Language string
	// Digits is the exact length of a mileage candidate.
	Digits int
}

func (o Options) digits() int {
	if o.Digits <= 0 {
		return DefaultDigits
	}
	return o.Digits
}

func (o Options) language() string {
	if o.Language == "" {
		return "eng"
	}
	return o.Language
}

// ExtractCandidates returns the distinct standalone runs of exactly digits
// digits in text, in order of first appearance.
func ExtractCandidates(text string, digits int) []int64 {
	if digits <= 0 {
		digits = DefaultDigits
	}
	pattern := regexp.MustCompile(fmt.Sprintf(`\b\d{%d}\b`, digits))
	var out []int64
	seen := make(map[int64]struct{})
	for _, match := range pattern.FindAllString(text, -1) {
		v, err := strconv.ParseInt(match, 10, 64)
		if err != nil {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
