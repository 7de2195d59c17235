package textutil

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Fold returns a caseless form of value suitable for map keys, so that
// "Dostawczy", "DOSTAWCZY" and "dostawczy" compare equal.
func Fold(value string) string {
	return cases.Fold().String(strings.TrimSpace(value))
}

// EqualFold reports whether a and b are equal after Unicode case folding.
func EqualFold(a, b string) bool {
	return Fold(a) == Fold(b)
}

// Title converts a label to title case for display.
func Title(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	return cases.Title(language.Und).String(value)
}
