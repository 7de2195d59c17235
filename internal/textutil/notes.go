package textutil

import "strings"

// JoinNotes concatenates two note fields with a newline when both are
// non-empty. When only one is non-empty it is returned unchanged.
func JoinNotes(existing, incoming string) string {
	switch {
	case existing != "" && incoming != "":
		return existing + "\n" + incoming
	case incoming != "":
		return incoming
	default:
		return existing
	}
}

// NormalizeNotes converts CRLF line endings and trims trailing whitespace so
// notes entered on different platforms merge cleanly.
func NormalizeNotes(value string) string {
	value = strings.ReplaceAll(value, "\r\n", "\n")
	return strings.TrimRight(value, " \t\n")
}
