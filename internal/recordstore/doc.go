// Package recordstore persists the mileage record log.
//
// A Store wraps a Backend (a JSON file or a SQLite database) and serializes
// every read-modify-write cycle with an advisory file lock, so concurrent CLI
// invocations and the HTTP server never lose each other's writes. Appending
// a record whose (date, mileage, class) key already exists merges its notes
// into the stored record instead of adding a duplicate; identity and class of
// the stored record are never touched by a merge.
//
// Missing or unreadable storage loads as an empty log with a logged warning.
// Write failures are returned wrapped in faults.ErrWrite and leave the
// previous contents in place.
package recordstore
