// Package engine is the single entry point the CLI and the HTTP server use
// for record and analysis operations.
//
// Engine owns a record store and the fleet registry. Read-only analyses load
// a snapshot of the store; mutations (append, identity confirmation, rebuild,
// ingest) go through the store's locked read-modify-write cycle so that
// concurrent processes serialize instead of losing writes.
package engine
