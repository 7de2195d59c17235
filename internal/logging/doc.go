// Package logging assembles structured slog loggers and formatting helpers used
// across milelog.
//
// It owns the configurable console/JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so engine and server code can
// tag log lines with rebuild run IDs and HTTP request IDs. The package also
// provides a no-op logger for tests and wiring code that cannot fail.
package logging
