// Package api defines wire-format types and converters for the HTTP API and
// the CLI's JSON output. It translates engine results into transport-friendly
// DTOs so consumers do not couple to internal types.
//
// # Key Types
//
// Record: one odometer reading with date, optional time, class and identity.
//
// TrendResponse, ExtrapolationResponse, PredictionResponse: analysis results.
//
// RebuildResponse: per-class outcome of an identity rebuild.
//
// AppendRecordRequest: validated input for storing a reading.
//
// # Design Notes
//
// DTOs use camelCase JSON tags. Dates are YYYY-MM-DD and times HH:MM:SS, the
// same layouts the record log uses on disk. Classes and identities are
// exposed as lowercase class names and registry vehicle names.
package api
