// Package faults defines the error markers shared by the mileage engine.
//
// Each marker corresponds to one entry of the error taxonomy: missing data,
// insufficient data for an algorithm, malformed storage, write failures,
// validation failures, and unavailable collaborators. Callers tag errors with
// Wrap and classify them with errors.Is; Diagnostic renders the short message
// shown to users when the engine degrades instead of failing.
package faults
