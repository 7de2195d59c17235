// Package records defines the mileage record model shared by every engine
// component.
//
// A Record is one odometer reading: when it was taken, the mileage shown, the
// coarse vehicle class, the resolved vehicle identity (or "unknown"), and free
// text notes. Records are identified by (date, mileage, class); identity is
// never part of the key because it is derived data that rebuilds overwrite.
//
// The package also owns the stable JSON wire format used by the JSON store
// backend and the HTTP API, class and identity parsing with legacy aliases,
// struct validation, and the proleptic Gregorian day ordinal the trend and
// prediction code use as their time axis.
package records
