// Package ingest turns odometer photos into mileage records.
//
// The pipeline asks three collaborators about each source: a
// TimestampReader for when the photo was taken, a MileageReader for the
// odometer digits, and a ClassClassifier for the vehicle category. Only
// readings with exactly one mileage candidate become records; unreadable and
// ambiguous sources are reported back to the caller and never stored.
package ingest
