package logging

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldRunID identifies one rebuild run.
	FieldRunID = "run_id"
	// FieldRequestID identifies one HTTP request.
	FieldRequestID = "request_id"
	// FieldEventType classifies warnings and errors for filtering.
	FieldEventType = "event_type"
	// FieldErrorHint tells the operator what to do next.
	FieldErrorHint = "error_hint"
	// FieldImpact is the standardized key for user-facing consequence of a warning.
	FieldImpact = "impact"
	// FieldAlert flags warnings or anomalies that should stand out in structured logs.
	FieldAlert = "alert"

	FieldStorePath = "store_path"
	FieldBackend   = "backend"
	FieldSourceID  = "source_id"
	FieldClass     = "class"
	FieldIdentity  = "identity"
	FieldMileage   = "mileage"
	FieldRecords   = "records"
)
