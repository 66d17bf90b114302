package tracing

// Span attribute keys for validation tracing.
const (
	AttrRunID        = "run.id"
	AttrSpecID       = "spec.identifier"
	AttrRecordCount  = "run.records"
	AttrFailedCount  = "run.failed"
	AttrConcurrency  = "run.concurrency"
	AttrRecordLoc    = "record.location"
	AttrErrorMessage = "error.message"
)

// Span names.
const (
	SpanValidateBatch = "validate.batch"
	SpanHistorySave   = "history.save"
)

// Event names for span events.
const (
	EventRecordFailed       = "record.failed"
	EventCrossCheckMismatch = "jsonschema.mismatch"
)
