package logging

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldWorker identifies the isolation unit that emitted a record.
	FieldWorker = "worker"
	// FieldTask is the task filename within the pending directory.
	FieldTask = "task"
	// FieldEventType is a stable machine-friendly name for the event.
	FieldEventType = "event_type"
	// FieldErrorHint suggests the next step an operator should take.
	FieldErrorHint = "error_hint"
	// FieldImpact is the standardized key for user-facing consequence of a warning.
	FieldImpact = "impact"
)
