package flows

import "github.com/parley-ai/parley/observability"

// Flow event types.
const (
	EventFlowStart    observability.EventType = "flow.start"
	EventFlowComplete observability.EventType = "flow.complete"
	EventFlowError    observability.EventType = "flow.error"
)
