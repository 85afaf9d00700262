package chat

import "github.com/parley-ai/parley/observability"

// Executor event types emitted during message submission.
const (
	EventSubmitStart    observability.EventType = "chat.submit.start"
	EventTurnComplete   observability.EventType = "chat.turn.complete"
	EventSubmitComplete observability.EventType = "chat.submit.complete"
	EventError          observability.EventType = "chat.error"
)
