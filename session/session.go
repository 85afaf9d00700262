// Package session manages durable conversational state for parley. A
// Session is the unit of persistence: an ordered turn history plus the
// system instructions and generation configuration recorded at creation
// time, addressed by an opaque id.
package session

import (
	"slices"

	"github.com/parley-ai/parley/core/protocol"
)

// DefaultInstructions is applied when a caller omits system instructions.
const DefaultInstructions = "You are friendly and helpful."

// Session is a durable conversation record. The id never changes after
// creation. History is append-only; committed turns are never edited or
// removed. Mutations are persisted only by writing the whole record back
// through a Store.
type Session struct {
	ID           string           `json:"id"`
	Instructions string           `json:"instructions,omitempty"`
	Config       GenerationConfig `json:"config"`
	History      []protocol.Turn  `json:"history"`
}

// Append adds turns to the end of the history.
func (s *Session) Append(turns ...protocol.Turn) {
	s.History = append(s.History, turns...)
}

// Clone returns a deep copy of the session. Stores hand out clones so a
// caller mutating its in-memory handle cannot alter another caller's view.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	clone := *s
	clone.History = slices.Clone(s.History)
	clone.Config.StopSequences = slices.Clone(s.Config.StopSequences)
	return &clone
}
