// Package protocol defines the conversation types shared across parley
// subsystems.
package protocol

// Role identifies the sender of a conversation turn.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleSystem, RoleUser, RoleAssistant:
		return true
	}
	return false
}

// Turn is one exchange unit within a session history: a role marker and
// text content. History order is significant and append-only; a committed
// turn is never edited or removed.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// NewTurn creates a Turn with the given role and content.
//
// Example:
//
//	t := protocol.NewTurn(protocol.RoleUser, "Hello, world!")
func NewTurn(role Role, content string) Turn {
	return Turn{Role: role, Content: content}
}
