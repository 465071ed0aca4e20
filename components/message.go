package components

import (
	"github.com/rs/xid"

	"github.com/bububa/newsagent/schema"
)

// NewTurnID returns a new turn ID.
func NewTurnID() string {
	return xid.New().String()
}

// MessageRole is the role of the message sender (e.g., 'user', 'assistant', 'tool')
type MessageRole = string

const (
	SystemRole    MessageRole = "system"
	UserRole      MessageRole = "user"
	AssistantRole MessageRole = "assistant"
	ToolRole      MessageRole = "tool"
)

// Message represents a single message in a conversation history.
// Insertion order is meaningful; a message created later belongs after every
// message created before it.
type Message struct {
	content schema.Schema
	// role is the role of the message sender (e.g., 'user', 'assistant', 'tool')
	role MessageRole
	// turnID is the unique identifier for the turn this message belongs to.
	turnID string
	// createdAt is the remote creation time in unix seconds when known.
	createdAt int64
}

// NewMessage returns a new Message
func NewMessage(role MessageRole, content schema.Schema) *Message {
	return &Message{
		role:    role,
		content: content,
	}
}

// SetTurnID set message turnID
func (m *Message) SetTurnID(turnID string) *Message {
	m.turnID = turnID
	return m
}

// SetCreatedAt set the remote creation time
func (m *Message) SetCreatedAt(ts int64) *Message {
	m.createdAt = ts
	return m
}

// Role returns message role
func (m Message) Role() MessageRole {
	return m.role
}

// Content returns message content
func (m Message) Content() schema.Schema {
	return m.content
}

// TurnID returns message turnID
func (m Message) TurnID() string {
	return m.turnID
}

// CreatedAt returns the remote creation time in unix seconds
func (m Message) CreatedAt() int64 {
	return m.createdAt
}
