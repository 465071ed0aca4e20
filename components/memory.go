package components

import (
	"sync"

	"github.com/bububa/newsagent/schema"
)

// Memory manages the ordered message history for one conversation.
// threadsafe
type Memory struct {
	// history is a list of messages representing the conversation history.
	history []Message
	// turnID is the ID of the current turn.
	turnID string
	// maxMessages is the maximum number of messages to keep in history.
	// When exceeded, oldest messages are removed first.
	maxMessages int
	// mtx sync lock
	mtx *sync.RWMutex
}

// NewMemory initializes the Memory with an empty history and optional constraints.
func NewMemory(maxMessages int) *Memory {
	return &Memory{
		maxMessages: maxMessages,
		history:     make([]Message, 0, maxMessages+1),
		mtx:         new(sync.RWMutex),
	}
}

// MaxMessages returns the max number of messages
func (m Memory) MaxMessages() int {
	return m.maxMessages
}

// TurnID returns the current turn ID
func (m Memory) TurnID() string {
	return m.turnID
}

// NewTurn initializes a new turn by generating a random turn ID.
func (m *Memory) NewTurn() *Memory {
	m.turnID = NewTurnID()
	return m
}

// NewMessage appends a message to the conversation history and manages overflow.
func (m *Memory) NewMessage(role MessageRole, content schema.Schema) *Message {
	msg := NewMessage(role, content).SetTurnID(m.turnID)
	m.mtx.Lock()
	m.history = append(m.history, *msg)
	if l := len(m.history); m.maxMessages > 0 && l > m.maxMessages {
		m.history = m.history[1:]
	}
	m.mtx.Unlock()
	return msg
}

// History retrieves a copy of the conversation history in insertion order.
func (m *Memory) History() []Message {
	m.mtx.RLock()
	defer m.mtx.RUnlock()
	list := make([]Message, len(m.history))
	copy(list, m.history)
	return list
}

// LastMessage returns the most recently appended message, if any.
func (m *Memory) LastMessage() (*Message, bool) {
	m.mtx.RLock()
	defer m.mtx.RUnlock()
	if len(m.history) == 0 {
		return nil, false
	}
	msg := m.history[len(m.history)-1]
	return &msg, true
}

// MessageCount returns the number of messages in the conversation history.
func (m *Memory) MessageCount() int {
	m.mtx.RLock()
	defer m.mtx.RUnlock()
	return len(m.history)
}

// Reset clears the conversation history.
func (m *Memory) Reset() *Memory {
	m.mtx.Lock()
	m.history = make([]Message, 0, m.maxMessages)
	m.turnID = ""
	m.mtx.Unlock()
	return m
}
