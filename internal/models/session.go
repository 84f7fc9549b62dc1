package models

import (
	"time"
)

// Message roles
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one turn in a chat session. Messages are immutable once appended.
type Message struct {
	ID          string    `json:"id"`
	Role        string    `json:"role"`
	Content     string    `json:"content"`
	Confidence  *float64  `json:"confidence,omitempty"`
	Suggestions []string  `json:"suggestions,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// Context is the free-form key-value state carried across a session's turns.
// Merge semantics are shallow: top-level keys overwrite on collision.
type Context map[string]any

// Merge copies the keys of partial into a new Context layered over c.
// Neither receiver nor argument is mutated.
func (c Context) Merge(partial Context) Context {
	merged := make(Context, len(c)+len(partial))
	for k, v := range c {
		merged[k] = v
	}
	for k, v := range partial {
		merged[k] = v
	}
	return merged
}

// Clone returns a shallow copy of the context
func (c Context) Clone() Context {
	if c == nil {
		return Context{}
	}
	clone := make(Context, len(c))
	for k, v := range c {
		clone[k] = v
	}
	return clone
}

// Session represents one chat conversation. It is owned by the session store;
// handlers only ever see copies.
type Session struct {
	ID         string    `json:"session_id"`
	CreatedAt  time.Time `json:"created_at"`
	LastActive time.Time `json:"last_active"`
	Messages   []Message `json:"messages"`
	Context    Context   `json:"context"`
}

// Clone returns a copy of the session whose message slice and context are
// detached from the original.
func (s *Session) Clone() *Session {
	clone := &Session{
		ID:         s.ID,
		CreatedAt:  s.CreatedAt,
		LastActive: s.LastActive,
		Messages:   make([]Message, len(s.Messages)),
		Context:    s.Context.Clone(),
	}
	copy(clone.Messages, s.Messages)
	return clone
}

// LastMessages returns up to n most recent messages in order
func (s *Session) LastMessages(n int) []Message {
	if n <= 0 || len(s.Messages) == 0 {
		return nil
	}
	if len(s.Messages) <= n {
		out := make([]Message, len(s.Messages))
		copy(out, s.Messages)
		return out
	}
	out := make([]Message, n)
	copy(out, s.Messages[len(s.Messages)-n:])
	return out
}
