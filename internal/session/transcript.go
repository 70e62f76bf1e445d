// Package session holds the per-browser chat state: an append-only transcript
// and at most one pending query.
package session

import (
	"sync"
	"time"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ChatMessage is one transcript entry. Entries are never edited once appended.
type ChatMessage struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	// Failed marks an assistant entry whose generation produced nothing.
	Failed bool `json:"failed,omitempty"`
}

// Transcript is the ordered chat history of one session.
type Transcript struct {
	mu       sync.RWMutex
	messages []ChatMessage
}

func (t *Transcript) Append(m ChatMessage) {
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}
	t.mu.Lock()
	t.messages = append(t.messages, m)
	t.mu.Unlock()
}

// Messages returns a copy of the history in insertion order.
func (t *Transcript) Messages() []ChatMessage {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]ChatMessage, len(t.messages))
	copy(out, t.messages)
	return out
}

func (t *Transcript) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.messages)
}
