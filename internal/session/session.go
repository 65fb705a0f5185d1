// Package session is the conversation-state store shared by both delivery
// adapters. Keys are opaque: a web session key or a LINE user ID. The
// in-memory implementation lives for the process; swapping in a persistent
// backend only means implementing Store.
package session

import (
	"sync"

	"lumie/internal/llm"
)

// State is the router's per-conversation flag.
type State int

const (
	Idle State = iota
	AwaitingMealDescription
)

// Store holds conversation history and router state per key.
type Store interface {
	AppendUser(key, content string)
	AppendAssistant(key, content string)
	// Recent returns up to n of the latest turns, oldest first.
	Recent(key string, n int) []llm.Message
	State(key string) State
	SetState(key string, s State)
	Reset(key string)
}

type conversation struct {
	turns []llm.Message
	state State
}

type MemoryStore struct {
	mu    sync.RWMutex
	convs map[string]*conversation
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{convs: make(map[string]*conversation)}
}

func (m *MemoryStore) AppendUser(key, content string) {
	m.append(key, llm.Message{Role: "user", Content: content})
}

func (m *MemoryStore) AppendAssistant(key, content string) {
	m.append(key, llm.Message{Role: "assistant", Content: content})
}

func (m *MemoryStore) append(key string, msg llm.Message) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := m.convs[key]
	if c == nil {
		c = &conversation{}
		m.convs[key] = c
	}
	c.turns = append(c.turns, msg)
}

func (m *MemoryStore) Recent(key string, n int) []llm.Message {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c := m.convs[key]
	if c == nil {
		return nil
	}
	turns := c.turns
	if n > 0 && len(turns) > n {
		turns = turns[len(turns)-n:]
	}
	out := make([]llm.Message, len(turns))
	copy(out, turns)
	return out
}

func (m *MemoryStore) State(key string) State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if c := m.convs[key]; c != nil {
		return c.state
	}
	return Idle
}

func (m *MemoryStore) SetState(key string, s State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := m.convs[key]
	if c == nil {
		c = &conversation{}
		m.convs[key] = c
	}
	c.state = s
}

func (m *MemoryStore) Reset(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.convs, key)
}
