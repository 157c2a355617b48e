package session

import (
	"context"
	"sync"

	"vipbot/internal/domain"
)

// Store keeps at most one conversation state per chat id.
// Get returns nil when the chat has no active flow.
type Store interface {
	Get(ctx context.Context, chatID int64) (domain.State, error)
	Set(ctx context.Context, chatID int64, st domain.State) error
	Delete(ctx context.Context, chatID int64) error
}

// Memory is an in-process Store; states are lost on restart
type Memory struct {
	mu     sync.RWMutex
	states map[int64]domain.State
}

// NewMemory creates an empty in-memory store
func NewMemory() *Memory {
	return &Memory{states: make(map[int64]domain.State)}
}

// Get returns the state of a chat
func (m *Memory) Get(_ context.Context, chatID int64) (domain.State, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.states[chatID], nil
}

// Set replaces the state of a chat
func (m *Memory) Set(_ context.Context, chatID int64, st domain.State) error {
	if st == nil {
		return m.Delete(context.Background(), chatID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states[chatID] = st
	return nil
}

// Delete removes the state of a chat
func (m *Memory) Delete(_ context.Context, chatID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.states, chatID)
	return nil
}

// Len returns the number of chats with an active flow
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.states)
}
