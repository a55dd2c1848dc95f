package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// MemoryStore is the default session store. State is JSON-encoded so that
// the same flow structs round-trip identically through Redis.
type MemoryStore struct {
	mu     sync.RWMutex
	states map[string][]byte
}

// NewMemoryStore creates an in-memory session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{states: make(map[string][]byte)}
}

func sessionKey(userID int64, flow string) string {
	return fmt.Sprintf("flow:%s:%d", flow, userID)
}

// Get decodes the stored state for (user, flow).
func (s *MemoryStore) Get(ctx context.Context, userID int64, flow string, dest interface{}) (bool, error) {
	s.mu.RLock()
	raw, ok := s.states[sessionKey(userID, flow)]
	s.mu.RUnlock()
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, err
	}
	return true, nil
}

// Set stores the state for (user, flow).
func (s *MemoryStore) Set(ctx context.Context, userID int64, flow string, state interface{}) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.states[sessionKey(userID, flow)] = raw
	s.mu.Unlock()
	return nil
}

// Clear discards the state for (user, flow).
func (s *MemoryStore) Clear(ctx context.Context, userID int64, flow string) error {
	s.mu.Lock()
	delete(s.states, sessionKey(userID, flow))
	s.mu.Unlock()
	return nil
}
