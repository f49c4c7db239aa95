package session

import (
	"sync"

	"github.com/google/uuid"
)

// Registry keeps independent sessions apart, one per API client
type Registry struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{sessions: make(map[uuid.UUID]*Session)}
}

// Create starts and registers a new session
func (r *Registry) Create() *Session {
	s := New()

	r.mu.Lock()
	r.sessions[s.ID] = s
	r.mu.Unlock()

	return s
}

// Get looks a session up by its string ID
func (r *Registry) Get(id string) (*Session, error) {
	key, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrNotFound
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[key]
	if !ok {
		return nil, ErrNotFound
	}
	return s, nil
}

// Delete removes a session
func (r *Registry) Delete(id string) error {
	key, err := uuid.Parse(id)
	if err != nil {
		return ErrNotFound
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[key]; !ok {
		return ErrNotFound
	}
	delete(r.sessions, key)
	return nil
}
