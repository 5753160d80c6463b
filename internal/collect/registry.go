package collect

import (
	"sync"

	"tabletalk/internal/models"
)

type sessionKey struct {
	userID         string
	conversationID string
}

// Registry tracks the current collection session per (user,
// conversation) pair. Create-on-start, explicit removal on completion;
// a new Start for a pair replaces whatever session was in flight.
type Registry struct {
	mu       sync.RWMutex
	sessions map[sessionKey]*Session
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[sessionKey]*Session)}
}

func (r *Registry) Start(userID, conversationID string, sc *models.Schema) *Session {
	s := NewSession(userID, conversationID, sc)
	r.mu.Lock()
	r.sessions[sessionKey{userID, conversationID}] = s
	r.mu.Unlock()
	return s
}

func (r *Registry) Lookup(userID, conversationID string) (*Session, bool) {
	r.mu.RLock()
	s, ok := r.sessions[sessionKey{userID, conversationID}]
	r.mu.RUnlock()
	return s, ok
}

func (r *Registry) Remove(userID, conversationID string) {
	r.mu.Lock()
	delete(r.sessions, sessionKey{userID, conversationID})
	r.mu.Unlock()
}
