package session

import (
	"sync"

	"github.com/google/uuid"
)

// Registry maps shop+device to its live session. Sessions are created lazily
// on first touch and live until dropped; there is no TTL because the state is
// small and a device count per shop is low single digits.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*Session)}
}

func key(shopID uuid.UUID, device string) string {
	return shopID.String() + "/" + device
}

// Get returns the session for the device, creating it when absent.
func (r *Registry) Get(shopID uuid.UUID, device string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := key(shopID, device)
	s, ok := r.sessions[k]
	if !ok {
		s = New(shopID, device)
		r.sessions[k] = s
	}
	return s
}

func (r *Registry) Drop(shopID uuid.UUID, device string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, key(shopID, device))
}
