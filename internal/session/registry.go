package session

import (
	"sync"
	"time"

	"complaintdesk/dashboard/internal/apiclient"
	"complaintdesk/dashboard/internal/dashboard"
	"complaintdesk/dashboard/internal/models"
)

// Entry is the server-side half of a session.
type Entry struct {
	Profile    string
	User       models.User
	Client     *apiclient.Client
	Controller *dashboard.Controller
	ExpiresAt  time.Time
}

// Registry maps session IDs to entries.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*Entry
	now     func() time.Time
}

func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]*Entry), now: time.Now}
}

func (r *Registry) Put(id string, e *Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[id] = e
}

// Get returns a live entry. Expired entries are dropped on access.
func (r *Registry) Get(id string) (*Entry, bool) {
	r.mu.RLock()
	e, ok := r.entries[id]
	r.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if !e.ExpiresAt.IsZero() && r.now().After(e.ExpiresAt) {
		r.Delete(id)
		return nil, false
	}
	return e, true
}

func (r *Registry) Delete(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, id)
}

// Sweep drops expired entries and returns how many were removed.
func (r *Registry) Sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	n := 0
	for id, e := range r.entries {
		if !e.ExpiresAt.IsZero() && now.After(e.ExpiresAt) {
			delete(r.entries, id)
			n++
		}
	}
	return n
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
