package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pizzabot/pizzabot/internal/observability"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrTooManySessions = errors.New("too many active sessions")
)

type entry struct {
	orchestrator *Orchestrator
	lastSeen     time.Time
}

// Registry keeps the web chat sessions in memory. Sessions idle for longer
// than the TTL are dropped by Sweep.
type Registry struct {
	factory     func() *Orchestrator
	ttl         time.Duration
	maxSessions int
	now         func() time.Time

	mu       sync.Mutex
	sessions map[string]*entry
}

func NewRegistry(factory func() *Orchestrator, ttl time.Duration, maxSessions int) *Registry {
	return &Registry{
		factory:     factory,
		ttl:         ttl,
		maxSessions: maxSessions,
		now:         time.Now,
		sessions:    map[string]*entry{},
	}
}

func (r *Registry) Create() (string, *Orchestrator, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.maxSessions > 0 && len(r.sessions) >= r.maxSessions {
		r.sweepLocked()
		if len(r.sessions) >= r.maxSessions {
			return "", nil, ErrTooManySessions
		}
	}

	id := uuid.NewString()
	orchestrator := r.factory()
	r.sessions[id] = &entry{orchestrator: orchestrator, lastSeen: r.now()}
	observability.SetActiveSessions(len(r.sessions))
	return id, orchestrator, nil
}

func (r *Registry) Get(id string) (*Orchestrator, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.sessions[id]
	if !ok || r.expired(item) {
		if ok {
			delete(r.sessions, id)
			observability.SetActiveSessions(len(r.sessions))
		}
		return nil, ErrSessionNotFound
	}
	item.lastSeen = r.now()
	return item.orchestrator, nil
}

func (r *Registry) Delete(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[id]; !ok {
		return false
	}
	delete(r.sessions, id)
	observability.SetActiveSessions(len(r.sessions))
	return true
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

func (r *Registry) Sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sweepLocked()
}

// Run sweeps expired sessions every interval until ctx is done.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Sweep()
		}
	}
}

func (r *Registry) sweepLocked() int {
	removed := 0
	for id, item := range r.sessions {
		if r.expired(item) {
			delete(r.sessions, id)
			removed++
		}
	}
	if removed > 0 {
		observability.SetActiveSessions(len(r.sessions))
	}
	return removed
}

func (r *Registry) expired(item *entry) bool {
	return r.ttl > 0 && r.now().Sub(item.lastSeen) > r.ttl
}
