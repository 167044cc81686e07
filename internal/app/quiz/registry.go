package quiz

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ikigai-wellness/ikigai/internal/domain"
)

// Registry limits.
const (
	DefaultIdleTTL     = 30 * time.Minute
	DefaultMaxSessions = 256
)

// Registry keeps open sessions addressable by id for the HTTP surface.
// Sessions idle longer than the TTL are dropped, and opening past the cap
// evicts the least recently used one.
type Registry struct {
	engine Engine

	mu       sync.Mutex
	sessions map[string]*entry
	idleTTL  time.Duration
	max      int
	now      func() time.Time
}

type entry struct {
	session  *Session
	lastUsed time.Time
}

// NewRegistry creates an empty registry whose sessions drive engine.
func NewRegistry(engine Engine) *Registry {
	return &Registry{
		engine:   engine,
		sessions: make(map[string]*entry),
		idleTTL:  DefaultIdleTTL,
		max:      DefaultMaxSessions,
		now:      time.Now,
	}
}

// SetLimits overrides the idle TTL and the session cap. Zero keeps the current value.
func (r *Registry) SetLimits(idleTTL time.Duration, max int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if idleTTL > 0 {
		r.idleTTL = idleTTL
	}
	if max > 0 {
		r.max = max
	}
}

// SetClock replaces the time source (tests).
func (r *Registry) SetClock(now func() time.Time) {
	r.mu.Lock()
	r.now = now
	r.mu.Unlock()
}

// Open starts a session for module and returns its id.
func (r *Registry) Open(module domain.Module) (string, *Session) {
	s := Open(r.engine, module)
	id := uuid.New().String()

	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	r.sweepLocked(now)
	for len(r.sessions) >= r.max {
		r.evictOldestLocked()
	}
	r.sessions[id] = &entry{session: s, lastUsed: now}
	return id, s
}

// Get looks up an open session and marks it used.
func (r *Registry) Get(id string) (*Session, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrSessionNotFound
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	now := r.now()
	if now.Sub(e.lastUsed) > r.idleTTL {
		delete(r.sessions, id)
		return nil, domain.ErrSessionNotFound
	}
	e.lastUsed = now
	return e.session, nil
}

// Close forgets a session. Returns false if it was not open.
func (r *Registry) Close(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[id]; !ok {
		return false
	}
	delete(r.sessions, id)
	return true
}

// Sweep drops every session idle past the TTL and returns how many went.
func (r *Registry) Sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sweepLocked(r.now())
}

// Len is the number of open sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

func (r *Registry) sweepLocked(now time.Time) int {
	n := 0
	for id, e := range r.sessions {
		if now.Sub(e.lastUsed) > r.idleTTL {
			delete(r.sessions, id)
			n++
		}
	}
	return n
}

func (r *Registry) evictOldestLocked() {
	var oldest string
	var at time.Time
	for id, e := range r.sessions {
		if oldest == "" || e.lastUsed.Before(at) {
			oldest, at = id, e.lastUsed
		}
	}
	delete(r.sessions, oldest)
}
