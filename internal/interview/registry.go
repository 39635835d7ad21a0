package interview

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/yoockh/careercoach/internal/utils"
)

// Factory builds the collaborators and environment for a new session.
type Factory func(id, userID string, opts Options) *Orchestrator

// Registry keeps the live sessions of this process, each owned by one user.
type Registry struct {
	factory Factory
	now     func() time.Time

	mu       sync.RWMutex
	sessions map[string]*entry
}

type entry struct {
	o       *Orchestrator
	owner   string
	touched time.Time
}

func NewRegistry(f Factory) *Registry {
	return &Registry{factory: f, now: time.Now, sessions: map[string]*entry{}}
}

func (r *Registry) Create(userID string, opts Options) (*Orchestrator, error) {
	const op = "Registry.Create"
	if userID == "" {
		return nil, utils.E(utils.CodeUnauthorized, op, "missing user", nil)
	}

	id := uuid.NewString()
	o := r.factory(id, userID, opts)

	r.mu.Lock()
	r.sessions[id] = &entry{o: o, owner: userID, touched: r.now()}
	r.mu.Unlock()
	return o, nil
}

// Get returns the session if userID owns it.
func (r *Registry) Get(id, userID string) (*Orchestrator, error) {
	const op = "Registry.Get"

	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.sessions[id]
	if !ok {
		return nil, utils.E(utils.CodeNotFound, op, "interview session not found", nil)
	}
	if e.owner != userID {
		return nil, utils.E(utils.CodeForbidden, op, "interview session belongs to another user", nil)
	}
	e.touched = r.now()
	return e.o, nil
}

// Remove resets the session, so late gateway results are dropped, and forgets it.
func (r *Registry) Remove(id, userID string) error {
	o, err := r.Get(id, userID)
	if err != nil {
		return err
	}
	o.Reset()

	r.mu.Lock()
	delete(r.sessions, id)
	r.mu.Unlock()
	return nil
}

// Sweep removes sessions untouched for longer than maxIdle and returns how many.
func (r *Registry) Sweep(maxIdle time.Duration) int {
	cutoff := r.now().Add(-maxIdle)

	r.mu.Lock()
	var stale []*Orchestrator
	for id, e := range r.sessions {
		if e.touched.Before(cutoff) {
			stale = append(stale, e.o)
			delete(r.sessions, id)
		}
	}
	r.mu.Unlock()

	for _, o := range stale {
		o.Reset()
	}
	return len(stale)
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
