package quiz

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrSessionNotFound is returned for unknown, closed or expired session IDs.
var ErrSessionNotFound = errors.New("quiz session not found")

// Meta describes what a session was generated for.
type Meta struct {
	GradeID   int       `json:"gradeId"`
	ExamID    string    `json:"examId"`
	Topic     string    `json:"topic"`
	CreatedAt time.Time `json:"createdAt"`
}

type entry struct {
	mu       sync.Mutex
	session  *Session
	meta     Meta
	lastUsed time.Time
}

// Registry holds live quiz sessions in memory, keyed by a random UUID.
// Sessions idle for longer than the TTL are dropped the next time the
// registry is touched.
type Registry struct {
	entries map[string]*entry
	ttl     time.Duration
	now     func() time.Time
	mu      sync.Mutex
}

// NewRegistry creates a registry. A ttl of zero keeps sessions until closed.
func NewRegistry(ttl time.Duration) *Registry {
	return &Registry{
		entries: make(map[string]*entry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Create stores a session and returns its ID.
func (r *Registry) Create(s *Session, meta Meta) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sweepLocked()

	now := r.now()
	if meta.CreatedAt.IsZero() {
		meta.CreatedAt = now
	}
	id := uuid.NewString()
	r.entries[id] = &entry{session: s, meta: meta, lastUsed: now}
	return id
}

// Do runs fn with exclusive access to the session. Errors from fn are
// returned unchanged.
func (r *Registry) Do(id string, fn func(*Session, Meta) error) error {
	e, err := r.lookup(id)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return fn(e.session, e.meta)
}

// Get returns a snapshot of the session.
func (r *Registry) Get(id string) (View, error) {
	var v View
	err := r.Do(id, func(s *Session, _ Meta) error {
		v = s.View()
		return nil
	})
	return v, err
}

// Close discards the session and its quiz.
func (r *Registry) Close(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.entries[id]; !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	delete(r.entries, id)
	return nil
}

// Len returns the number of live sessions. Expired sessions are dropped first.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sweepLocked()
	return len(r.entries)
}

func (r *Registry) lookup(id string) (*entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sweepLocked()

	e, ok := r.entries[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	e.lastUsed = r.now()
	return e, nil
}

func (r *Registry) sweepLocked() {
	if r.ttl <= 0 {
		return
	}
	cutoff := r.now().Add(-r.ttl)
	for id, e := range r.entries {
		if e.lastUsed.Before(cutoff) {
			delete(r.entries, id)
			slog.Debug("quiz session expired", "session_id", id, "topic", e.meta.Topic)
		}
	}
}
