package conversion

import (
	"errors"
	"sync"
	"time"

	"github.com/amirasaad/fxconverter/pkg/notify"
	"github.com/google/uuid"
)

// ErrSessionNotFound is returned for unknown, deleted or expired session ids.
var ErrSessionNotFound = errors.New("conversion session not found")

// minSweepInterval bounds how often idle sessions are looked for.
const minSweepInterval = time.Second

// Factory builds a session whose notices are delivered to n.
type Factory func(n notify.Notifier, opts ...Option) *Session

// Entry is a stored session with the notices it has raised but nobody has
// read yet.
type Entry struct {
	ID        uuid.UUID
	Session   *Session
	Notices   *notify.Recorder
	CreatedAt time.Time

	lastSeen time.Time
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithIdleTTL expires sessions not looked up for ttl. Zero keeps sessions
// until they are deleted.
func WithIdleTTL(ttl time.Duration) StoreOption {
	return func(s *Store) { s.idleTTL = ttl }
}

// WithStoreClock overrides the time source used for idle tracking.
func WithStoreClock(now func() time.Time) StoreOption {
	return func(s *Store) { s.now = now }
}

// Store keeps independent sessions by id. With an idle TTL a sweeper
// goroutine runs until Close.
type Store struct {
	mu      sync.RWMutex
	entries map[uuid.UUID]*Entry
	factory Factory
	idleTTL time.Duration
	now     func() time.Time

	stop     chan struct{}
	stopOnce sync.Once
}

// NewStore creates an empty store that builds sessions with factory.
func NewStore(factory Factory, opts ...StoreOption) *Store {
	s := &Store{
		entries: make(map[uuid.UUID]*Entry),
		factory: factory,
		now:     time.Now,
		stop:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.idleTTL > 0 {
		go s.cleanup(max(s.idleTTL/4, minSweepInterval))
	}
	return s
}

// Create builds and stores a new session.
func (s *Store) Create(opts ...Option) *Entry {
	rec := notify.NewRecorder()
	now := s.now().UTC()
	e := &Entry{
		ID:        uuid.New(),
		Session:   s.factory(rec, opts...),
		Notices:   rec,
		CreatedAt: now,
		lastSeen:  now,
	}
	s.mu.Lock()
	s.entries[e.ID] = e
	s.mu.Unlock()
	return e
}

// Get returns the session stored under id and marks it as used.
func (s *Store) Get(id uuid.UUID) (*Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[id]
	if !ok || s.expiredLocked(e, s.now()) {
		return nil, ErrSessionNotFound
	}
	e.lastSeen = s.now().UTC()
	return e, nil
}

// Delete removes the session and cancels its resolution in flight.
func (s *Store) Delete(id uuid.UUID) error {
	s.mu.Lock()
	e, ok := s.entries[id]
	delete(s.entries, id)
	s.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}
	e.Session.Close()
	return nil
}

// Len reports the number of stored sessions, expired or not.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Close stops the sweeper and closes every stored session. It is safe to
// call more than once.
func (s *Store) Close() error {
	s.stopOnce.Do(func() { close(s.stop) })
	s.mu.Lock()
	entries := s.entries
	s.entries = make(map[uuid.UUID]*Entry)
	s.mu.Unlock()
	for _, e := range entries {
		e.Session.Close()
	}
	return nil
}

func (s *Store) cleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

// sweep removes idle sessions and reports how many it removed.
func (s *Store) sweep() int {
	now := s.now()
	var expired []*Entry
	s.mu.Lock()
	for id, e := range s.entries {
		if s.expiredLocked(e, now) {
			expired = append(expired, e)
			delete(s.entries, id)
		}
	}
	s.mu.Unlock()
	for _, e := range expired {
		e.Session.Close()
	}
	return len(expired)
}

func (s *Store) expiredLocked(e *Entry, now time.Time) bool {
	return s.idleTTL > 0 && !now.Before(e.lastSeen.Add(s.idleTTL))
}
