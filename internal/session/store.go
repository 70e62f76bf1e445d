package session

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"crisis-assist/internal/location"
)

// Store keeps every session in memory, keyed by the browser's session id.
type Store struct {
	gen    Generator
	loc    *location.Location
	logger *zap.Logger

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewStore(gen Generator, loc *location.Location, logger *zap.Logger) *Store {
	return &Store{
		gen:      gen,
		loc:      loc,
		logger:   logger,
		sessions: make(map[string]*Session),
	}
}

// Get returns the session for id, creating it under a fresh id when id is
// empty or unknown. The returned session's ID is the one to hand back.
func (s *Store) Get(id string) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[id]; ok {
		return sess
	}
	if _, err := uuid.Parse(id); err != nil {
		id = uuid.NewString()
	}
	sess := New(id, s.gen, s.loc, s.logger)
	s.sessions[id] = sess
	return sess
}

// Lookup returns the session for id without creating one.
func (s *Store) Lookup(id string) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	return sess, ok
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// CancelAll stops every pending task and waits for them to finish or for ctx
// to expire.
func (s *Store) CancelAll(ctx context.Context) error {
	s.mu.Lock()
	var tasks []*Task
	for _, sess := range s.sessions {
		if t := sess.Pending(); t != nil {
			tasks = append(tasks, t)
		}
	}
	s.mu.Unlock()

	for _, t := range tasks {
		t.Cancel()
	}
	for _, t := range tasks {
		select {
		case <-t.Done():
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}
