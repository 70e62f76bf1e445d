package session

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"crisis-assist/internal/location"
)

// ErrBusy is returned by Submit while an earlier query is still pending.
var ErrBusy = errors.New("a query is already pending")

// Generator produces the assistant reply for one query.
type Generator interface {
	Generate(ctx context.Context, query string, loc *location.Location) (string, error)
}

// Session is one user's chat: the transcript plus the pending task.
type Session struct {
	ID         string
	Transcript *Transcript

	gen    Generator
	loc    *location.Location
	logger *zap.Logger

	mu      sync.Mutex
	pending *Task
}

func New(id string, gen Generator, loc *location.Location, logger *zap.Logger) *Session {
	return &Session{
		ID:         id,
		Transcript: &Transcript{},
		gen:        gen,
		loc:        loc,
		logger:     logger.Named("session").With(zap.String("session", id)),
	}
}

// Submit records query as a user message and starts answering it in the
// background. The reply, or an empty failed entry, is appended when the
// task ends.
func (s *Session) Submit(ctx context.Context, query string) (*Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending != nil {
		return nil, ErrBusy
	}

	s.Transcript.Append(ChatMessage{Role: RoleUser, Content: query})

	task := startTask(ctx, query, func(ctx context.Context) (string, error) {
		return s.gen.Generate(ctx, query, s.loc)
	}, s.finish)
	s.pending = task
	s.logger.Info("query submitted", zap.String("task", task.ID))
	return task, nil
}

func (s *Session) finish(t *Task) {
	result, err := t.Result()
	msg := ChatMessage{Role: RoleAssistant, Content: result}
	if t.Status() == StatusFailed {
		msg.Failed = true
		s.logger.Warn("query failed", zap.String("task", t.ID), zap.Error(err))
	} else {
		s.logger.Info("query answered", zap.String("task", t.ID), zap.Duration("elapsed", t.Elapsed()))
	}

	s.mu.Lock()
	s.Transcript.Append(msg)
	if s.pending == t {
		s.pending = nil
	}
	s.mu.Unlock()
}

// Pending returns the in-flight task, or nil.
func (s *Session) Pending() *Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}

// Location is the coordinates answers are generated for; nil if unresolved.
func (s *Session) Location() *location.Location { return s.loc }
