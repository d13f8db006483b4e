package web

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"datefilter/internal/view"
)

// session is one browser's view state. mu serialises requests of the
// same browser.
type session struct {
	id       string
	mu       sync.Mutex
	view     *view.View
	lastSeen time.Time
}

// sessionStore keeps sessions in memory and drops idle ones
type sessionStore struct {
	mu       sync.Mutex
	sessions map[string]*session
	idle     time.Duration
	now      func() time.Time
}

func newSessionStore(idle time.Duration) *sessionStore {
	return &sessionStore{
		sessions: make(map[string]*session),
		idle:     idle,
		now:      time.Now,
	}
}

// get returns the live session for id, or nil when unknown or expired.
func (s *sessionStore) get(id string) *session {
	if id == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil
	}
	now := s.now()
	if now.Sub(sess.lastSeen) > s.idle {
		delete(s.sessions, id)
		return nil
	}
	sess.lastSeen = now
	return sess
}

// create starts a session with an empty view
func (s *sessionStore) create() *session {
	sess := &session{
		id:       uuid.NewString(),
		view:     view.New(),
		lastSeen: s.now(),
	}
	s.mu.Lock()
	s.sessions[sess.id] = sess
	s.mu.Unlock()
	return sess
}

// sweep removes sessions idle longer than the timeout and returns how many went
func (s *sessionStore) sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for id, sess := range s.sessions {
		if now.Sub(sess.lastSeen) > s.idle {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

func (s *sessionStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// runSweeper sweeps every interval until ctx is done.
func (s *sessionStore) runSweeper(ctx context.Context, interval time.Duration, onSweep func(int)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.sweep(); n > 0 && onSweep != nil {
				onSweep(n)
			}
		}
	}
}
