// pkg/memcache/session_locks.go
package mem

import (
	"sync"
)

// SessionLocks serializes conversational turns per session. A rapid
// double-submit for the same session must queue, not interleave; different
// sessions never block each other.
type SessionLocks struct {
	mu    sync.Mutex
	locks map[string]*sessionLock
}

type sessionLock struct {
	mu   sync.Mutex
	refs int
}

func NewSessionLocks() *SessionLocks {
	return &SessionLocks{
		locks: make(map[string]*sessionLock),
	}
}

// Acquire blocks until the session's lock is held and returns the release
// function. The entry is dropped once the last holder releases it.
func (s *SessionLocks) Acquire(sessionID string) func() {
	s.mu.Lock()
	l, ok := s.locks[sessionID]
	if !ok {
		l = &sessionLock{}
		s.locks[sessionID] = l
	}
	l.refs++
	s.mu.Unlock()

	l.mu.Lock()

	return func() {
		l.mu.Unlock()
		s.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(s.locks, sessionID)
		}
		s.mu.Unlock()
	}
}
