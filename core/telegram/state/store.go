package state

import "sync"

// Store is a concurrency-safe in-memory map of user sessions.
// Sessions are never persisted and are lost on restart.
type Store[T any] struct {
	mu       sync.RWMutex
	sessions map[int64]*Session[T]
	lanes    *Lanes
}

// NewStore constructs an empty Store with its own lanes.
func NewStore[T any]() *Store[T] {
	return &Store[T]{
		sessions: make(map[int64]*Session[T]),
		lanes:    NewLanes(),
	}
}

// Lanes returns the per-user lanes that guard read-modify-write of a session.
func (s *Store[T]) Lanes() *Lanes {
	return s.lanes
}

// Get returns a copy of the user's session, or an idle one if none exists.
func (s *Store[T]) Get(userID int64) Session[T] {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if sess, ok := s.sessions[userID]; ok {
		return *sess
	}
	return Session[T]{State: StateIdle}
}

// Update applies fn to the user's session, creating it when missing, and returns the result.
func (s *Store[T]) Update(userID int64, fn func(*Session[T])) Session[T] {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[userID]
	if !ok {
		sess = &Session[T]{State: StateIdle}
		s.sessions[userID] = sess
	}
	fn(sess)
	return *sess
}

// GetState returns the user's current state, or StateIdle.
func (s *Store[T]) GetState(userID int64) State {
	return s.Get(userID).State
}

// InProgress reports whether the user is in any state other than idle.
func (s *Store[T]) InProgress(userID int64) bool {
	return s.Get(userID).InProgress()
}

// Clear removes the user's session entirely.
func (s *Store[T]) Clear(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, userID)
}

// Stats returns the number of tracked sessions and how many of them are in progress.
func (s *Store[T]) Stats() (tracked, inProgress int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, sess := range s.sessions {
		if sess.InProgress() {
			inProgress++
		}
	}
	return len(s.sessions), inProgress
}
