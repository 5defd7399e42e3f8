package app

import "sync"

// Sessions tracks in-progress dialogues keyed by user id. There is no
// cross-user sharing: at most one dialogue per user, and starting a new one
// simply overwrites any stale session. The reminder path and the handler
// path may both start dialogues, hence the mutex.
type Sessions struct {
	mu     sync.Mutex
	active map[int64]*Dialog
}

// NewSessions creates an empty session registry.
func NewSessions() *Sessions {
	return &Sessions{active: make(map[int64]*Dialog)}
}

// Put stores the dialogue for its user, replacing any previous one.
func (s *Sessions) Put(d *Dialog) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active[d.UserID] = d
}

// Get returns the user's in-progress dialogue, if any.
func (s *Sessions) Get(userID int64) (*Dialog, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.active[userID]
	return d, ok
}

// End discards the user's dialogue context entirely.
func (s *Sessions) End(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.active, userID)
}
