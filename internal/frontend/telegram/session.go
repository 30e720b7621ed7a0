package telegram

import (
	"sync"

	"github.com/viewport-app/viewport/internal/browse"
)

// session is one user's browsing state: the listing "/more" continues.
type session struct {
	mu    sync.Mutex
	title string
	pager *browse.Pager
}

// sessionManager manages per-user sessions and access control.
type sessionManager struct {
	mu       sync.Mutex
	sessions map[int64]*session
	allowed  map[int64]bool // nil or empty = allow all
}

// newSessionManager creates a session manager.
// If allowedUserIDs is empty, all users are allowed.
func newSessionManager(allowedUserIDs []int64) *sessionManager {
	allowed := make(map[int64]bool, len(allowedUserIDs))
	for _, id := range allowedUserIDs {
		allowed[id] = true
	}
	return &sessionManager{
		sessions: make(map[int64]*session),
		allowed:  allowed,
	}
}

// isAllowed checks if a user is authorized to use the bot.
func (sm *sessionManager) isAllowed(userID int64) bool {
	if len(sm.allowed) == 0 {
		return true
	}
	return sm.allowed[userID]
}

// get returns the user's session, creating an empty one on first use.
func (sm *sessionManager) get(userID int64) *session {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	s, ok := sm.sessions[userID]
	if !ok {
		s = &session{}
		sm.sessions[userID] = s
	}
	return s
}

// reset clears a user's session.
func (sm *sessionManager) reset(userID int64) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	delete(sm.sessions, userID)
}
