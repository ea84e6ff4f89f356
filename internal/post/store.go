package post

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nexonhq/nexon-bot/core/metrics"
)

// Store keeps active sessions keyed by user ID. Sessions are ephemeral and
// never persisted; a restart drops them all.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewStore creates an empty session store.
func NewStore() *Store {
	return &Store{sessions: make(map[string]*Session)}
}

// Create opens a session for the user. It returns ErrSessionActive when one
// already exists, leaving the existing session untouched.
func (s *Store) Create(userID, channelID, authorMention string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.sessions[userID]; exists {
		return nil, ErrSessionActive
	}
	sess := &Session{
		UserID:        userID,
		ID:            uuid.New(),
		Step:          StepTopic,
		ChannelID:     channelID,
		AuthorMention: authorMention,
		StartedAt:     time.Now(),
	}
	s.sessions[userID] = sess
	metrics.ActiveSessions.Set(float64(len(s.sessions)))
	return sess, nil
}

// Get returns the user's session if one exists.
func (s *Store) Get(userID string) (*Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[userID]
	return sess, ok
}

// Remove drops the user's session. Removing an absent session is a no-op.
func (s *Store) Remove(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, userID)
	metrics.ActiveSessions.Set(float64(len(s.sessions)))
}

// Claim atomically removes and returns the user's session. Only one caller
// can win the claim, which keeps completion exactly-once when the gateway
// delivers the same reaction twice.
func (s *Store) Claim(userID string) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[userID]
	if !ok {
		return nil, false
	}
	delete(s.sessions, userID)
	metrics.ActiveSessions.Set(float64(len(s.sessions)))
	return sess, true
}

// Len reports the number of open sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
