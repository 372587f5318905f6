// Package session provides the in-memory conversation store keyed by call SID.
package session

import (
	"sync"
	"time"

	"github.com/raphaelgruber/voicebridge/internal/models"
)

// Session holds the transcript for one phone call. The first message is
// always the system prompt; everything after it is appended strictly in
// arrival order.
type Session struct {
	CallSID   string
	Messages  []models.Message
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Store is a process-lifetime mapping from call SID to conversation session.
// All methods are safe for concurrent use. There is no expiry: calls whose
// recording-completed event never arrives leave their session behind until
// shutdown. That leak is an accepted limitation of the design.
//
// The mutex serializes individual operations, not whole webhook turns, so a
// true concurrent double-delivery of the same webhook can interleave its
// appends. The provider delivers one event per speech turn, so this is not
// guarded further.
type Store struct {
	mu           sync.RWMutex
	sessions     map[string]*Session
	systemPrompt string
}

// NewStore creates an empty store. Every new session is seeded with a single
// system message carrying the given prompt.
func NewStore(systemPrompt string) *Store {
	return &Store{
		sessions:     make(map[string]*Session),
		systemPrompt: systemPrompt,
	}
}

// GetOrCreate returns the session for callSID, creating and seeding it if
// this is the first time the SID is seen. The second return value reports
// whether a new session was created.
func (s *Store) GetOrCreate(callSID string) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.sessions[callSID]; ok {
		return sess, false
	}

	now := time.Now()
	sess := &Session{
		CallSID: callSID,
		Messages: []models.Message{
			{Role: models.RoleSystem, Content: s.systemPrompt},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.sessions[callSID] = sess
	return sess, true
}

// Append adds a message to an existing session. Unknown call SIDs are
// ignored; given the webhook lifecycle the session always exists by the
// time anything appends to it.
func (s *Store) Append(callSID string, role models.Role, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[callSID]
	if !ok {
		return
	}
	sess.Messages = append(sess.Messages, models.Message{Role: role, Content: content})
	sess.UpdatedAt = time.Now()
}

// Transcript returns a copy of the session's messages, so callers can hand
// the slice to the inference client without racing later appends.
func (s *Store) Transcript(callSID string) ([]models.Message, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[callSID]
	if !ok {
		return nil, false
	}
	msgs := make([]models.Message, len(sess.Messages))
	copy(msgs, sess.Messages)
	return msgs, true
}

// Delete removes a session. It is idempotent: deleting an absent SID is a
// no-op.
func (s *Store) Delete(callSID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, callSID)
}

// Clear drops every session. Called on shutdown.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions = make(map[string]*Session)
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
