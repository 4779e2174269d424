// Package session provides the in-memory conversation store. Sessions hold
// a bounded history of user/assistant turns, expire after a configurable
// idle period, and are swept by a background goroutine. Nothing is persisted
// across process restarts by design.
package session

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/jsamuelsen11/recipe-web-app/chat-service/internal/models"
)

// Session is a bounded, server-held conversation history keyed by an
// opaque identifier. Instances are owned exclusively by the Store.
type Session struct {
	// ID is the opaque session identifier.
	ID string
	// Messages is the ordered turn sequence, oldest first.
	Messages []models.Message
	// CreatedAt is when the session was first seen.
	CreatedAt time.Time
	// LastActivity is refreshed on every successful exchange and is
	// monotonically non-decreasing.
	LastActivity time.Time
}

// Store is an in-memory mapping from session id to conversation state.
// It is safe for concurrent use; each operation holds the store lock for
// its full read-modify-write sequence. Two concurrent exchanges on the
// same session may still interleave at the conversation level; turn
// ordering between racing requests is not serialized.
type Store struct {
	maxTurns int
	maxIdle  time.Duration
	logger   *logrus.Logger

	mu       sync.RWMutex
	sessions map[string]*Session

	sweepTicker *time.Ticker
	stopSweep   chan struct{}
	stopOnce    sync.Once
}

// NewStore creates an empty session store. Histories are truncated to
// maxTurns messages (oldest first, in user/assistant pairs) and sessions
// idle longer than maxIdle are removed by the sweep.
func NewStore(maxTurns int, maxIdle time.Duration, logger *logrus.Logger) *Store {
	return &Store{
		maxTurns: maxTurns,
		maxIdle:  maxIdle,
		logger:   logger,
		sessions: make(map[string]*Session),
	}
}

// GetOrCreate returns a copy of the session's current state, creating and
// registering an empty session when the id is unknown. The returned
// history slice is detached from the store and safe to read without locks.
func (s *Store) GetOrCreate(id string) Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		now := time.Now()
		sess = &Session{
			ID:           id,
			Messages:     []models.Message{},
			CreatedAt:    now,
			LastActivity: now,
		}
		s.sessions[id] = sess
		s.logger.WithField("session_id", id).Debug("Session created")
	}

	return s.snapshot(sess)
}

// History returns a detached copy of the session's turn sequence, oldest
// first. Returns nil when the session does not exist.
func (s *Store) History(id string) []models.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil
	}
	return append([]models.Message(nil), sess.Messages...)
}

// AppendExchange appends a user turn and its assistant reply to the
// session, refreshes last-activity to now, and truncates the history to
// the most recent maxTurns messages. Truncation drops oldest turns first
// and never splits a user/assistant pair. Unknown session ids are a no-op.
func (s *Store) AppendExchange(id, userText, assistantText string, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return
	}

	sess.Messages = append(sess.Messages,
		models.Message{Role: models.RoleUser, Content: userText},
		models.Message{Role: models.RoleAssistant, Content: assistantText},
	)

	if excess := len(sess.Messages) - s.maxTurns; excess > 0 {
		// Exchanges are appended in pairs, so the excess is always even
		// and slicing keeps pairs intact.
		sess.Messages = sess.Messages[excess:]
	}

	if now.After(sess.LastActivity) {
		sess.LastActivity = now
	}
}

// Delete removes the session if present and reports whether it existed.
func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return false
	}
	delete(s.sessions, id)
	s.logger.WithField("session_id", id).Info("Session cleared")
	return true
}

// SweepExpired removes every session idle longer than the configured
// maximum relative to now and returns the number removed.
func (s *Store) SweepExpired(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, sess := range s.sessions {
		if now.Sub(sess.LastActivity) > s.maxIdle {
			delete(s.sessions, id)
			removed++
		}
	}

	if removed > 0 {
		s.logger.WithField("expired_sessions", removed).Info("Cleaned up expired sessions")
	}
	return removed
}

// Count returns the number of live sessions.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// StartSweeper launches a background goroutine that runs SweepExpired
// at the given interval until Close is called.
func (s *Store) StartSweeper(interval time.Duration) {
	s.sweepTicker = time.NewTicker(interval)
	s.stopSweep = make(chan struct{})

	go func() {
		defer s.sweepTicker.Stop()
		for {
			select {
			case <-s.sweepTicker.C:
				s.SweepExpired(time.Now())
			case <-s.stopSweep:
				return
			}
		}
	}()

	s.logger.WithField("interval", interval.String()).Info("Session sweeper started")
}

// Close stops the background sweeper. Safe to call multiple times and
// when the sweeper was never started.
func (s *Store) Close() error {
	s.stopOnce.Do(func() {
		if s.stopSweep != nil {
			close(s.stopSweep)
		}
	})
	return nil
}

// snapshot copies a session for return outside the lock.
func (s *Store) snapshot(sess *Session) Session {
	return Session{
		ID:           sess.ID,
		Messages:     append([]models.Message(nil), sess.Messages...),
		CreatedAt:    sess.CreatedAt,
		LastActivity: sess.LastActivity,
	}
}
