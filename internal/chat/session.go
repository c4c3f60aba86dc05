package chat

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Session store limits used when no option overrides them.
const (
	DefaultSessionTTL  = 30 * time.Minute
	DefaultMaxSessions = 1000
)

// Session is one in-memory conversation. Turns on a session are serialized.
type Session struct {
	ID           string
	CreatedAt    time.Time
	Conversation *Conversation

	turn     sync.Mutex
	lastUsed time.Time // guarded by the store's mu
}

// SessionStore keeps chat sessions in process memory. Sessions idle for
// longer than the TTL are dropped, and once the store is full the least
// recently used session makes room for a new one.
type SessionStore struct {
	mu           sync.Mutex
	sessions     map[string]*Session
	systemPrompt string
	ttl          time.Duration
	maxSessions  int
	now          func() time.Time
}

type StoreOption func(*SessionStore)

// WithSessionTTL sets the idle lifetime; 0 disables expiry.
func WithSessionTTL(ttl time.Duration) StoreOption {
	return func(s *SessionStore) { s.ttl = ttl }
}

// WithMaxSessions caps the number of live sessions; 0 disables the cap.
func WithMaxSessions(n int) StoreOption {
	return func(s *SessionStore) { s.maxSessions = n }
}

// WithStoreClock overrides time.Now.
func WithStoreClock(now func() time.Time) StoreOption {
	return func(s *SessionStore) { s.now = now }
}

func NewSessionStore(systemPrompt string, opts ...StoreOption) *SessionStore {
	s := &SessionStore{
		sessions:     make(map[string]*Session),
		systemPrompt: systemPrompt,
		ttl:          DefaultSessionTTL,
		maxSessions:  DefaultMaxSessions,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *SessionStore) Create() *Session {
	now := s.now()
	sess := &Session{
		ID:           uuid.NewString(),
		CreatedAt:    now.UTC(),
		Conversation: NewConversation(s.systemPrompt),
		lastUsed:     now,
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pruneLocked(now)
	if s.maxSessions > 0 && len(s.sessions) >= s.maxSessions {
		s.evictOldestLocked()
	}
	s.sessions[sess.ID] = sess
	return sess
}

// Get returns a live session and marks it used.
func (s *SessionStore) Get(id string) (*Session, error) {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	if s.expired(sess, now) {
		delete(s.sessions, id)
		return nil, ErrSessionNotFound
	}
	sess.lastUsed = now
	return sess, nil
}

// Resolve returns the named session, or a new one when id is empty. created
// reports which happened.
func (s *SessionStore) Resolve(id string) (sess *Session, created bool, err error) {
	if id == "" {
		return s.Create(), true, nil
	}
	sess, err = s.Get(id)
	return sess, false, err
}

// Reset clears a session's conversation, optionally keeping the system prompt.
func (s *SessionStore) Reset(id string, keepSystem bool) error {
	sess, err := s.Get(id)
	if err != nil {
		return err
	}
	sess.turn.Lock()
	defer sess.turn.Unlock()
	sess.Conversation.Reset(keepSystem)
	return nil
}

func (s *SessionStore) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Prune drops expired sessions and returns how many were removed.
func (s *SessionStore) Prune() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pruneLocked(s.now())
}

// RunJanitor prunes every interval until ctx is done.
func (s *SessionStore) RunJanitor(ctx context.Context, interval time.Duration) {
	if s.ttl <= 0 || interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Prune()
		}
	}
}

func (s *SessionStore) expired(sess *Session, now time.Time) bool {
	return s.ttl > 0 && now.Sub(sess.lastUsed) > s.ttl
}

func (s *SessionStore) pruneLocked(now time.Time) int {
	var removed int
	for id, sess := range s.sessions {
		if s.expired(sess, now) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

func (s *SessionStore) evictOldestLocked() {
	var oldest *Session
	for _, sess := range s.sessions {
		if oldest == nil || sess.lastUsed.Before(oldest.lastUsed) {
			oldest = sess
		}
	}
	if oldest != nil {
		delete(s.sessions, oldest.ID)
	}
}

// Send runs one turn on the session, waiting for any turn already in flight.
func (o *Orchestrator) Send(ctx context.Context, sess *Session, text string, sink EventSink) (*Reply, error) {
	sess.turn.Lock()
	defer sess.turn.Unlock()
	return o.Handle(ctx, sess.Conversation, text, sink)
}
