package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Session is the server-side state for one authenticated client.
type Session struct {
	Token         string
	Authenticated bool
	IssuedAt      time.Time
}

// Store keeps sessions in memory, keyed by an opaque token the client
// presents in a cookie. Sessions expire after the configured TTL; expired
// entries are dropped lazily so no background sweeper is needed.
type Store struct {
	mu       sync.Mutex
	ttl      time.Duration
	sessions map[string]*Session
	now      func() time.Time
}

// NewStore creates a session store whose sessions live for ttl.
func NewStore(ttl time.Duration) *Store {
	return &Store{
		ttl:      ttl,
		sessions: make(map[string]*Session),
		now:      time.Now,
	}
}

// Create issues a new authenticated session and returns it. Expired
// sessions are swept here to keep the map bounded.
func (s *Store) Create() *Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for token, sess := range s.sessions {
		if now.Sub(sess.IssuedAt) > s.ttl {
			delete(s.sessions, token)
		}
	}

	sess := &Session{
		Token:         uuid.New().String(),
		Authenticated: true,
		IssuedAt:      now,
	}
	s.sessions[sess.Token] = sess

	return sess
}

// Get looks up a session by token. Expired sessions are removed and
// reported as absent.
func (s *Store) Get(token string) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[token]

	if !ok {
		return nil, false
	}

	if s.now().Sub(sess.IssuedAt) > s.ttl {
		delete(s.sessions, token)
		return nil, false
	}

	return sess, true
}

// Destroy removes the session for the given token, if any.
func (s *Store) Destroy(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, token)
}
