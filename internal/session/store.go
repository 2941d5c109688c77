// Package session provides an in-memory session store keyed by opaque ids.
// Session values are a loosely typed mapping of string keys to JSON-like values;
// typed access to the values gpx cares about lives in package auth.
package session

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrSessionNotFound indicates no session exists for the given id.
	ErrSessionNotFound = errors.New("session not found")
	// ErrInvalidCookie indicates a cookie value that is malformed or has a bad signature.
	ErrInvalidCookie = errors.New("invalid session cookie")
)

// Session is the server-side state behind one session cookie.
// It is safe for concurrent use by requests sharing the cookie.
type Session struct {
	id string
	// lastSeen is guarded by the owning Store's mutex.
	lastSeen time.Time

	mu     sync.RWMutex
	values map[string]any
}

// ID returns the opaque session id.
func (s *Session) ID() string {
	return s.id
}

// Get returns the value stored under key.
func (s *Session) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok
}

// Set stores value under key.
func (s *Session) Set(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
}

// Delete removes key from the session.
func (s *Session) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
}

// Clear removes every value, keeping the id.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values = make(map[string]any)
}

// DefaultIdleTimeout is how long an unused session is kept.
const DefaultIdleTimeout = 7 * 24 * time.Hour

// Store manages the sessions of the running process.
// Nothing is persisted: a restart logs every user out.
type Store struct {
	secret      []byte
	idleTimeout time.Duration
	now         func() time.Time

	mu       sync.RWMutex
	sessions map[string]*Session // id -> Session
}

// Option configures a Store.
type Option func(*Store)

// WithIdleTimeout sets how long a session may go unused before it expires.
// Zero keeps sessions until they are deleted.
func WithIdleTimeout(d time.Duration) Option {
	return func(st *Store) {
		st.idleTimeout = d
	}
}

// WithClock sets the time source used for expiry.
func WithClock(now func() time.Time) Option {
	return func(st *Store) {
		st.now = now
	}
}

// New creates an empty Store whose cookies are signed with secret.
func New(secret string, opts ...Option) *Store {
	st := &Store{
		secret:      []byte(secret),
		idleTimeout: DefaultIdleTimeout,
		now:         time.Now,
		sessions:    make(map[string]*Session),
	}
	for _, opt := range opts {
		opt(st)
	}
	return st
}

// NewSession returns a fresh session with a random id. It is not tracked
// by the store until Save is called.
func (st *Store) NewSession() *Session {
	return &Session{
		id:     uuid.NewString(),
		values: make(map[string]any),
	}
}

// Save starts tracking sess.
func (st *Store) Save(sess *Session) {
	st.mu.Lock()
	defer st.mu.Unlock()
	sess.lastSeen = st.now()
	st.sessions[sess.id] = sess
}

// Get retrieves a session by id and marks it as used. It returns
// ErrSessionNotFound if there is none or it has been idle too long.
func (st *Store) Get(id string) (*Session, error) {
	st.mu.Lock()
	defer st.mu.Unlock()
	sess, exists := st.sessions[id]
	if !exists {
		return nil, ErrSessionNotFound
	}
	now := st.now()
	if st.expired(sess, now) {
		delete(st.sessions, id)
		return nil, ErrSessionNotFound
	}
	sess.lastSeen = now
	return sess, nil
}

// Sweep drops every idle session and returns how many were removed.
func (st *Store) Sweep() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	now := st.now()
	removed := 0
	for id, sess := range st.sessions {
		if st.expired(sess, now) {
			delete(st.sessions, id)
			removed++
		}
	}
	return removed
}

func (st *Store) expired(sess *Session, now time.Time) bool {
	return st.idleTimeout > 0 && now.Sub(sess.lastSeen) > st.idleTimeout
}

// Delete stops tracking the session with the given id.
func (st *Store) Delete(id string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	delete(st.sessions, id)
}

// Len returns the number of tracked sessions.
func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

// Encode returns the signed cookie value for a session id.
func (st *Store) Encode(id string) string {
	return id + "." + st.sign(id)
}

// Decode verifies a cookie value and returns the session id it carries.
func (st *Store) Decode(value string) (string, error) {
	id, sig, ok := strings.Cut(value, ".")
	if !ok || id == "" {
		return "", ErrInvalidCookie
	}
	if !hmac.Equal([]byte(sig), []byte(st.sign(id))) {
		return "", ErrInvalidCookie
	}
	return id, nil
}

// Lookup decodes a cookie value and retrieves its session.
func (st *Store) Lookup(value string) (*Session, error) {
	id, err := st.Decode(value)
	if err != nil {
		return nil, err
	}
	return st.Get(id)
}

func (st *Store) sign(id string) string {
	mac := hmac.New(sha256.New, st.secret)
	mac.Write([]byte(id))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
