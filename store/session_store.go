package store

import (
	"context"
	"sync"

	apperrors "github.com/yashrajoria/storefront/errors"
	"github.com/yashrajoria/storefront/models"
)

// SessionState is the two-state auth machine driving the navigator.
type SessionState string

const (
	LoggedOut SessionState = "LoggedOut"
	LoggedIn  SessionState = "LoggedIn"
)

// Authenticator exchanges credentials for a session.
type Authenticator interface {
	Login(ctx context.Context, creds models.Credentials) (*models.Session, error)
}

// SessionStore holds the signed-in session, if any.
type SessionStore struct {
	// notifyMu is held across a transition and its delivery so listeners
	// see transitions in the order they happened.
	notifyMu  sync.Mutex
	mu        sync.RWMutex
	auth      Authenticator
	session   *models.Session
	listeners map[int]func(SessionState, *models.Session)
	nextID    int
}

func NewSessionStore(auth Authenticator) *SessionStore {
	return &SessionStore{
		auth:      auth,
		listeners: make(map[int]func(SessionState, *models.Session)),
	}
}

// Login signs in through the Authenticator. On failure the store is left
// untouched and the error is returned.
func (s *SessionStore) Login(ctx context.Context, creds models.Credentials) (*models.Session, error) {
	if s.State() == LoggedIn {
		return nil, apperrors.ErrAlreadySignedIn
	}

	session, err := s.auth.Login(ctx, creds)
	if err != nil {
		return nil, err
	}
	if session == nil || session.Token == "" {
		return nil, apperrors.Unauthorized("Sign in returned no session")
	}

	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	if s.session != nil {
		s.mu.Unlock()
		return nil, apperrors.ErrAlreadySignedIn
	}
	cp := *session
	s.session = &cp
	listeners := s.listenerList()
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(LoggedIn, &cp)
	}
	return &cp, nil
}

// Logout clears the session. It is a no-op when already logged out.
// Listeners must not call Login or Logout.
func (s *SessionStore) Logout() {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	if s.session == nil {
		s.mu.Unlock()
		return
	}
	s.session = nil
	listeners := s.listenerList()
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(LoggedOut, nil)
	}
}

func (s *SessionStore) Current() (models.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session == nil {
		return models.Session{}, false
	}
	return *s.session, true
}

func (s *SessionStore) User() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session == nil {
		return nil
	}
	u := s.session.User
	return &u
}

func (s *SessionStore) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session == nil {
		return ""
	}
	return s.session.Token
}

func (s *SessionStore) State() SessionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session == nil {
		return LoggedOut
	}
	return LoggedIn
}

// Subscribe registers fn for login/logout transitions.
func (s *SessionStore) Subscribe(fn func(SessionState, *models.Session)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

func (s *SessionStore) listenerList() []func(SessionState, *models.Session) {
	out := make([]func(SessionState, *models.Session), 0, len(s.listeners))
	for _, fn := range s.listeners {
		out = append(out, fn)
	}
	return out
}
