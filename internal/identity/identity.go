// Package identity is the boundary to the external identity collaborator.
// It answers one question for the rest of the application: who, if anyone,
// is signed in.
package identity

import (
	"sync"

	"github.com/roach88/storefront/internal/model"
)

// Provider supplies the current user. Loaded is closed once the provider
// has finished resolving its initial session; until then CurrentUser may
// report no user even though one will appear.
type Provider interface {
	CurrentUser() (model.User, bool)
	Loaded() <-chan struct{}
}

// Session is an in-process Provider whose user is set by the caller.
type Session struct {
	mu       sync.RWMutex
	user     model.User
	signedIn bool

	loaded   chan struct{}
	markOnce sync.Once
}

var _ Provider = (*Session)(nil)

// NewSession returns a session that is not yet loaded and has no user.
func NewSession() *Session {
	return &Session{loaded: make(chan struct{})}
}

// SignedIn returns a loaded session for u.
func SignedIn(u model.User) *Session {
	s := NewSession()
	s.SignIn(u)
	s.MarkLoaded()
	return s
}

// Anonymous returns a loaded session with no user.
func Anonymous() *Session {
	s := NewSession()
	s.MarkLoaded()
	return s
}

func (s *Session) CurrentUser() (model.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user, s.signedIn
}

func (s *Session) Loaded() <-chan struct{} {
	return s.loaded
}

// SignIn makes u the current user.
func (s *Session) SignIn(u model.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = u
	s.signedIn = true
}

// SignOut clears the current user.
func (s *Session) SignOut() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = model.User{}
	s.signedIn = false
}

// MarkLoaded closes Loaded. Safe to call more than once.
func (s *Session) MarkLoaded() {
	s.markOnce.Do(func() { close(s.loaded) })
}

// DisplayName picks the friendliest name available for u.
func DisplayName(u model.User) string {
	switch {
	case u.FirstName != "":
		return u.FirstName
	case u.Name != "":
		return u.Name
	default:
		return u.Email
	}
}
