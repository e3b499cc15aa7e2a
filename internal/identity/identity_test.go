package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/storefront/internal/model"
)

func isClosed(ch <-chan struct{}) bool {
	select {
	case <-ch:
		return true
	default:
		return false
	}
}

func TestSession_Lifecycle(t *testing.T) {
	s := NewSession()
	assert.False(t, isClosed(s.Loaded()))

	_, ok := s.CurrentUser()
	assert.False(t, ok)

	u := model.User{ID: "u1", Email: "jo@example.com"}
	s.SignIn(u)
	s.MarkLoaded()
	s.MarkLoaded()

	assert.True(t, isClosed(s.Loaded()))
	got, ok := s.CurrentUser()
	assert.True(t, ok)
	assert.Equal(t, u, got)

	s.SignOut()
	_, ok = s.CurrentUser()
	assert.False(t, ok)
}

func TestConstructors(t *testing.T) {
	s := SignedIn(model.User{ID: "u1"})
	assert.True(t, isClosed(s.Loaded()))
	_, ok := s.CurrentUser()
	assert.True(t, ok)

	a := Anonymous()
	assert.True(t, isClosed(a.Loaded()))
	_, ok = a.CurrentUser()
	assert.False(t, ok)
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Jo", DisplayName(model.User{FirstName: "Jo", Name: "Jo Park", Email: "jo@example.com"}))
	assert.Equal(t, "Jo Park", DisplayName(model.User{Name: "Jo Park", Email: "jo@example.com"}))
	assert.Equal(t, "jo@example.com", DisplayName(model.User{Email: "jo@example.com"}))
}
