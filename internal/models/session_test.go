package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSessionStateMachine(t *testing.T) {
	now := time.Now()
	s := NewSession("sid", now, time.Hour)
	assert.Equal(t, StateAnonymous, s.State)
	assert.False(t, s.Authenticated())

	s.BeginLogin("state-123")
	assert.Equal(t, StateAuthenticating, s.State)
	assert.Equal(t, "state-123", s.OAuthState)

	s.Complete(&Identity{ID: "42", Login: "octocat"})
	assert.True(t, s.Authenticated())
	assert.Empty(t, s.OAuthState)

	s.Reset()
	assert.Equal(t, StateAnonymous, s.State)
	assert.Nil(t, s.User)
}

func TestSessionExpired(t *testing.T) {
	now := time.Now()
	s := NewSession("sid", now, time.Minute)

	assert.False(t, s.Expired(now))
	assert.True(t, s.Expired(now.Add(2*time.Minute)))

	var nilSession *Session
	assert.False(t, nilSession.Authenticated())
}
