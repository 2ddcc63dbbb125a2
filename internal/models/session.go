package models

import "time"

// AuthState is the position of a session in the login state machine.
type AuthState string

const (
	StateAnonymous      AuthState = "anonymous"
	StateAuthenticating AuthState = "authenticating"
	StateAuthenticated  AuthState = "authenticated"
)

// Identity holds the claims returned by the identity provider.
type Identity struct {
	ID         string `json:"id"`
	Login      string `json:"login"`
	Name       string `json:"name,omitempty"`
	AvatarURL  string `json:"avatarUrl,omitempty"`
	ProfileURL string `json:"profileUrl,omitempty"`
}

// Session is server-held login state, referenced by the session cookie.
type Session struct {
	ID         string    `json:"id"`
	State      AuthState `json:"state"`
	OAuthState string    `json:"oauthState,omitempty"`
	User       *Identity `json:"user,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	ExpiresAt  time.Time `json:"expiresAt"`
}

// NewSession returns an anonymous session valid for ttl.
func NewSession(id string, now time.Time, ttl time.Duration) *Session {
	return &Session{
		ID:        id,
		State:     StateAnonymous,
		CreatedAt: now.UTC(),
		ExpiresAt: now.UTC().Add(ttl),
	}
}

// BeginLogin moves the session to authenticating and remembers the OAuth
// state value that the callback must echo back.
func (s *Session) BeginLogin(oauthState string) {
	s.State = StateAuthenticating
	s.OAuthState = oauthState
	s.User = nil
}

// Complete marks the session authenticated for user.
func (s *Session) Complete(user *Identity) {
	s.State = StateAuthenticated
	s.OAuthState = ""
	s.User = user
}

// Reset drops any login progress and identity.
func (s *Session) Reset() {
	s.State = StateAnonymous
	s.OAuthState = ""
	s.User = nil
}

func (s *Session) Authenticated() bool {
	return s != nil && s.State == StateAuthenticated && s.User != nil
}

func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}

// AuthStatus is the body of GET /auth/status.
type AuthStatus struct {
	Authenticated bool      `json:"authenticated" example:"true"`
	State         AuthState `json:"state" example:"authenticated"`
	User          *Identity `json:"user,omitempty"`
}
