package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requestWithCookies(cookies []*http.Cookie) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/auth/status", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	return req
}

func TestSessionCookie_WriteThenRead(t *testing.T) {
	codec := NewSessionCookie("test-secret", true)

	rec := httptest.NewRecorder()
	require.NoError(t, codec.Write(rec, "session-1", time.Now().Add(time.Hour)))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	c := cookies[0]
	assert.Equal(t, SessionCookieName, c.Name)
	assert.True(t, c.HttpOnly)
	assert.True(t, c.Secure)
	assert.Equal(t, http.SameSiteLaxMode, c.SameSite)
	assert.Equal(t, "/", c.Path)

	id, err := codec.Read(requestWithCookies(cookies))
	require.NoError(t, err)
	assert.Equal(t, "session-1", id)
}

func TestSessionCookie_RejectsForeignSignature(t *testing.T) {
	rec := httptest.NewRecorder()
	require.NoError(t, NewSessionCookie("other-secret", false).Write(rec, "session-1", time.Now().Add(time.Hour)))

	_, err := NewSessionCookie("test-secret", false).Read(requestWithCookies(rec.Result().Cookies()))
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestSessionCookie_RejectsExpiredAndUnsigned(t *testing.T) {
	codec := NewSessionCookie("test-secret", false)

	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ID:        "session-1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	_, err = codec.Read(requestWithCookies([]*http.Cookie{{Name: SessionCookieName, Value: expired}}))
	assert.ErrorIs(t, err, ErrNoSession)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{ID: "session-1"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = codec.Read(requestWithCookies([]*http.Cookie{{Name: SessionCookieName, Value: unsigned}}))
	assert.ErrorIs(t, err, ErrNoSession)

	_, err = codec.Read(httptest.NewRequest(http.MethodGet, "/", nil))
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestSessionCookie_Clear(t *testing.T) {
	rec := httptest.NewRecorder()
	NewSessionCookie("test-secret", false).Clear(rec)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, SessionCookieName, cookies[0].Name)
	assert.Empty(t, cookies[0].Value)
	assert.Equal(t, -1, cookies[0].MaxAge)
}
