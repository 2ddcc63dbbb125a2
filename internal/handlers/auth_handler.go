package handlers

import (
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/stockroom/backend/internal/apperror"
	"github.com/stockroom/backend/internal/middleware"
	"github.com/stockroom/backend/internal/models"
	"github.com/stockroom/backend/internal/services"
)

const (
	loginSuccessRedirect = "/auth/status"
	loginFailureRedirect = "/api-docs"

	// Login starts allowed across all clients: a burst of 20, refilled at
	// one per second.
	loginRate  = rate.Limit(1)
	loginBurst = 20
)

// AuthHandler drives the GitHub login state machine:
// anonymous -> authenticating -> authenticated, and back on logout.
type AuthHandler struct {
	provider   services.IdentityProvider
	sessions   services.SessionStore
	cookie     *middleware.SessionCookie
	sessionTTL time.Duration
	logger     *zap.Logger
	limiter    *rate.Limiter
	now        func() time.Time
}

func NewAuthHandler(provider services.IdentityProvider, sessions services.SessionStore, cookie *middleware.SessionCookie, sessionTTL time.Duration, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		provider:   provider,
		sessions:   sessions,
		cookie:     cookie,
		sessionTTL: sessionTTL,
		logger:     logger,
		limiter:    rate.NewLimiter(loginRate, loginBurst),
		now:        time.Now,
	}
}

// LoadSession attaches the caller's session to the exchange when the cookie
// references a live one. A missing session is not an error.
func (h *AuthHandler) LoadSession() Stage {
	return Stage{Name: "loadSession", Run: func(ex *Exchange) error {
		id, err := h.cookie.Read(ex.Request)
		if err != nil {
			return nil
		}

		ctx, cancel := contextWithTimeout(ex.Request.Context(), sessionTimeout)
		defer cancel()

		session, err := h.sessions.Get(ctx, id)
		if errors.Is(err, services.ErrSessionNotFound) {
			return nil
		}
		if err != nil {
			return apperror.Store("load session", err)
		}
		ex.Session = session
		return nil
	}}
}

// RequireSession rejects requests without an authenticated session.
func (h *AuthHandler) RequireSession() Stage {
	load := h.LoadSession()
	return Stage{Name: "requireSession", Run: func(ex *Exchange) error {
		if err := load.Run(ex); err != nil {
			return err
		}
		if !ex.Session.Authenticated() {
			return apperror.Unauthorized("Not authenticated")
		}
		return nil
	}}
}

// Login godoc
// @Summary      Start GitHub login
// @Description  Stores a fresh OAuth state in the session and redirects to GitHub.
// @Tags         Auth
// @Success      302
// @Failure      429  {object}  models.APIResponse
// @Router       /login [get]
func (h *AuthHandler) Login(ex *Exchange) error {
	if !h.limiter.Allow() {
		return apperror.WithStatus(http.StatusTooManyRequests, "Too many login attempts, try again later")
	}

	session := ex.Session
	if session == nil {
		session = models.NewSession(services.NewSessionID(), h.now(), h.sessionTTL)
	}
	state := services.NewOAuthState()
	session.BeginLogin(state)

	if err := h.persist(ex, session); err != nil {
		return err
	}

	http.Redirect(ex.Writer, ex.Request, h.provider.AuthCodeURL(state), http.StatusFound)
	return nil
}

// Callback godoc
// @Summary      GitHub OAuth callback
// @Description  Completes the login and redirects to /auth/status, or to /api-docs on failure.
// @Tags         Auth
// @Param        code   query  string  true  "Authorization code"
// @Param        state  query  string  true  "OAuth state"
// @Success      302
// @Router       /github/callback [get]
func (h *AuthHandler) Callback(ex *Exchange) error {
	session := ex.Session
	query := ex.Request.URL.Query()

	if session == nil || session.State != models.StateAuthenticating ||
		query.Get("state") == "" || query.Get("state") != session.OAuthState ||
		query.Get("code") == "" {
		h.logger.Warn("OAuth callback rejected", zap.Bool("has_session", session != nil), zap.String("provider_error", query.Get("error")))
		return h.failLogin(ex, session)
	}

	ctx, cancel := contextWithTimeout(ex.Request.Context(), sessionTimeout)
	defer cancel()

	user, err := h.provider.Exchange(ctx, query.Get("code"))
	if err != nil {
		h.logger.Warn("OAuth exchange failed", zap.Error(err))
		return h.failLogin(ex, session)
	}

	// The session id changes on login.
	if err := h.sessions.Delete(ctx, session.ID); err != nil {
		return apperror.Store("rotate session", err)
	}
	rotated := models.NewSession(services.NewSessionID(), h.now(), h.sessionTTL)
	rotated.Complete(user)

	if err := h.persist(ex, rotated); err != nil {
		return err
	}

	h.logger.Info("User logged in", zap.String("login", user.Login), zap.String("user_id", user.ID))
	http.Redirect(ex.Writer, ex.Request, loginSuccessRedirect, http.StatusFound)
	return nil
}

func (h *AuthHandler) failLogin(ex *Exchange, session *models.Session) error {
	if session != nil {
		session.Reset()
		if err := h.persist(ex, session); err != nil {
			return err
		}
	}
	http.Redirect(ex.Writer, ex.Request, loginFailureRedirect, http.StatusFound)
	return nil
}

// Logout godoc
// @Summary      Log out
// @Tags         Auth
// @Produce      json
// @Success      200  {object}  models.APIResponse
// @Router       /logout [get]
func (h *AuthHandler) Logout(ex *Exchange) error {
	if ex.Session != nil {
		ctx, cancel := contextWithTimeout(ex.Request.Context(), sessionTimeout)
		defer cancel()

		if err := h.sessions.Delete(ctx, ex.Session.ID); err != nil {
			return apperror.Store("delete session", err)
		}
	}
	h.cookie.Clear(ex.Writer)
	writeJSON(ex.Writer, http.StatusOK, models.NewMessageResponse("Logged out"))
	return nil
}

// Status godoc
// @Summary      Current login state
// @Tags         Auth
// @Produce      json
// @Success      200  {object}  models.AuthStatus
// @Router       /auth/status [get]
func (h *AuthHandler) Status(ex *Exchange) error {
	status := models.AuthStatus{State: models.StateAnonymous}
	if ex.Session != nil {
		status.State = ex.Session.State
		status.Authenticated = ex.Session.Authenticated()
		status.User = ex.Session.User
	}
	writeJSON(ex.Writer, http.StatusOK, status)
	return nil
}

func (h *AuthHandler) persist(ex *Exchange, session *models.Session) error {
	ctx, cancel := contextWithTimeout(ex.Request.Context(), sessionTimeout)
	defer cancel()

	if err := h.sessions.Save(ctx, session); err != nil {
		return apperror.Store("save session", err)
	}
	if err := h.cookie.Write(ex.Writer, session.ID, session.ExpiresAt); err != nil {
		return err
	}
	ex.Session = session
	return nil
}
