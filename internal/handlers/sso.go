package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	iauth "github.com/cjmartens/homestead/internal/auth"
	"github.com/cjmartens/homestead/internal/services"
	"github.com/cjmartens/homestead/pkg/errors"
	"github.com/cjmartens/homestead/pkg/metrics"
	"github.com/cjmartens/homestead/pkg/response"
)

const ssoStateCookie = "homestead_sso_state"

// SSOHandler drives the OIDC authorization code flow. The first login with
// an unknown email provisions an account on the fly.
type SSOHandler struct {
	provider *iauth.OIDCProvider
	users    *services.UserService
	sessions *iauth.SessionService
	name     string
}

func NewSSOHandler(provider *iauth.OIDCProvider, users *services.UserService, sessions *iauth.SessionService, providerName string) *SSOHandler {
	if providerName == "" {
		providerName = "oidc"
	}
	return &SSOHandler{provider: provider, users: users, sessions: sessions, name: providerName}
}

// GET /api/auth/sso/login
func (h *SSOHandler) Login(c *gin.Context) {
	if h.provider == nil {
		response.Error(c, errors.New("SSO_DISABLED", "single sign-on is not configured", http.StatusNotFound))
		return
	}

	state, err := iauth.GenerateState()
	if err != nil {
		response.Error(c, errors.ErrInternalServer.WithInternal(err))
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(ssoStateCookie, state, 300, "/", "", true, true)
	c.Redirect(http.StatusFound, h.provider.AuthCodeURL(state))
}

// GET /api/auth/sso/callback
func (h *SSOHandler) Callback(c *gin.Context) {
	if h.provider == nil {
		response.Error(c, errors.New("SSO_DISABLED", "single sign-on is not configured", http.StatusNotFound))
		return
	}

	state, err := c.Cookie(ssoStateCookie)
	if err != nil || state == "" || state != c.Query("state") {
		metrics.AuthAttempts.WithLabelValues("failure").Inc()
		response.Error(c, errors.ErrUnauthorized)
		return
	}
	c.SetCookie(ssoStateCookie, "", -1, "/", "", true, true)

	identity, err := h.provider.Exchange(requestContext(c), c.Query("code"))
	if err != nil {
		metrics.AuthAttempts.WithLabelValues("failure").Inc()
		response.Error(c, errors.ErrUnauthorized.WithInternal(err))
		return
	}

	user, err := h.users.ProvisionExternal(requestContext(c), h.name, identity.Email, identity.Name)
	if err != nil {
		metrics.AuthAttempts.WithLabelValues("failure").Inc()
		response.Error(c, errors.ErrInternalServer.WithInternal(err))
		return
	}
	if user.IsDisabled {
		metrics.AuthAttempts.WithLabelValues("failure").Inc()
		response.Error(c, errors.ErrForbidden)
		return
	}

	pair, _, err := h.sessions.CreateSession(requestContext(c), user, iauth.SessionMetadata{
		ClientIP:  c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	})
	if err != nil {
		response.Error(c, errors.ErrInternalServer.WithInternal(err))
		return
	}

	_ = h.users.TouchLastLogin(requestContext(c), user.ID)
	metrics.AuthAttempts.WithLabelValues("success").Inc()

	response.Success(c, http.StatusOK, gin.H{
		"user":   user,
		"tokens": pair,
	})
}
