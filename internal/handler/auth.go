package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/maxviazov/tracker-dashboard/internal/model"
	"github.com/maxviazov/tracker-dashboard/internal/service"
	"github.com/maxviazov/tracker-dashboard/pkg/auth"
	"github.com/maxviazov/tracker-dashboard/pkg/response"
	"github.com/rs/zerolog"
)

// AuthHandler opens and closes sessions.
type AuthHandler struct {
	users  service.UserService
	signer *auth.Signer
	log    zerolog.Logger
}

func NewAuthHandler(users service.UserService, signer *auth.Signer, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{users: users, signer: signer, log: log.With().Str("component", "auth").Logger()}
}

func (h *AuthHandler) login(c *gin.Context) {
	var creds model.Credentials
	if err := c.ShouldBindJSON(&creds); err != nil {
		response.WriteError(c, service.ErrInvalidInput)
		return
	}
	u, err := h.users.Authenticate(c.Request.Context(), creds)
	if err != nil {
		response.WriteError(c, err)
		return
	}
	token, err := h.signer.GenerateToken(u.Email, u.IsAdmin)
	if err != nil {
		h.log.Error().Err(err).Msg("sign session failed")
		response.WriteError(c, err)
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, token, int(auth.SessionTTL.Seconds()), "/", "", false, true)
	h.log.Info().Str("email", u.Email).Msg("login")
	response.WriteSuccess(c)
}

func (h *AuthHandler) logout(c *gin.Context) {
	c.SetCookie(SessionCookie, "", -1, "/", "", false, true)
	response.WriteSuccess(c)
}
