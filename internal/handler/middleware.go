package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/maxviazov/tracker-dashboard/internal/model"
	"github.com/maxviazov/tracker-dashboard/pkg/auth"
	"github.com/maxviazov/tracker-dashboard/pkg/response"
	"github.com/rs/zerolog"
)

// SessionCookie carries the session token set at login.
const SessionCookie = "session"

const contextUserEmail = "userEmail"

// RequestLogger writes one debug line per request.
func RequestLogger(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		ev := log.Debug()
		if c.Writer.Status() >= http.StatusInternalServerError {
			ev = log.Error()
		}
		ev.Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("took", time.Since(start)).
			Msg("request")
	}
}

// SessionRequired accepts a session cookie or a Bearer token and rejects
// everything else with 401 in the status envelope.
func SessionRequired(signer *auth.Signer) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := ""
		if ck, err := c.Cookie(SessionCookie); err == nil {
			token = ck
		}
		if token == "" {
			parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
			if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
				token = strings.TrimSpace(parts[1])
			}
		}
		if token == "" {
			unauthorized(c, "Login required.")
			return
		}

		claims, err := signer.ValidateToken(token)
		if err != nil {
			unauthorized(c, "Session expired, please log in again.")
			return
		}
		c.Set(contextUserEmail, claims.Email)
		c.Next()
	}
}

func unauthorized(c *gin.Context, desc string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, response.StatusPayload{
		Status:      model.StatusFail,
		Description: desc,
		Error:       "unauthorized",
	})
}
