package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/trimbook/internal/auth"
	"github.com/BruksfildServices01/trimbook/internal/guard"
	"github.com/BruksfildServices01/trimbook/internal/httperr"
)

const ContextUserID = "userID"

func bearer(c *gin.Context) (string, error) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", httperr.UnauthorizedErr("missing_authorization_header", "Missing Authorization header.")
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", httperr.UnauthorizedErr("invalid_authorization_header", "Authorization must be a Bearer token.")
	}
	return strings.TrimSpace(parts[1]), nil
}

// AuthMiddleware requires a valid Bearer token and stores the user id.
func AuthMiddleware(tokens auth.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := bearer(c)
		if err != nil {
			httperr.Respond(c, err)
			c.Abort()
			return
		}
		authenticate(c, tokens, raw)
	}
}

// WebSocketAuth also accepts ?token= since browsers can't set headers on
// a websocket handshake.
func WebSocketAuth(tokens auth.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := bearer(c)
		if err != nil {
			raw = c.Query("token")
			if raw == "" {
				httperr.Respond(c, err)
				c.Abort()
				return
			}
		}
		authenticate(c, tokens, raw)
	}
}

// OptionalAuth identifies the caller when a valid token is present and
// lets the request through either way.
func OptionalAuth(tokens auth.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if raw, err := bearer(c); err == nil {
			if userID, err := tokens.Verify(raw); err == nil {
				c.Set(ContextUserID, userID)
			}
		}
		c.Next()
	}
}

func authenticate(c *gin.Context, tokens auth.TokenService, raw string) {
	userID, err := tokens.Verify(raw)
	if err != nil {
		httperr.Respond(c, err)
		c.Abort()
		return
	}

	c.Set(ContextUserID, userID)
	c.Next()
}

// Identity returns the authenticated caller, or nil for anonymous requests.
func Identity(c *gin.Context) *guard.Identity {
	userID := c.GetString(ContextUserID)
	if userID == "" {
		return nil
	}
	return &guard.Identity{UserID: userID}
}
