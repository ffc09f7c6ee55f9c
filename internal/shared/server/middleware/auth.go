package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"resume-builder/internal/shared/auth"
	"resume-builder/internal/shared/server/respond"
)

const (
	userIDKey    = "userId"
	sessionIDKey = "sessionId"

	// SessionCookie carries the session token for browser clients.
	SessionCookie = "session"
)

// SessionVerifier resolves a session token to an identity.
type SessionVerifier interface {
	Verify(ctx context.Context, token string) (auth.Session, error)
}

// Auth resolves the caller's session from the session cookie or a Bearer header.
// It never rejects: requests without a valid session continue anonymously and
// handlers that need an identity call RequireUser.
func Auth(sessions SessionVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := TokenFromRequest(c)
		if token == "" || sessions == nil {
			c.Next()
			return
		}
		sess, err := sessions.Verify(c.Request.Context(), token)
		if err != nil {
			c.Next()
			return
		}
		c.Set(userIDKey, sess.UserID)
		c.Set(sessionIDKey, sess.TokenID)
		c.Next()
	}
}

// TokenFromRequest returns the Bearer token, or the session cookie when no header is sent.
func TokenFromRequest(c *gin.Context) string {
	header := strings.TrimSpace(c.GetHeader("Authorization"))
	if header != "" {
		if !strings.HasPrefix(header, "Bearer ") {
			return ""
		}
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	if cookie, err := c.Cookie(SessionCookie); err == nil {
		return strings.TrimSpace(cookie)
	}
	return ""
}

// UserIDFromContext fetches the user ID set by the auth middleware.
func UserIDFromContext(c *gin.Context) (int64, bool) {
	if c == nil {
		return 0, false
	}
	val, _ := c.Get(userIDKey)
	id, ok := val.(int64)
	return id, ok && id > 0
}

// RequireUser returns the caller's id or writes 401 and aborts.
func RequireUser(c *gin.Context) (int64, bool) {
	id, ok := UserIDFromContext(c)
	if !ok {
		respond.Error(c, http.StatusUnauthorized, "unauthorized", "Authentication required", nil)
		return 0, false
	}
	return id, true
}
