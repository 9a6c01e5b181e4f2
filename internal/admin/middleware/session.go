package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/dreamspace-builders/site-backend/internal/admin/domain"
	"github.com/dreamspace-builders/site-backend/internal/logging"
)

const (
	HeaderAdminSession = "X-Admin-Session"

	CtxSessionToken = "admin_session"
	CtxAdminUser    = "admin_user"
)

type SessionResolver interface {
	Resolve(ctx context.Context, token string) (*domain.Session, error)
}

// RequireSession rejects requests that do not carry a live admin session.
// The token is read from X-Admin-Session, or from a Bearer Authorization
// header when X-Admin-Session is absent.
func RequireSession(resolver SessionResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := ExtractToken(c)
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "admin login required"})
			c.Abort()
			return
		}

		sess, err := resolver.Resolve(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, domain.ErrSessionNotFound) {
				c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "admin session expired, please log in again"})
			} else {
				logging.FromContext(c.Request.Context(), "admin.session").Error("resolve session", "error", err)
				c.JSON(http.StatusServiceUnavailable, gin.H{"ok": false, "error": "session store unavailable"})
			}
			c.Abort()
			return
		}

		c.Set(CtxSessionToken, sess.Token)
		c.Set(CtxAdminUser, sess.Username)
		c.Next()
	}
}

func ExtractToken(c *gin.Context) string {
	if t := strings.TrimSpace(c.GetHeader(HeaderAdminSession)); t != "" {
		return t
	}
	h := c.GetHeader("Authorization")
	if len(h) > 7 && strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

// SessionToken returns the token RequireSession resolved.
func SessionToken(c *gin.Context) string {
	return c.GetString(CtxSessionToken)
}
