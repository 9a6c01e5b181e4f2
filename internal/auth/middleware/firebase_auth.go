package middleware

import (
	"context"
	"net/http"
	"strings"

	"firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"

	appauth "github.com/dreamspace-builders/site-backend/internal/auth"
	"github.com/dreamspace-builders/site-backend/internal/logging"
)

// TokenVerifier is satisfied by *auth.Client.
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

// RequireIDToken verifies the Firebase ID token carried as
// "Authorization: Bearer <token>" and attaches the caller's identity.
func RequireIDToken(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := bearer(c.GetHeader("Authorization"))
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "You must be logged in to add a project."})
			return
		}

		tok, err := verifier.VerifyIDToken(c.Request.Context(), raw)
		if err != nil {
			logging.FromContext(c.Request.Context(), "auth.verify_id_token").Info("rejected id token", "error", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "invalid token"})
			return
		}

		id := appauth.Identity{UID: tok.UID}
		id.Email, _ = tok.Claims["email"].(string)
		appauth.SetIdentity(c, id)
		c.Next()
	}
}

func bearer(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
