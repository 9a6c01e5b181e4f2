package auth

import (
	"strings"

	"github.com/gin-gonic/gin"
)

const ctxIdentity = "firebase_identity"

// Identity is the verified Firebase user behind a request.
type Identity struct {
	UID   string
	Email string
}

func SetIdentity(c *gin.Context, id Identity) {
	c.Set(ctxIdentity, id)
}

// IdentityFrom returns the identity stored by RequireIDToken. ok is false
// when no verified user is attached.
func IdentityFrom(c *gin.Context) (id Identity, ok bool) {
	v, exists := c.Get(ctxIdentity)
	if !exists {
		return Identity{}, false
	}
	id, ok = v.(Identity)
	if !ok || strings.TrimSpace(id.UID) == "" {
		return Identity{}, false
	}
	return id, true
}
