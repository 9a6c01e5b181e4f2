package http

import "github.com/gin-gonic/gin"

// RegisterPublic attaches the login route; it must sit outside the session
// guard.
func (h *Handler) RegisterPublic(rg *gin.RouterGroup, extra ...gin.HandlerFunc) {
	rg.POST("/login", append(extra, h.login)...)
}

// Register attaches routes that need a resolved session.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.POST("/logout", h.logout)
	rg.GET("/me", h.me)
}
