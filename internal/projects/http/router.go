package http

import "github.com/gin-gonic/gin"

// RegisterPublic attaches the read-only portfolio routes.
func (h *Handler) RegisterPublic(rg *gin.RouterGroup) {
	rg.GET("", h.list)
	rg.GET("/featured", h.featured)
	rg.GET("/categories", h.categories)
}

// RegisterAdmin attaches project submission. extra runs before the handler,
// typically the Firebase ID token check that resolves the author.
func (h *Handler) RegisterAdmin(rg *gin.RouterGroup, extra ...gin.HandlerFunc) {
	rg.POST("", append(extra, h.create)...)
}
