package http

import "github.com/gin-gonic/gin"

// RegisterPublic attaches the contact form endpoint.
func (h *Handler) RegisterPublic(rg *gin.RouterGroup, extra ...gin.HandlerFunc) {
	rg.POST("", append(extra, h.submit)...)
}

// RegisterAdmin attaches the inbox routes. The group must already require
// an admin session.
func (h *Handler) RegisterAdmin(rg *gin.RouterGroup) {
	rg.GET("", h.list)
	rg.GET("/export.csv", h.exportCSV)
	rg.GET("/export.pdf", h.exportPDF)
	rg.DELETE("/:id", h.delete)
}
