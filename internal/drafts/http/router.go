package http

import "github.com/gin-gonic/gin"

// Register attaches the draft generator. Pass a rate limiter in extra.
func (h *Handler) Register(rg *gin.RouterGroup, extra ...gin.HandlerFunc) {
	rg.POST("", append(extra, h.generate)...)
}
