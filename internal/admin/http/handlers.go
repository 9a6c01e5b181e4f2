package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dreamspace-builders/site-backend/internal/admin/domain"
	"github.com/dreamspace-builders/site-backend/internal/admin/middleware"
	"github.com/dreamspace-builders/site-backend/internal/admin/service"
	"github.com/dreamspace-builders/site-backend/internal/logging"
)

type Handler struct {
	auth *service.AuthService
}

func New(auth *service.AuthService) *Handler {
	return &Handler{auth: auth}
}

type loginReq struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *Handler) login(c *gin.Context) {
	var req loginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "username and password are required"})
		return
	}

	sess, err := h.auth.Login(c.Request.Context(), req.Username, req.Password)
	if errors.Is(err, domain.ErrInvalidCredentials) {
		c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "Invalid username or password."})
		return
	}
	if err != nil {
		logging.FromContext(c.Request.Context(), "admin.login").Error("create session", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"ok": false, "error": "could not start a session, please try again"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "session": sess})
}

func (h *Handler) logout(c *gin.Context) {
	if err := h.auth.Logout(c.Request.Context(), middleware.SessionToken(c)); err != nil {
		logging.FromContext(c.Request.Context(), "admin.logout").Error("delete session", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"ok": false, "error": "could not end the session"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handler) me(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true, "username": c.GetString(middleware.CtxAdminUser)})
}
