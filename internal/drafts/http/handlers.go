package http

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dreamspace-builders/site-backend/internal/drafts"
	"github.com/dreamspace-builders/site-backend/internal/logging"
)

const maxImageBytes = 10 << 20

func (h *Handler) generate(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxImageBytes+1<<20)

	var (
		image    []byte
		mimeType string
	)
	fh, err := c.FormFile("image")
	switch {
	case err == nil:
		f, err := fh.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "could not read the image"})
			return
		}
		image, err = io.ReadAll(io.LimitReader(f, maxImageBytes))
		f.Close()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "could not read the image"})
			return
		}
		mimeType = fh.Header.Get("Content-Type")
	case errors.Is(err, http.ErrMissingFile):
	default:
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"ok": false, "error": "the image is too large"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "expected a multipart form"})
		return
	}

	text, err := h.svc.Generate(c.Request.Context(), image, mimeType, c.PostForm("constructionData"))
	if err != nil {
		var verr *drafts.ValidationError
		if errors.As(err, &verr) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"ok": false, "error": "please correct the highlighted fields", "fields": verr.Fields})
			return
		}
		logging.FromContext(c.Request.Context(), "drafts.generate").Error("generation failed", "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "description": text})
}
