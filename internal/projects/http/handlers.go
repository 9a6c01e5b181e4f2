package http

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/dreamspace-builders/site-backend/internal/auth"
	"github.com/dreamspace-builders/site-backend/internal/logging"
	"github.com/dreamspace-builders/site-backend/internal/projects/domain"
	"github.com/dreamspace-builders/site-backend/internal/projects/service"
)

// maxSubmissionBytes leaves room for one file over the per-image limit so
// oversize files reach validation instead of failing the whole body.
const maxSubmissionBytes = (service.MaxImages+2)*service.MaxImageBytes + 1<<20

func (h *Handler) list(c *gin.Context) {
	items, err := h.portfolio.List(c.Request.Context(), c.Query("q"), c.Query("category"))
	if err != nil {
		h.fail(c, "projects.list", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "projects": items})
}

func (h *Handler) featured(c *gin.Context) {
	items, err := h.portfolio.Featured(c.Request.Context())
	if err != nil {
		h.fail(c, "projects.featured", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "projects": items})
}

func (h *Handler) categories(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true, "categories": h.portfolio.Categories()})
}

func (h *Handler) create(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxSubmissionBytes)

	form, err := c.MultipartForm()
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"ok": false, "error": "the upload is too large"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "expected a multipart form"})
		return
	}

	cand, err := candidateFromForm(form)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": err.Error()})
		return
	}

	author, _ := auth.IdentityFrom(c)
	p, err := h.submissions.Submit(c.Request.Context(), author.UID, cand, strings.TrimSpace(c.GetHeader(HeaderIdempotencyKey)))
	if err != nil {
		h.fail(c, "projects.create", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"ok":      true,
		"project": p,
		"message": p.Title + " has been successfully added to your portfolio.",
	})
}

func candidateFromForm(form *multipart.Form) (service.Candidate, error) {
	value := func(key string) string {
		if v := form.Value[key]; len(v) > 0 {
			return v[0]
		}
		return ""
	}

	cand := service.Candidate{
		Title:       value("title"),
		Description: value("description"),
		Category:    value("category"),
		Tags:        value("tags"),
	}
	if raw := strings.TrimSpace(value("featured")); raw != "" {
		if raw == "on" {
			cand.Featured = true
		} else {
			b, err := strconv.ParseBool(raw)
			if err != nil {
				return cand, fmt.Errorf("featured must be true or false")
			}
			cand.Featured = b
		}
	}

	files := append(form.File["images"], form.File["images[]"]...)
	for _, fh := range files {
		data, err := readPart(fh)
		if err != nil {
			return cand, fmt.Errorf("read %s: %w", fh.Filename, err)
		}
		cand.Images = append(cand.Images, service.ImageFile{
			Filename:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Data:        data,
		})
	}
	return cand, nil
}

// readPart reads at most one byte past the image limit; that is enough for
// validation to reject it.
func readPart(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(io.LimitReader(f, service.MaxImageBytes+1))
}

func (h *Handler) fail(c *gin.Context, op string, err error) {
	log := logging.FromContext(c.Request.Context(), op)

	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"ok": false, "error": "please correct the highlighted fields", "fields": verr.Fields})
	case errors.Is(err, domain.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "error": domain.ErrUnauthenticated.Error()})
	case errors.Is(err, domain.ErrInvalidCategory):
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": err.Error()})
	case errors.Is(err, domain.ErrDuplicateSubmission):
		c.JSON(http.StatusConflict, gin.H{"ok": false, "error": domain.ErrDuplicateSubmission.Error()})
	case errors.Is(err, domain.ErrUpload):
		c.JSON(http.StatusBadGateway, gin.H{"ok": false, "error": "An error occurred while uploading the images. Please try again."})
	case errors.Is(err, domain.ErrSave) && errors.Is(err, domain.ErrUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"ok": false, "error": "An error occurred while adding the project. Please try again."})
	case errors.Is(err, domain.ErrSave):
		c.JSON(http.StatusBadGateway, gin.H{"ok": false, "error": "An error occurred while adding the project. Please try again."})
	case errors.Is(err, domain.ErrUnavailable):
		log.Warn("store unavailable", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"ok": false, "error": "projects are temporarily unavailable, please retry"})
	default:
		log.Error("request failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "something went wrong"})
	}
}
