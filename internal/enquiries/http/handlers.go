package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	adminmw "github.com/dreamspace-builders/site-backend/internal/admin/middleware"
	"github.com/dreamspace-builders/site-backend/internal/enquiries/domain"
	"github.com/dreamspace-builders/site-backend/internal/enquiries/export"
	"github.com/dreamspace-builders/site-backend/internal/enquiries/service"
	"github.com/dreamspace-builders/site-backend/internal/logging"
	"github.com/dreamspace-builders/site-backend/internal/validation"
)

func (h *Handler) submit(c *gin.Context) {
	var req domain.NewEnquiry
	if err := c.ShouldBindJSON(&req); err != nil {
		if fields := validation.Fields(err); fields != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"ok": false, "error": "please correct the highlighted fields", "fields": fields})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}
	req.Normalize()
	if err := h.validate.Struct(req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"ok": false, "error": "please correct the highlighted fields", "fields": validation.Fields(err)})
		return
	}

	id, err := h.svc.Submit(c.Request.Context(), req)
	if err != nil {
		h.fail(c, "enquiries.submit", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "id": id})
}

func (h *Handler) list(c *gin.Context) {
	q, fields := h.parseQuery(c)
	if fields != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"ok": false, "error": "invalid filters", "fields": fields})
		return
	}

	items, err := h.svc.List(c.Request.Context(), adminmw.SessionToken(c), q)
	if err != nil {
		h.fail(c, "enquiries.list", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "enquiries": items, "count": len(items)})
}

func (h *Handler) exportCSV(c *gin.Context) {
	items, ok := h.search(c)
	if !ok {
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+export.Filename("csv", h.now().In(h.loc))+`"`)
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Status(http.StatusOK)
	if err := export.WriteCSV(c.Writer, items, h.loc); err != nil {
		logging.FromContext(c.Request.Context(), "enquiries.export_csv").Error("write csv", "error", err)
	}
}

func (h *Handler) exportPDF(c *gin.Context) {
	items, ok := h.search(c)
	if !ok {
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+export.Filename("pdf", h.now().In(h.loc))+`"`)
	c.Header("Content-Type", "application/pdf")
	c.Status(http.StatusOK)
	if err := export.WritePDF(c.Writer, items, h.loc, h.now()); err != nil {
		logging.FromContext(c.Request.Context(), "enquiries.export_pdf").Error("write pdf", "error", err)
	}
}

func (h *Handler) delete(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		h.fail(c, "enquiries.delete", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handler) search(c *gin.Context) ([]domain.Enquiry, bool) {
	q, fields := h.parseQuery(c)
	if fields != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"ok": false, "error": "invalid filters", "fields": fields})
		return nil, false
	}
	items, err := h.svc.Search(c.Request.Context(), q)
	if err != nil {
		h.fail(c, "enquiries.export", err)
		return nil, false
	}
	return items, true
}

// parseQuery reads q, from and to. Dates are either YYYY-MM-DD in the
// display zone or RFC 3339; a bare "to" date covers that whole day.
func (h *Handler) parseQuery(c *gin.Context) (service.Query, map[string][]string) {
	q := service.Query{Text: c.Query("q")}
	var fields map[string][]string

	if raw := strings.TrimSpace(c.Query("from")); raw != "" {
		t, _, err := h.parseDate(raw)
		if err != nil {
			fields = map[string][]string{"from": {"Use YYYY-MM-DD or an RFC 3339 timestamp."}}
		}
		q.From = t
	}
	if raw := strings.TrimSpace(c.Query("to")); raw != "" {
		t, dateOnly, err := h.parseDate(raw)
		if err != nil {
			if fields == nil {
				fields = map[string][]string{}
			}
			fields["to"] = []string{"Use YYYY-MM-DD or an RFC 3339 timestamp."}
		}
		if dateOnly {
			t = t.AddDate(0, 0, 1).Add(-time.Nanosecond)
		}
		q.To = t
	}
	if fields == nil && !q.From.IsZero() && !q.To.IsZero() && q.To.Before(q.From) {
		fields = map[string][]string{"to": {"End date must not be before the start date."}}
	}
	return q, fields
}

func (h *Handler) parseDate(raw string) (time.Time, bool, error) {
	if t, err := time.ParseInLocation(time.DateOnly, raw, h.loc); err == nil {
		return t, true, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	return t, false, err
}

func (h *Handler) fail(c *gin.Context, op string, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "enquiry not found"})
	case errors.Is(err, domain.ErrUnavailable):
		logging.FromContext(c.Request.Context(), op).Warn("store unavailable", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"ok": false, "error": "the enquiry store is temporarily unavailable, please retry"})
	default:
		logging.FromContext(c.Request.Context(), op).Error("request failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "something went wrong"})
	}
}
