package http

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/dreamspace-builders/site-backend/internal/enquiries/service"
	"github.com/dreamspace-builders/site-backend/internal/validation"
)

// Handler bundles the dependencies for enquiry endpoints.
type Handler struct {
	svc      *service.EnquiryService
	validate *validator.Validate
	loc      *time.Location
	now      func() time.Time
}

func New(svc *service.EnquiryService, loc *time.Location) *Handler {
	if loc == nil {
		loc = time.UTC
	}
	return &Handler{svc: svc, validate: validation.New(), loc: loc, now: time.Now}
}
