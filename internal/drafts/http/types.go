package http

import "github.com/dreamspace-builders/site-backend/internal/drafts"

type Handler struct {
	svc *drafts.Service
}

func New(svc *drafts.Service) *Handler {
	return &Handler{svc: svc}
}
