package http

import "github.com/dreamspace-builders/site-backend/internal/projects/service"

// Handler bundles the dependencies for projects HTTP endpoints.
type Handler struct {
	submissions *service.SubmissionService
	portfolio   *service.PortfolioService
}

func New(submissions *service.SubmissionService, portfolio *service.PortfolioService) *Handler {
	return &Handler{submissions: submissions, portfolio: portfolio}
}

const HeaderIdempotencyKey = "Idempotency-Key"
