package drafts

import (
	"context"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/dreamspace-builders/site-backend/internal/logging"
)

const MinNotesLength = 10

var generations = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "site_draft_generation_seconds",
	Help:    "Latency of description draft generation calls by outcome.",
	Buckets: []float64{0.5, 1, 2, 5, 10, 20, 40, 60},
}, []string{"outcome"})

// ValidationError lists field problems found before any upstream call.
type ValidationError struct {
	Fields map[string][]string
}

func (e *ValidationError) Error() string {
	return "invalid draft request"
}

func (e *ValidationError) add(field, msg string) {
	if e.Fields == nil {
		e.Fields = map[string][]string{}
	}
	e.Fields[field] = append(e.Fields[field], msg)
}

type Service struct {
	gen Generator
}

func NewService(gen Generator) *Service {
	return &Service{gen: gen}
}

// Generate validates the inputs and makes a single call to the backend.
// Backend failures are returned unchanged.
func (s *Service) Generate(ctx context.Context, image []byte, mimeType, notes string) (string, error) {
	log := logging.FromContext(ctx, "drafts.generate")

	verr := &ValidationError{}
	notes = strings.TrimSpace(notes)
	if len([]rune(notes)) < MinNotesLength {
		verr.add("constructionData", "Construction data must be at least 10 characters.")
	}

	switch {
	case len(image) == 0:
		verr.add("image", "Please upload an image of the project.")
	default:
		sniffed := mimetype.Detect(image).String()
		if !strings.HasPrefix(sniffed, "image/") {
			verr.add("image", "Please upload a valid image file (PNG, JPG, etc.).")
		} else {
			mimeType = sniffed
		}
	}
	if len(verr.Fields) > 0 {
		return "", verr
	}

	start := time.Now()
	text, err := s.gen.Generate(ctx, Input{Image: image, MIMEType: mimeType, Notes: notes})
	if err == nil && strings.TrimSpace(text) == "" {
		err = ErrEmptyDraft
	}
	if err != nil {
		generations.WithLabelValues("error").Observe(time.Since(start).Seconds())
		log.Warn("draft generation failed", "error", err, "elapsed", time.Since(start))
		return "", err
	}

	generations.WithLabelValues("ok").Observe(time.Since(start).Seconds())
	log.Info("draft generated", "chars", len(text), "elapsed", time.Since(start))
	return text, nil
}
