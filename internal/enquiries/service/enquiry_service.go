package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/dreamspace-builders/site-backend/internal/enquiries/domain"
	"github.com/dreamspace-builders/site-backend/internal/logging"
)

var markReadTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "site_enquiries_mark_read_batches_total",
		Help: "Mark-read batches by outcome.",
	},
	[]string{"outcome"},
)

// Repository is the enquiry store the service drives.
type Repository interface {
	Create(ctx context.Context, in domain.NewEnquiry) (string, error)
	List(ctx context.Context) ([]domain.Enquiry, error)
	MarkReadBatch(ctx context.Context, ids []string) (int, error)
	Delete(ctx context.Context, id string) error
}

// Query holds the listing facets. Zero values disable a facet.
type Query struct {
	Text string
	From time.Time
	To   time.Time
}

func (q Query) hasDateRange() bool {
	return !q.From.IsZero() || !q.To.IsZero()
}

// EnquiryService handles contact-form intake and the admin inbox.
type EnquiryService struct {
	repo    Repository
	tracker ReadTracker
}

func NewEnquiryService(repo Repository, tracker ReadTracker) *EnquiryService {
	return &EnquiryService{repo: repo, tracker: tracker}
}

// Submit stores a new unread enquiry from the public contact form.
func (s *EnquiryService) Submit(ctx context.Context, in domain.NewEnquiry) (string, error) {
	in.Normalize()
	return s.repo.Create(ctx, in)
}

// List materialises the inbox for an admin session, runs the mark-read pass
// once over it and then applies the facets. Records come back with the read
// state they had before the pass so new ones can still be highlighted.
func (s *EnquiryService) List(ctx context.Context, session string, q Query) ([]domain.Enquiry, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	s.markRead(ctx, session, all)
	return apply(all, q), nil
}

// Search lists and filters without touching read state.
func (s *EnquiryService) Search(ctx context.Context, q Query) ([]domain.Enquiry, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	return apply(all, q), nil
}

func (s *EnquiryService) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

func apply(list []domain.Enquiry, q Query) []domain.Enquiry {
	if q.hasDateRange() {
		list = domain.FilterByDateRange(list, q.From, q.To)
	}
	return domain.FilterByText(list, strings.TrimSpace(q.Text))
}

// markRead never fails the listing. Errors are logged and the records stay
// eligible for the next materialisation.
func (s *EnquiryService) markRead(ctx context.Context, session string, list []domain.Enquiry) {
	log := logging.FromContext(ctx, "enquiries.mark_read")

	ids := domain.UnreadIDs(list)
	if len(ids) == 0 {
		return
	}

	if s.tracker != nil && session != "" {
		unseen, err := s.tracker.Unseen(ctx, session, ids)
		if err != nil {
			log.Warn("read tracker lookup failed", slog.Any("error", err))
		} else {
			ids = unseen
		}
	}
	if len(ids) == 0 {
		return
	}

	n, err := s.repo.MarkReadBatch(ctx, ids)
	if err != nil {
		markReadTotal.WithLabelValues("error").Inc()
		log.Error("mark read batch failed", slog.Int("count", len(ids)), slog.Any("error", err))
		return
	}
	markReadTotal.WithLabelValues("ok").Inc()
	log.Debug("marked enquiries read", slog.Int("requested", len(ids)), slog.Int("updated", n))

	if s.tracker != nil && session != "" {
		if err := s.tracker.MarkSeen(ctx, session, ids); err != nil {
			log.Warn("read tracker update failed", slog.Any("error", err))
		}
	}
}
