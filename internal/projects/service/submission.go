package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/sync/errgroup"

	"github.com/dreamspace-builders/site-backend/internal/logging"
	"github.com/dreamspace-builders/site-backend/internal/projects/domain"
	"github.com/dreamspace-builders/site-backend/internal/storage/images"
	"github.com/dreamspace-builders/site-backend/internal/validation"
)

const (
	MaxImages     = 3
	MaxImageBytes = 5_000_000
)

// AcceptedImageTypes are the media types a project image may have, judged
// by its content rather than the declared type.
var AcceptedImageTypes = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}

var submissionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "site_project_submissions_total",
		Help: "Project submissions by outcome.",
	},
	[]string{"outcome"},
)

// ImageFile is one selected file, in selection order.
type ImageFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Candidate is an unvalidated project submission.
type Candidate struct {
	Title       string `json:"title" validate:"min=5"`
	Description string `json:"description" validate:"min=10"`
	Category    string `json:"category" validate:"oneof=Residential Commercial Industrial"`
	// Comma separated.
	Tags     string      `json:"tags" validate:"min=3"`
	Featured bool        `json:"featured"`
	Images   []ImageFile `json:"-" validate:"-"`
}

// fieldMessages holds the user-facing text for each field rule.
var fieldMessages = map[string]string{
	"title.min":        "Title must be at least 5 characters.",
	"description.min":  "Description must be at least 10 characters.",
	"category.oneof":   "Please select Residential, Commercial or Industrial.",
	"tags.min":         "Please provide at least one tag.",
	"images.required":  "At least one image is required.",
	"images.max":       fmt.Sprintf("You can upload a maximum of %d images.", MaxImages),
	"images.size":      "Max file size is 5MB.",
	"images.mediatype": ".jpg, .jpeg, .png, .webp and .gif files are accepted.",
}

type ProjectCreator interface {
	Create(ctx context.Context, p *domain.Project) (string, error)
}

// IdempotencyGuard rejects a second submission carrying the same key while
// the first is in flight or after it succeeded.
type IdempotencyGuard interface {
	Acquire(ctx context.Context, key string) (bool, error)
	Release(ctx context.Context, key string) error
}

// Invalidator is told when the set of projects changed.
type Invalidator interface {
	Invalidate()
}

type SubmissionOptions struct {
	// MaxParallelUploads above 1 uploads images concurrently. URL order
	// always follows selection order.
	MaxParallelUploads int
	Guard              IdempotencyGuard
	Invalidator        Invalidator
}

// SubmissionService validates a candidate, uploads its images and writes
// the project document.
type SubmissionService struct {
	repo     ProjectCreator
	store    images.Store
	validate *validator.Validate
	opts     SubmissionOptions
	now      func() time.Time
}

func NewSubmissionService(repo ProjectCreator, store images.Store, opts SubmissionOptions) *SubmissionService {
	if opts.MaxParallelUploads < 1 {
		opts.MaxParallelUploads = 1
	}
	return &SubmissionService{
		repo:     repo,
		store:    store,
		validate: validation.New(),
		opts:     opts,
		now:      time.Now,
	}
}

// Submit runs the workflow for authorUID. Nothing is read or written before
// the author and every field are accepted. Images already uploaded stay in
// the store when a later step fails.
func (s *SubmissionService) Submit(ctx context.Context, authorUID string, c Candidate, idempotencyKey string) (*domain.Project, error) {
	log := logging.FromContext(ctx, "projects.submit")

	if strings.TrimSpace(authorUID) == "" {
		submissionsTotal.WithLabelValues("unauthenticated").Inc()
		return nil, domain.ErrUnauthenticated
	}

	tags, contentTypes, verr := s.check(&c)
	if verr != nil {
		submissionsTotal.WithLabelValues("invalid").Inc()
		return nil, verr
	}

	var held bool
	if s.opts.Guard != nil && idempotencyKey != "" {
		ok, err := s.opts.Guard.Acquire(ctx, idempotencyKey)
		switch {
		case err != nil:
			log.Warn("idempotency guard unavailable, continuing without it", slog.Any("error", err))
		case !ok:
			submissionsTotal.WithLabelValues("duplicate").Inc()
			return nil, domain.ErrDuplicateSubmission
		default:
			held = true
		}
	}

	urls, err := s.upload(ctx, authorUID, c.Images, contentTypes)
	if err != nil {
		submissionsTotal.WithLabelValues("upload_failed").Inc()
		log.Error("image upload failed", slog.Int("images", len(c.Images)), slog.Any("error", err))
		if held {
			s.release(ctx, idempotencyKey)
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrUpload, err)
	}

	p := &domain.Project{
		Title:       c.Title,
		Description: c.Description,
		Category:    domain.Category(c.Category),
		Tags:        tags,
		Featured:    c.Featured,
		ImageURLs:   urls,
		AuthorUID:   authorUID,
		CreatedAt:   s.now().UTC(),
	}
	if _, err := s.repo.Create(ctx, p); err != nil {
		submissionsTotal.WithLabelValues("save_failed").Inc()
		log.Error("project write failed", slog.Int("orphaned_images", len(urls)), slog.Any("error", err))
		if held {
			s.release(ctx, idempotencyKey)
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrSave, err)
	}

	submissionsTotal.WithLabelValues("created").Inc()
	log.Info("project created", slog.String("project_id", p.ID), slog.Int("images", len(urls)))
	if s.opts.Invalidator != nil {
		s.opts.Invalidator.Invalidate()
	}
	return p, nil
}

// check validates c in place and returns the parsed tags and the sniffed
// media type of each image.
func (s *SubmissionService) check(c *Candidate) ([]string, []string, *domain.ValidationError) {
	verr := domain.NewValidationError()

	c.Title = strings.TrimSpace(c.Title)
	c.Description = strings.TrimSpace(c.Description)
	c.Category = strings.TrimSpace(c.Category)

	if err := s.validate.Struct(c); err != nil {
		var fes validator.ValidationErrors
		if !errors.As(err, &fes) {
			verr.Add("form", err.Error())
			return nil, nil, verr
		}
		for _, fe := range fes {
			msg, ok := fieldMessages[fe.Field()+"."+fe.Tag()]
			if !ok {
				msg = validation.Message(fe)
			}
			verr.Add(fe.Field(), msg)
		}
	}

	tags := domain.ParseTags(c.Tags)
	if len(tags) == 0 && len(verr.Fields["tags"]) == 0 {
		verr.Add("tags", fieldMessages["tags.min"])
	}

	contentTypes := checkImages(c.Images, verr)

	if !verr.Empty() {
		return nil, nil, verr
	}
	return tags, contentTypes, nil
}

func checkImages(files []ImageFile, verr *domain.ValidationError) []string {
	switch {
	case len(files) == 0:
		verr.Add("images", fieldMessages["images.required"])
		return nil
	case len(files) > MaxImages:
		verr.Add("images", fieldMessages["images.max"])
	}

	var tooBig, badType bool
	types := make([]string, len(files))
	for i, f := range files {
		if len(f.Data) > MaxImageBytes {
			tooBig = true
		}
		mt := mimetype.Detect(f.Data)
		if !mimetypeIn(mt, AcceptedImageTypes) {
			badType = true
			continue
		}
		types[i] = mt.String()
	}
	if tooBig {
		verr.Add("images", fieldMessages["images.size"])
	}
	if badType {
		verr.Add("images", fieldMessages["images.mediatype"])
	}
	return types
}

func mimetypeIn(mt *mimetype.MIME, accepted []string) bool {
	for _, a := range accepted {
		if mt.Is(a) {
			return true
		}
	}
	return false
}

// upload stores every image and returns their URLs in selection order.
func (s *SubmissionService) upload(ctx context.Context, authorUID string, files []ImageFile, contentTypes []string) ([]string, error) {
	paths := objectPaths(authorUID, s.now(), files)
	urls := make([]string, len(files))

	put := func(ctx context.Context, i int) error {
		ref, err := s.store.Put(ctx, paths[i], files[i].Data, contentTypes[i])
		if err != nil {
			return fmt.Errorf("upload %s: %w", files[i].Filename, err)
		}
		url, err := s.store.DownloadURL(ctx, ref)
		if err != nil {
			return fmt.Errorf("resolve url for %s: %w", files[i].Filename, err)
		}
		urls[i] = url
		return nil
	}

	if s.opts.MaxParallelUploads == 1 {
		for i := range files {
			if err := put(ctx, i); err != nil {
				return nil, err
			}
		}
		return urls, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.MaxParallelUploads)
	for i := range files {
		g.Go(func() error { return put(gctx, i) })
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return urls, nil
}

// objectPaths gives each file its own millisecond so two files with the
// same name never share an object path.
func objectPaths(authorUID string, start time.Time, files []ImageFile) []string {
	out := make([]string, len(files))
	at := start
	for i, f := range files {
		out[i] = images.ObjectPath(authorUID, at, f.Filename)
		at = at.Add(time.Millisecond)
	}
	return out
}

// release frees the key so the same form can be resubmitted after a failure.
func (s *SubmissionService) release(ctx context.Context, key string) {
	if err := s.opts.Guard.Release(context.WithoutCancel(ctx), key); err != nil {
		logging.FromContext(ctx, "projects.submit").Warn("release idempotency key", slog.Any("error", err))
	}
}
