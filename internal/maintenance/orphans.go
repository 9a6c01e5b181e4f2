package maintenance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/dreamspace-builders/site-backend/internal/logging"
	"github.com/dreamspace-builders/site-backend/internal/storage/images"
)

var (
	orphansDeleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "site_orphan_images_deleted_total",
		Help: "Project images deleted because no project references them.",
	})
	sweepRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "site_orphan_sweeps_total",
		Help: "Orphan image sweeps by outcome.",
	}, []string{"outcome"})
)

// ErrUnknownReference means a project points at an image the store cannot
// resolve, so orphans cannot be told apart from live images.
var ErrUnknownReference = errors.New("unrecognised image reference")

// ReferenceLister reports every image URL still attached to a project.
type ReferenceLister interface {
	ImageURLs(ctx context.Context) ([]string, error)
}

// SweepResult summarises one sweep.
type SweepResult struct {
	Scanned    int
	Referenced int
	Young      int
	Deleted    int
	Failed     int
}

// OrphanSweeper removes images left behind when a submission uploaded
// files but failed to save the project.
type OrphanSweeper struct {
	store images.Sweepable
	refs  ReferenceLister
	grace time.Duration
	now   func() time.Time
}

func NewOrphanSweeper(store images.Sweepable, refs ReferenceLister, grace time.Duration) *OrphanSweeper {
	return &OrphanSweeper{store: store, refs: refs, grace: grace, now: time.Now}
}

// Run adapts Sweep to the scheduler's job signature.
func (s *OrphanSweeper) Run(ctx context.Context) error {
	_, err := s.Sweep(ctx)
	return err
}

// Sweep lists objects before loading references, so an object that a
// concurrent submission manages to save is never mistaken for an orphan.
// Objects younger than the grace period are always kept. A reference the
// store cannot map to an object path aborts the sweep before any delete.
func (s *OrphanSweeper) Sweep(ctx context.Context) (SweepResult, error) {
	log := logging.FromContext(ctx, "maintenance.orphan_sweep")
	var res SweepResult

	objects, err := s.store.List(ctx, images.ProjectsPrefix)
	if err != nil {
		sweepRuns.WithLabelValues("error").Inc()
		return res, fmt.Errorf("list images: %w", err)
	}
	urls, err := s.refs.ImageURLs(ctx)
	if err != nil {
		sweepRuns.WithLabelValues("error").Inc()
		return res, fmt.Errorf("list references: %w", err)
	}

	referenced := make(map[string]struct{}, len(urls))
	var unknown []string
	for _, u := range urls {
		p, ok := s.store.PathFromURL(u)
		if !ok {
			unknown = append(unknown, u)
			continue
		}
		referenced[p] = struct{}{}
	}
	if len(unknown) > 0 {
		sweepRuns.WithLabelValues("aborted").Inc()
		log.Error("unrecognised image urls, nothing deleted", "count", len(unknown), "first", unknown[0])
		return res, fmt.Errorf("%d image urls not owned by this store: %w", len(unknown), ErrUnknownReference)
	}

	cutoff := s.now().Add(-s.grace)
	for _, obj := range objects {
		res.Scanned++
		if _, ok := referenced[obj.Path]; ok {
			res.Referenced++
			continue
		}
		if obj.Created.IsZero() || obj.Created.After(cutoff) {
			res.Young++
			continue
		}
		if err := s.store.Delete(ctx, obj.Path); err != nil {
			res.Failed++
			log.Warn("delete orphan failed", "path", obj.Path, "error", err)
			continue
		}
		res.Deleted++
		orphansDeleted.Inc()
	}

	sweepRuns.WithLabelValues("ok").Inc()
	log.Info("orphan sweep finished",
		"scanned", res.Scanned,
		"referenced", res.Referenced,
		"young", res.Young,
		"deleted", res.Deleted,
		"failed", res.Failed,
	)
	return res, nil
}
