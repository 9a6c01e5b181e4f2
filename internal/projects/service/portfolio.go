package service

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/dreamspace-builders/site-backend/internal/projects/domain"
)

const (
	cacheKeyAll      = "all"
	cacheKeyFeatured = "featured"
)

type ProjectReader interface {
	QueryByFlag(ctx context.Context, flag domain.Flag, value any) ([]domain.Project, error)
	ListAll(ctx context.Context) ([]domain.Project, error)
}

// PortfolioService serves the public read side. Repository results are
// cached for ttl and dropped whenever a project is created.
type PortfolioService struct {
	repo  ProjectReader
	cache *expirable.LRU[string, []domain.Project]
}

// NewPortfolioService caches reads for ttl; a non-positive ttl disables
// caching.
func NewPortfolioService(repo ProjectReader, ttl time.Duration) *PortfolioService {
	s := &PortfolioService{repo: repo}
	if ttl > 0 {
		s.cache = expirable.NewLRU[string, []domain.Project](8, nil, ttl)
	}
	return s
}

// List returns the projects matching query within category, in arrival
// order. An empty category means All.
func (s *PortfolioService) List(ctx context.Context, query, category string) ([]domain.Project, error) {
	if category == "" {
		category = domain.CategoryAll
	}
	if category != domain.CategoryAll {
		if _, err := domain.ParseCategory(category); err != nil {
			return nil, err
		}
	}

	all, err := s.cached(ctx, cacheKeyAll, s.repo.ListAll)
	if err != nil {
		return nil, err
	}
	return domain.Filter(all, query, category), nil
}

// Featured returns the projects flagged for the home page.
func (s *PortfolioService) Featured(ctx context.Context) ([]domain.Project, error) {
	return s.cached(ctx, cacheKeyFeatured, func(ctx context.Context) ([]domain.Project, error) {
		return s.repo.QueryByFlag(ctx, domain.FlagFeatured, true)
	})
}

// Categories returns the facet values in display order, All first.
func (s *PortfolioService) Categories() []string {
	out := make([]string, 0, len(domain.Categories)+1)
	out = append(out, domain.CategoryAll)
	for _, c := range domain.Categories {
		out = append(out, string(c))
	}
	return out
}

func (s *PortfolioService) Invalidate() {
	if s.cache != nil {
		s.cache.Purge()
	}
}

func (s *PortfolioService) cached(ctx context.Context, key string, load func(context.Context) ([]domain.Project, error)) ([]domain.Project, error) {
	if s.cache != nil {
		if v, ok := s.cache.Get(key); ok {
			return v, nil
		}
	}
	v, err := load(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.Add(key, v)
	}
	return v, nil
}
