package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/classfund/classfund/internal/metrics"
	"github.com/classfund/classfund/internal/model"
	"github.com/classfund/classfund/internal/repository"
	"github.com/classfund/classfund/internal/sanitize"
)

// ErrProjectNotFound indicates the project identifier matched nothing.
var ErrProjectNotFound = errors.New("project not found")

// FundingStore is the read-side join the funding service depends on.
type FundingStore interface {
	GetProjectFunding(ctx context.Context, projectID string) (*model.ProjectFunding, error)
	ListProjectFunding(ctx context.Context, limit int) ([]*model.ProjectFunding, error)
}

// FundingCache caches escaped funding snapshots.
type FundingCache interface {
	GetFunding(ctx context.Context, projectID string) (*model.ProjectFunding, error)
	SetFunding(ctx context.Context, projectID string, funding *model.ProjectFunding) error
}

// FundingService serves project funding snapshots.
// Every snapshot leaving this service has been through the sanitizer
// exactly once; cached entries are stored escaped.
type FundingService struct {
	store   FundingStore
	cache   FundingCache
	metrics metrics.Recorder
}

// NewFundingService creates a new FundingService.
// The cache may be nil; reads then always hit the store.
func NewFundingService(store FundingStore, cache FundingCache, recorder metrics.Recorder) *FundingService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &FundingService{
		store:   store,
		cache:   cache,
		metrics: recorder,
	}
}

// ProjectFunding returns the display-ready snapshot for one project.
func (s *FundingService) ProjectFunding(ctx context.Context, projectID string) (*model.ProjectFunding, error) {
	if projectID == "" {
		return nil, ErrProjectNotFound
	}

	s.metrics.IncFundingView()

	if s.cache != nil {
		if funding, err := s.cache.GetFunding(ctx, projectID); err == nil {
			s.metrics.IncFundingCacheHit()
			return funding, nil
		}
		s.metrics.IncFundingCacheMiss()
	}

	funding, err := s.store.GetProjectFunding(ctx, projectID)
	if err != nil {
		if errors.Is(err, repository.ErrProjectNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("load project funding: %w", err)
	}

	sanitize.EscapeFunding(funding)

	if s.cache != nil {
		// Cache failures only cost the next read a store round trip.
		_ = s.cache.SetFunding(ctx, projectID, funding)
	}

	return funding, nil
}

// ListProjects returns display-ready snapshots for the project listing.
// The multi-row path escapes exactly like the single-row path.
func (s *FundingService) ListProjects(ctx context.Context, limit int) ([]*model.ProjectFunding, error) {
	fundings, err := s.store.ListProjectFunding(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list project funding: %w", err)
	}

	for _, funding := range fundings {
		sanitize.EscapeFunding(funding)
	}

	return fundings, nil
}
