package personalization

import (
	"context"

	"github.com/google/uuid"

	"maxwell/pkg/errors"
	"maxwell/pkg/logger"
)

// Store defines persistence operations for personalization data
type Store interface {
	// SuppressedKinds returns the set of suggestion kinds the user has
	// dismissed past the suppression threshold
	SuppressedKinds(ctx context.Context, userID uuid.UUID) ([]string, error)

	// RecordDismissal increments the dismiss counter for a kind
	RecordDismissal(ctx context.Context, userID uuid.UUID, kind string) error

	// GetInsights loads the user's personalization profile
	GetInsights(ctx context.Context, userID uuid.UUID) (*Insights, error)
}

// Cache is a read-through cache for suppressed-kind sets. Implementations
// return errors.ErrNotFound on miss.
type Cache interface {
	GetSuppressed(ctx context.Context, userID uuid.UUID) ([]string, error)
	SetSuppressed(ctx context.Context, userID uuid.UUID, kinds []string) error
	Invalidate(ctx context.Context, userID uuid.UUID) error
}

// Service answers suppression and insight queries for the pipeline.
type Service struct {
	store Store
	cache Cache
	log   *logger.Logger
}

// NewService creates a personalization service. cache may be nil.
func NewService(store Store, cache Cache) *Service {
	return &Service{
		store: store,
		cache: cache,
		log:   logger.Get().With("component", "personalization"),
	}
}

// ShouldSuppress reports whether findings of the given kind are muted for
// this user. Lookup failures fail open: nothing gets suppressed.
func (s *Service) ShouldSuppress(ctx context.Context, userID uuid.UUID, kind string) bool {
	kinds, err := s.suppressedKinds(ctx, userID)
	if err != nil {
		s.log.Warnf("Suppression lookup failed for %s: %v", userID, err)
		return false
	}
	for _, k := range kinds {
		if k == kind {
			return true
		}
	}
	return false
}

// GetInsights loads the user's personalization profile, or nil when none
// exists.
func (s *Service) GetInsights(ctx context.Context, userID uuid.UUID) (*Insights, error) {
	insights, err := s.store.GetInsights(ctx, userID)
	if err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "load insights")
	}
	return insights, nil
}

// RecordDismissal registers a dismissed suggestion and invalidates the
// cached suppression set.
func (s *Service) RecordDismissal(ctx context.Context, userID uuid.UUID, kind string) error {
	if err := s.store.RecordDismissal(ctx, userID, kind); err != nil {
		return errors.Wrap(err, "record dismissal")
	}
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, userID); err != nil {
			s.log.Warnf("Suppression cache invalidation failed for %s: %v", userID, err)
		}
	}
	return nil
}

func (s *Service) suppressedKinds(ctx context.Context, userID uuid.UUID) ([]string, error) {
	if s.cache != nil {
		kinds, err := s.cache.GetSuppressed(ctx, userID)
		if err == nil {
			return kinds, nil
		}
		if !errors.Is(err, errors.ErrNotFound) {
			s.log.Warnf("Suppression cache read failed for %s: %v", userID, err)
		}
	}

	kinds, err := s.store.SuppressedKinds(ctx, userID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetSuppressed(ctx, userID, kinds); err != nil {
			s.log.Warnf("Suppression cache write failed for %s: %v", userID, err)
		}
	}
	return kinds, nil
}
