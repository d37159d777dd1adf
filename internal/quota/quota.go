// Package quota enforces per-user plan limits before the pipeline does any
// work. Limits are soft: counts are read from current persisted state, so
// concurrent requests can momentarily exceed them.
package quota

import (
	"context"
	"fmt"

	"github.com/intentiq/intentiq/internal/domain"
	"github.com/intentiq/intentiq/internal/logger"
)

// Store is the subset of persistence the quota service reads.
type Store interface {
	GetProfile(ctx context.Context, userID string) (*domain.UserProfile, error)
	CountSearchesToday(ctx context.Context, userID string) (int, error)
	CountSavedLeads(ctx context.Context, userID string) (int, error)
	CountKeywords(ctx context.Context, userID string) (int, error)
}

// Service resolves a user's plan tier and checks requests against the tier's
// limits.
type Service struct {
	table map[domain.PlanTier]domain.PlanLimits
	store Store
	log   logger.Logger
}

// NewService builds a quota service from a validated tier table. Unknown or
// missing tiers resolve to the free tier's limits.
func NewService(table map[domain.PlanTier]domain.PlanLimits, store Store, log logger.Logger) (*Service, error) {
	for _, tier := range []domain.PlanTier{domain.TierFree, domain.TierStarter, domain.TierPro, domain.TierEnterprise} {
		limits, ok := table[tier]
		if !ok {
			return nil, fmt.Errorf("quota table missing tier %s", tier)
		}
		if limits.MaxKeywords <= 0 || limits.MaxSearchesPerDay <= 0 || limits.MaxSavedLeads <= 0 {
			return nil, fmt.Errorf("quota table has non-positive limits for tier %s", tier)
		}
	}
	return &Service{table: table, store: store, log: log}, nil
}

// Limits returns the plan limits for the given user. Users without a profile
// are treated as free tier.
func (s *Service) Limits(ctx context.Context, userID string) (domain.PlanLimits, error) {
	tier := domain.TierFree
	profile, err := s.store.GetProfile(ctx, userID)
	if err == nil && profile != nil && profile.SubscriptionTier.Valid() {
		tier = profile.SubscriptionTier
	}
	return s.table[tier], nil
}

// CheckSearch verifies the keyword count and today's search count against
// the user's plan. Returns a QuotaExceededError before any fetch work is
// spent.
func (s *Service) CheckSearch(ctx context.Context, userID string, keywordCount int) error {
	limits, err := s.Limits(ctx, userID)
	if err != nil {
		return err
	}

	if keywordCount > limits.MaxKeywords {
		return &domain.QuotaExceededError{
			Resource: "keywords per search",
			Limit:    limits.MaxKeywords,
			Current:  keywordCount,
		}
	}

	searches, err := s.store.CountSearchesToday(ctx, userID)
	if err != nil {
		return fmt.Errorf("count searches today: %w", err)
	}
	if searches >= limits.MaxSearchesPerDay {
		return &domain.QuotaExceededError{
			Resource: "searches per day",
			Limit:    limits.MaxSearchesPerDay,
			Current:  searches,
		}
	}

	return nil
}

// CheckSaveLead verifies the saved-lead count against the user's plan.
func (s *Service) CheckSaveLead(ctx context.Context, userID string) error {
	limits, err := s.Limits(ctx, userID)
	if err != nil {
		return err
	}

	saved, err := s.store.CountSavedLeads(ctx, userID)
	if err != nil {
		return fmt.Errorf("count saved leads: %w", err)
	}
	if saved >= limits.MaxSavedLeads {
		return &domain.QuotaExceededError{
			Resource: "saved leads",
			Limit:    limits.MaxSavedLeads,
			Current:  saved,
		}
	}
	return nil
}

// CheckAddKeyword verifies the registered-keyword count against the user's
// plan.
func (s *Service) CheckAddKeyword(ctx context.Context, userID string) error {
	limits, err := s.Limits(ctx, userID)
	if err != nil {
		return err
	}

	count, err := s.store.CountKeywords(ctx, userID)
	if err != nil {
		return fmt.Errorf("count keywords: %w", err)
	}
	if count >= limits.MaxKeywords {
		return &domain.QuotaExceededError{
			Resource: "keywords",
			Limit:    limits.MaxKeywords,
			Current:  count,
		}
	}
	return nil
}
