package database

import (
	"context"

	"github.com/intentiq/intentiq/internal/domain"
)

// QuotaStore aggregates the repository reads the quota service needs.
type QuotaStore struct {
	profiles *ProfileRepository
	runs     *SearchRunRepository
	leads    *LeadRepository
	keywords *KeywordRepository
}

// NewQuotaStore bundles the repositories behind the quota read interface.
func NewQuotaStore(profiles *ProfileRepository, runs *SearchRunRepository, leads *LeadRepository, keywords *KeywordRepository) *QuotaStore {
	return &QuotaStore{profiles: profiles, runs: runs, leads: leads, keywords: keywords}
}

func (s *QuotaStore) GetProfile(ctx context.Context, userID string) (*domain.UserProfile, error) {
	return s.profiles.Get(ctx, userID)
}

func (s *QuotaStore) CountSearchesToday(ctx context.Context, userID string) (int, error) {
	return s.runs.CountToday(ctx, userID)
}

func (s *QuotaStore) CountSavedLeads(ctx context.Context, userID string) (int, error) {
	return s.leads.CountByUser(ctx, userID)
}

func (s *QuotaStore) CountKeywords(ctx context.Context, userID string) (int, error) {
	return s.keywords.CountByUser(ctx, userID)
}
