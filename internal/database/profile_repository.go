package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/intentiq/intentiq/internal/domain"
)

// ProfileRepository stores user profiles and their subscription state,
// updated by the billing webhook.
type ProfileRepository struct {
	db *sqlx.DB
}

func NewProfileRepository(db *sqlx.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

func (r *ProfileRepository) Get(ctx context.Context, userID string) (*domain.UserProfile, error) {
	var profile domain.UserProfile
	err := r.db.GetContext(ctx, &profile, `
		SELECT user_id, email, full_name, company_name, subscription_tier,
		       subscription_status, subscription_id, created_at, updated_at
		FROM user_profiles
		WHERE user_id = $1
	`, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return &profile, nil
}

func (r *ProfileRepository) Upsert(ctx context.Context, profile *domain.UserProfile) error {
	profile.UpdatedAt = time.Now().UTC()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO user_profiles (
			user_id, email, full_name, company_name, subscription_tier,
			subscription_status, subscription_id, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
		ON CONFLICT (user_id) DO UPDATE SET
			email = EXCLUDED.email,
			full_name = EXCLUDED.full_name,
			company_name = EXCLUDED.company_name,
			subscription_tier = EXCLUDED.subscription_tier,
			subscription_status = EXCLUDED.subscription_status,
			subscription_id = EXCLUDED.subscription_id,
			updated_at = EXCLUDED.updated_at
	`,
		profile.UserID,
		profile.Email,
		profile.FullName,
		profile.CompanyName,
		profile.SubscriptionTier,
		profile.SubscriptionStatus,
		profile.SubscriptionID,
		profile.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert profile: %w", err)
	}
	return nil
}

// UpdateSubscription moves a user to a new tier and status. A tier change
// from the billing webhook takes effect on the next quota check.
func (r *ProfileRepository) UpdateSubscription(ctx context.Context, userID string, tier domain.PlanTier, status, subscriptionID string) error {
	if !tier.Valid() {
		return domain.InvalidInputf("unknown plan tier %q", tier)
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE user_profiles SET
			subscription_tier = $2,
			subscription_status = $3,
			subscription_id = $4,
			updated_at = $5
		WHERE user_id = $1
	`, userID, tier, status, subscriptionID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update subscription: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// FindBySubscriptionID resolves the profile a billing event belongs to.
func (r *ProfileRepository) FindBySubscriptionID(ctx context.Context, subscriptionID string) (*domain.UserProfile, error) {
	var profile domain.UserProfile
	err := r.db.GetContext(ctx, &profile, `
		SELECT user_id, email, full_name, company_name, subscription_tier,
		       subscription_status, subscription_id, created_at, updated_at
		FROM user_profiles
		WHERE subscription_id = $1
	`, subscriptionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find profile by subscription: %w", err)
	}
	return &profile, nil
}
