package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/intentiq/intentiq/internal/domain"
)

const leadColumns = `
	id, user_id, platform, external_id, content, author, url, engagement,
	posted_at, intent_label, confidence, keywords, signals,
	is_contacted, contacted_at, notes, tags, created_at, updated_at`

// LeadRepository persists saved leads. Lead identity is
// (user_id, platform, external_id); Upsert refreshes an existing row instead
// of inserting a duplicate.
type LeadRepository struct {
	db *sqlx.DB
}

func NewLeadRepository(db *sqlx.DB) *LeadRepository {
	return &LeadRepository{db: db}
}

// Upsert inserts the lead or, when the same post was already saved for this
// user, refreshes its scoring fields, notes and tags. The contacted flag and
// its timestamp are never overwritten by a re-save.
func (r *LeadRepository) Upsert(ctx context.Context, lead *domain.Lead) error {
	if lead.ID == "" {
		lead.ID = uuid.New().String()
	}
	now := time.Now().UTC()

	query := `
		INSERT INTO leads (
			id, user_id, platform, external_id, content, author, url,
			engagement, posted_at, intent_label, confidence, keywords,
			signals, is_contacted, notes, tags, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13,
			false, $14, $15, $16, $16)
		ON CONFLICT (user_id, platform, external_id) DO UPDATE SET
			content = EXCLUDED.content,
			engagement = EXCLUDED.engagement,
			intent_label = EXCLUDED.intent_label,
			confidence = EXCLUDED.confidence,
			keywords = EXCLUDED.keywords,
			signals = EXCLUDED.signals,
			notes = EXCLUDED.notes,
			tags = EXCLUDED.tags,
			updated_at = EXCLUDED.updated_at
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRowContext(ctx, query,
		lead.ID,
		lead.UserID,
		lead.Platform,
		lead.ExternalID,
		lead.Content,
		lead.Author,
		lead.URL,
		lead.Engagement,
		lead.PostedAt,
		lead.IntentLabel,
		lead.Confidence,
		lead.Keywords,
		lead.Signals,
		lead.Notes,
		lead.Tags,
		now,
	).Scan(&lead.ID, &lead.CreatedAt, &lead.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert lead: %w", err)
	}
	return nil
}

func (r *LeadRepository) GetByID(ctx context.Context, userID, id string) (*domain.Lead, error) {
	var lead domain.Lead
	query := `SELECT` + leadColumns + ` FROM leads WHERE id = $1 AND user_id = $2`

	if err := r.db.GetContext(ctx, &lead, query, id, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get lead: %w", err)
	}
	return &lead, nil
}

// List returns the user's saved leads newest-first, optionally filtered by
// contacted state.
func (r *LeadRepository) List(ctx context.Context, userID string, filter domain.LeadFilter, limit int) ([]domain.Lead, error) {
	if !filter.Valid() {
		return nil, domain.InvalidInputf("unknown lead filter %q", filter)
	}

	query := `SELECT` + leadColumns + ` FROM leads WHERE user_id = $1`
	switch filter {
	case domain.LeadFilterContacted:
		query += ` AND is_contacted = true`
	case domain.LeadFilterUncontacted:
		query += ` AND is_contacted = false`
	}
	query += ` ORDER BY created_at DESC LIMIT $2`

	leads := []domain.Lead{}
	if err := r.db.SelectContext(ctx, &leads, query, userID, limit); err != nil {
		return nil, fmt.Errorf("list leads: %w", err)
	}
	return leads, nil
}

// Update applies the user-editable fields. contacted_at is stamped the first
// time is_contacted flips to true and never cleared afterwards.
func (r *LeadRepository) Update(ctx context.Context, userID, id string, update domain.LeadUpdate) (*domain.Lead, error) {
	query := `
		UPDATE leads SET
			is_contacted = COALESCE($3, is_contacted),
			contacted_at = CASE
				WHEN $3 = true AND contacted_at IS NULL THEN $6
				ELSE contacted_at
			END,
			notes = COALESCE($4, notes),
			tags = COALESCE($5, tags),
			updated_at = $6
		WHERE id = $1 AND user_id = $2
		RETURNING` + leadColumns

	var tags *domain.StringList
	if update.Tags != nil {
		list := domain.StringList(update.Tags)
		tags = &list
	}

	var lead domain.Lead
	err := r.db.QueryRowxContext(ctx, query,
		id, userID, update.IsContacted, update.Notes, tags, time.Now().UTC(),
	).StructScan(&lead)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("update lead: %w", err)
	}
	return &lead, nil
}

func (r *LeadRepository) Delete(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM leads WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete lead: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *LeadRepository) CountByUser(ctx context.Context, userID string) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM leads WHERE user_id = $1`, userID)
	if err != nil {
		return 0, fmt.Errorf("count leads: %w", err)
	}
	return count, nil
}

// ListSince returns leads created at or after the cutoff, oldest-first, for
// export and analytics.
func (r *LeadRepository) ListSince(ctx context.Context, userID string, since time.Time) ([]domain.Lead, error) {
	query := `SELECT` + leadColumns + `
		FROM leads
		WHERE user_id = $1 AND created_at >= $2
		ORDER BY created_at ASC`

	leads := []domain.Lead{}
	if err := r.db.SelectContext(ctx, &leads, query, userID, since); err != nil {
		return nil, fmt.Errorf("list leads since: %w", err)
	}
	return leads, nil
}
