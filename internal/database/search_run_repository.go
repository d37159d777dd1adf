package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/intentiq/intentiq/internal/domain"
)

// SearchRunRepository stores the immutable record of each executed search.
type SearchRunRepository struct {
	db *sqlx.DB
}

func NewSearchRunRepository(db *sqlx.DB) *SearchRunRepository {
	return &SearchRunRepository{db: db}
}

func (r *SearchRunRepository) Create(ctx context.Context, run *domain.SearchRun) error {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}

	query := `
		INSERT INTO search_runs (
			id, user_id, keywords, platforms, result_count,
			high_intent_count, medium_intent_count, low_intent_count,
			duration_ms, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at
	`

	err := r.db.QueryRowContext(ctx, query,
		run.ID,
		run.UserID,
		run.Keywords,
		run.Platforms,
		run.ResultCount,
		run.HighIntentCount,
		run.MediumIntentCount,
		run.LowIntentCount,
		run.DurationMs,
		time.Now().UTC(),
	).Scan(&run.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert search run: %w", err)
	}
	return nil
}

// CountToday counts the user's runs since UTC midnight, feeding the daily
// search quota.
func (r *SearchRunRepository) CountToday(ctx context.Context, userID string) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `
		SELECT COUNT(*) FROM search_runs
		WHERE user_id = $1 AND created_at >= date_trunc('day', now() AT TIME ZONE 'utc')
	`, userID)
	if err != nil {
		return 0, fmt.Errorf("count search runs: %w", err)
	}
	return count, nil
}

func (r *SearchRunRepository) ListSince(ctx context.Context, userID string, since time.Time) ([]domain.SearchRun, error) {
	runs := []domain.SearchRun{}
	err := r.db.SelectContext(ctx, &runs, `
		SELECT id, user_id, keywords, platforms, result_count,
		       high_intent_count, medium_intent_count, low_intent_count,
		       duration_ms, created_at
		FROM search_runs
		WHERE user_id = $1 AND created_at >= $2
		ORDER BY created_at ASC
	`, userID, since)
	if err != nil {
		return nil, fmt.Errorf("list search runs: %w", err)
	}
	return runs, nil
}
