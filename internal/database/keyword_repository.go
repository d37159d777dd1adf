package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/intentiq/intentiq/internal/domain"
)

// KeywordRepository manages the keywords a user monitors. Keywords are
// unique per user, case-insensitively.
type KeywordRepository struct {
	db *sqlx.DB
}

func NewKeywordRepository(db *sqlx.DB) *KeywordRepository {
	return &KeywordRepository{db: db}
}

func (r *KeywordRepository) Create(ctx context.Context, kw *domain.UserKeyword) error {
	if kw.ID == "" {
		kw.ID = uuid.New().String()
	}
	kw.IsActive = true

	query := `
		INSERT INTO user_keywords (id, user_id, keyword, category, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`

	err := r.db.QueryRowContext(ctx, query,
		kw.ID, kw.UserID, kw.Keyword, kw.Category, kw.IsActive, time.Now().UTC(),
	).Scan(&kw.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert keyword: %w", err)
	}
	return nil
}

func (r *KeywordRepository) ListActive(ctx context.Context, userID string) ([]domain.UserKeyword, error) {
	keywords := []domain.UserKeyword{}
	err := r.db.SelectContext(ctx, &keywords, `
		SELECT id, user_id, keyword, category, is_active, created_at
		FROM user_keywords
		WHERE user_id = $1 AND is_active = true
		ORDER BY created_at ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list keywords: %w", err)
	}
	return keywords, nil
}

func (r *KeywordRepository) Delete(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM user_keywords WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete keyword: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *KeywordRepository) CountByUser(ctx context.Context, userID string) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM user_keywords WHERE user_id = $1 AND is_active = true`, userID)
	if err != nil {
		return 0, fmt.Errorf("count keywords: %w", err)
	}
	return count, nil
}
