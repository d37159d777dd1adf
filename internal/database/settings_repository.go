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

// SettingsRepository stores per-user notification and monitoring
// preferences. A user without a row gets the defaults.
type SettingsRepository struct {
	db *sqlx.DB
}

func NewSettingsRepository(db *sqlx.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

func (r *SettingsRepository) Get(ctx context.Context, userID string) (*domain.UserSettings, error) {
	var settings domain.UserSettings
	err := r.db.GetContext(ctx, &settings, `
		SELECT user_id, email_notifications, notify_email, slack_webhook_url,
		       monitoring_enabled, max_leads_per_search, platforms,
		       auto_save_high_intent, updated_at
		FROM user_settings
		WHERE user_id = $1
	`, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			defaults := domain.DefaultSettings(userID)
			return &defaults, nil
		}
		return nil, fmt.Errorf("get settings: %w", err)
	}
	return &settings, nil
}

func (r *SettingsRepository) Upsert(ctx context.Context, settings *domain.UserSettings) error {
	settings.UpdatedAt = time.Now().UTC()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO user_settings (
			user_id, email_notifications, notify_email, slack_webhook_url,
			monitoring_enabled, max_leads_per_search, platforms,
			auto_save_high_intent, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (user_id) DO UPDATE SET
			email_notifications = EXCLUDED.email_notifications,
			notify_email = EXCLUDED.notify_email,
			slack_webhook_url = EXCLUDED.slack_webhook_url,
			monitoring_enabled = EXCLUDED.monitoring_enabled,
			max_leads_per_search = EXCLUDED.max_leads_per_search,
			platforms = EXCLUDED.platforms,
			auto_save_high_intent = EXCLUDED.auto_save_high_intent,
			updated_at = EXCLUDED.updated_at
	`,
		settings.UserID,
		settings.EmailNotifications,
		settings.NotifyEmail,
		settings.SlackWebhookURL,
		settings.MonitoringEnabled,
		settings.MaxLeadsPerSearch,
		settings.Platforms,
		settings.AutoSaveHighIntent,
		settings.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert settings: %w", err)
	}
	return nil
}

// ListMonitoringEnabled returns every user who opted into scheduled
// monitoring, for the background scheduler.
func (r *SettingsRepository) ListMonitoringEnabled(ctx context.Context) ([]domain.UserSettings, error) {
	settings := []domain.UserSettings{}
	err := r.db.SelectContext(ctx, &settings, `
		SELECT user_id, email_notifications, notify_email, slack_webhook_url,
		       monitoring_enabled, max_leads_per_search, platforms,
		       auto_save_high_intent, updated_at
		FROM user_settings
		WHERE monitoring_enabled = true
	`)
	if err != nil {
		return nil, fmt.Errorf("list monitoring users: %w", err)
	}
	return settings, nil
}
