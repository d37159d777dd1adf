package database

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/intentiq/intentiq/internal/domain"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return sqlx.NewDb(db, "sqlmock"), mock
}

func sampleLead() *domain.Lead {
	return &domain.Lead{
		UserID:      "user-1",
		Platform:    domain.PlatformReddit,
		ExternalID:  "reddit_abc",
		Content:     "Looking for a CRM, budget is $500/month",
		Author:      "founder42",
		URL:         "https://reddit.com/r/smallbusiness/comments/abc/",
		Engagement:  12,
		PostedAt:    time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
		IntentLabel: domain.IntentHigh,
		Confidence:  90,
		Keywords:    domain.StringList{"CRM"},
		Signals:     domain.StringList{"High intent keywords: looking for, budget"},
	}
}

func TestLeadUpsert(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewLeadRepository(db)

	now := time.Now().UTC()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO leads")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).
			AddRow("lead-1", now, now))

	lead := sampleLead()
	require.NoError(t, repo.Upsert(context.Background(), lead))

	assert.Equal(t, "lead-1", lead.ID)
	assert.Equal(t, now, lead.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLeadUpsertRefreshesNotesAndTagsOnConflict(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewLeadRepository(db)

	// Re-saving an existing lead must carry the latest notes and tags into
	// the conflict update, while the contacted state stays untouched.
	now := time.Now().UTC()
	conflictSet := regexp.QuoteMeta("DO UPDATE SET") +
		"[^;]*" + regexp.QuoteMeta("notes = EXCLUDED.notes") +
		"[^;]*" + regexp.QuoteMeta("tags = EXCLUDED.tags")
	mock.ExpectQuery("(?s)" + conflictSet).
		WithArgs(sqlmock.AnyArg(), "user-1", domain.PlatformReddit, "reddit_abc",
			sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(),
			sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(),
			sqlmock.AnyArg(), "pinged them on Friday", domain.StringList{"warm"},
			sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).
			AddRow("lead-1", now, now))

	lead := sampleLead()
	lead.Notes = "pinged them on Friday"
	lead.Tags = domain.StringList{"warm"}
	require.NoError(t, repo.Upsert(context.Background(), lead))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLeadListFilters(t *testing.T) {
	tests := []struct {
		filter domain.LeadFilter
		clause string
	}{
		{domain.LeadFilterAll, "WHERE user_id = $1 ORDER BY"},
		{domain.LeadFilterContacted, "AND is_contacted = true"},
		{domain.LeadFilterUncontacted, "AND is_contacted = false"},
	}

	for _, tt := range tests {
		t.Run(string(tt.filter), func(t *testing.T) {
			db, mock := newMockDB(t)
			repo := NewLeadRepository(db)

			mock.ExpectQuery(regexp.QuoteMeta(tt.clause)).
				WithArgs("user-1", 50).
				WillReturnRows(sqlmock.NewRows([]string{"id", "user_id"}).
					AddRow("lead-1", "user-1"))

			leads, err := repo.List(context.Background(), "user-1", tt.filter, 50)
			require.NoError(t, err)
			assert.Len(t, leads, 1)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestLeadListRejectsUnknownFilter(t *testing.T) {
	db, _ := newMockDB(t)
	repo := NewLeadRepository(db)

	_, err := repo.List(context.Background(), "user-1", "starred", 50)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestLeadDeleteNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewLeadRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM leads")).
		WithArgs("lead-404", "user-1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), "user-1", "lead-404")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestLeadCountByUser(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewLeadRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM leads")).
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

	count, err := repo.CountByUser(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, 7, count)
}
