package database

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/intentiq/intentiq/internal/domain"
)

func TestKeywordCreate(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewKeywordRepository(db)

	now := time.Now().UTC()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO user_keywords")).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(now))

	kw := &domain.UserKeyword{UserID: "user-1", Keyword: "crm"}
	require.NoError(t, repo.Create(context.Background(), kw))

	assert.NotEmpty(t, kw.ID)
	assert.True(t, kw.IsActive)
	assert.Equal(t, now, kw.CreatedAt)
}

func TestKeywordCreateDuplicate(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewKeywordRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO user_keywords")).
		WillReturnError(&pq.Error{Code: "23505"})

	err := repo.Create(context.Background(), &domain.UserKeyword{UserID: "user-1", Keyword: "crm"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestKeywordDeleteNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewKeywordRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM user_keywords")).
		WithArgs("kw-404", "user-1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, repo.Delete(context.Background(), "user-1", "kw-404"), domain.ErrNotFound)
}

func TestSettingsGetDefaultsWhenAbsent(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSettingsRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM user_settings")).
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}))

	settings, err := repo.Get(context.Background(), "user-1")
	require.NoError(t, err)

	assert.Equal(t, "user-1", settings.UserID)
	assert.True(t, settings.EmailNotifications)
	assert.False(t, settings.MonitoringEnabled)
	assert.Equal(t, 50, settings.MaxLeadsPerSearch)
}

func TestSearchRunCountToday(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSearchRunRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM search_runs")).
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(5))

	count, err := repo.CountToday(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, 5, count)
}
