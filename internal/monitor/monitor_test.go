package monitor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/intentiq/intentiq/internal/domain"
	"github.com/intentiq/intentiq/internal/logger"
	"github.com/intentiq/intentiq/internal/pipeline"
)

type fakeSettingsStore struct {
	users []domain.UserSettings
}

func (f *fakeSettingsStore) ListMonitoringEnabled(_ context.Context) ([]domain.UserSettings, error) {
	return f.users, nil
}

type fakeKeywordStore struct {
	byUser map[string][]domain.UserKeyword
}

func (f *fakeKeywordStore) ListActive(_ context.Context, userID string) ([]domain.UserKeyword, error) {
	return f.byUser[userID], nil
}

type fakeSearcher struct {
	searched map[string][]string
	errFor   map[string]error
}

func (f *fakeSearcher) Search(_ context.Context, userID string, req pipeline.SearchRequest) (*pipeline.SearchResult, error) {
	if f.searched == nil {
		f.searched = make(map[string][]string)
	}
	f.searched[userID] = req.Keywords
	if err := f.errFor[userID]; err != nil {
		return nil, err
	}
	return &pipeline.SearchResult{}, nil
}

func TestRunCycleSearchesEachUser(t *testing.T) {
	settings := &fakeSettingsStore{users: []domain.UserSettings{
		{UserID: "user-1", MonitoringEnabled: true},
		{UserID: "user-2", MonitoringEnabled: true},
	}}
	keywords := &fakeKeywordStore{byUser: map[string][]domain.UserKeyword{
		"user-1": {{Keyword: "crm"}, {Keyword: "email marketing"}},
		"user-2": {{Keyword: "sales tools"}},
	}}
	searcher := &fakeSearcher{}

	s := NewScheduler(settings, keywords, searcher, time.Hour, logger.NewNop())
	s.RunCycle(context.Background())

	assert.Equal(t, []string{"crm", "email marketing"}, searcher.searched["user-1"])
	assert.Equal(t, []string{"sales tools"}, searcher.searched["user-2"])
}

func TestRunCycleSkipsUsersWithoutKeywords(t *testing.T) {
	settings := &fakeSettingsStore{users: []domain.UserSettings{{UserID: "user-1"}}}
	searcher := &fakeSearcher{}

	s := NewScheduler(settings, &fakeKeywordStore{}, searcher, time.Hour, logger.NewNop())
	s.RunCycle(context.Background())

	assert.Empty(t, searcher.searched)
}

func TestRunCycleIsolatesFailures(t *testing.T) {
	settings := &fakeSettingsStore{users: []domain.UserSettings{
		{UserID: "user-1"},
		{UserID: "user-2"},
	}}
	keywords := &fakeKeywordStore{byUser: map[string][]domain.UserKeyword{
		"user-1": {{Keyword: "crm"}},
		"user-2": {{Keyword: "crm"}},
	}}
	searcher := &fakeSearcher{errFor: map[string]error{"user-1": errors.New("upstream down")}}

	s := NewScheduler(settings, keywords, searcher, time.Hour, logger.NewNop())
	s.RunCycle(context.Background())

	// user-2 still ran despite user-1 failing.
	assert.Contains(t, searcher.searched, "user-2")
}
