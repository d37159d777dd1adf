package analytics

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/intentiq/intentiq/internal/domain"
)

type fakeRunStore struct {
	runs []domain.SearchRun
}

func (f *fakeRunStore) ListSince(_ context.Context, _ string, _ time.Time) ([]domain.SearchRun, error) {
	return f.runs, nil
}

type fakeLeadStore struct {
	leads []domain.Lead
}

func (f *fakeLeadStore) ListSince(_ context.Context, _ string, _ time.Time) ([]domain.Lead, error) {
	return f.leads, nil
}

func TestParseTimeframe(t *testing.T) {
	for in, want := range map[string]Timeframe{
		"":    Timeframe7d,
		"7d":  Timeframe7d,
		"30d": Timeframe30d,
		"90d": Timeframe90d,
	} {
		got, err := ParseTimeframe(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := ParseTimeframe("365d")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestReportAggregates(t *testing.T) {
	now := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)

	runs := &fakeRunStore{runs: []domain.SearchRun{
		{
			Keywords:          domain.StringList{"crm", "email marketing"},
			Platforms:         domain.StringList{"reddit", "twitter"},
			ResultCount:       10,
			HighIntentCount:   3,
			MediumIntentCount: 4,
			LowIntentCount:    3,
			CreatedAt:         now.Add(-2 * time.Hour),
		},
		{
			Keywords:        domain.StringList{"crm"},
			Platforms:       domain.StringList{"reddit"},
			ResultCount:     6,
			HighIntentCount: 1,
			LowIntentCount:  5,
			CreatedAt:       now.Add(-26 * time.Hour),
		},
	}}
	leads := &fakeLeadStore{leads: []domain.Lead{
		{ID: "1", IsContacted: true},
		{ID: "2"},
		{ID: "3", IsContacted: true},
	}}

	svc := NewService(runs, leads)
	svc.now = func() time.Time { return now }

	report, err := svc.Report(context.Background(), "user-1", Timeframe7d)
	require.NoError(t, err)

	assert.Equal(t, 2, report.TotalSearches)
	assert.Equal(t, 16, report.TotalLeads)
	assert.Equal(t, 4, report.HighIntentLeads)
	assert.Equal(t, 4, report.MediumIntentLeads)
	assert.Equal(t, 8, report.LowIntentLeads)
	assert.Equal(t, 3, report.SavedLeads)
	assert.Equal(t, 2, report.ContactedLeads)
	assert.Equal(t, 12.5, report.ConversionRate)
	assert.Equal(t, 8.0, report.AverageLeadsPerSearch)

	require.Len(t, report.TopKeywords, 2)
	assert.Equal(t, domain.KeywordCount{Keyword: "crm", Count: 2}, report.TopKeywords[0])

	assert.Equal(t, map[string]int{"reddit": 2, "twitter": 1}, report.PlatformBreakdown)

	assert.Equal(t, IntentDistribution{High: 25, Medium: 25, Low: 50}, report.IntentDistribution)

	require.Len(t, report.DailyStats, 7)
	today := report.DailyStats[6]
	assert.Equal(t, "2026-08-28", today.Date)
	assert.Equal(t, 1, today.Searches)
	assert.Equal(t, 10, today.Leads)
	assert.Equal(t, 3, today.HighIntent)

	yesterday := report.DailyStats[5]
	assert.Equal(t, 1, yesterday.Searches)
	assert.Equal(t, 6, yesterday.Leads)
}

func TestReportEmptyHistory(t *testing.T) {
	svc := NewService(&fakeRunStore{}, &fakeLeadStore{})

	report, err := svc.Report(context.Background(), "user-1", Timeframe30d)
	require.NoError(t, err)

	assert.Zero(t, report.TotalSearches)
	assert.Zero(t, report.ConversionRate)
	assert.Zero(t, report.AverageLeadsPerSearch)
	assert.Equal(t, IntentDistribution{}, report.IntentDistribution)
	assert.Len(t, report.DailyStats, 30)
	assert.Empty(t, report.TopKeywords)
}
