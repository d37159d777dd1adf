package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/intentiq/intentiq/internal/domain"
	"github.com/intentiq/intentiq/internal/logger"
	"github.com/intentiq/intentiq/internal/notify"
)

type fakeFetcher struct {
	posts []domain.Post
	calls int
}

func (f *fakeFetcher) FetchPosts(_ context.Context, _, _ []string) []domain.Post {
	f.calls++
	return f.posts
}

type fakeClassifier struct {
	labels map[string]domain.IntentLabel
}

func (f *fakeClassifier) Classify(_ context.Context, posts []domain.Post, keywords []string) []domain.ScoredPost {
	scored := make([]domain.ScoredPost, len(posts))
	for i, p := range posts {
		label := f.labels[p.ExternalID]
		if label == "" {
			label = domain.IntentLow
		}
		scored[i] = domain.ScoredPost{
			Post: p,
			Assessment: domain.Assessment{
				Label:           label,
				Confidence:      50,
				MatchedKeywords: keywords,
			},
		}
	}
	return scored
}

type fakeQuota struct {
	searchErr    error
	saveErr      error
	saveErrAfter int
	saveCalls    int
}

func (f *fakeQuota) CheckSearch(_ context.Context, _ string, _ int) error { return f.searchErr }

func (f *fakeQuota) CheckSaveLead(_ context.Context, _ string) error {
	f.saveCalls++
	if f.saveErr != nil && f.saveCalls > f.saveErrAfter {
		return f.saveErr
	}
	return nil
}

type fakeLeadStore struct {
	saved []domain.Lead
	err   error
}

func (f *fakeLeadStore) Upsert(_ context.Context, lead *domain.Lead) error {
	if f.err != nil {
		return f.err
	}
	lead.ID = "lead-" + lead.ExternalID
	f.saved = append(f.saved, *lead)
	return nil
}

type fakeRunStore struct {
	runs []domain.SearchRun
}

func (f *fakeRunStore) Create(_ context.Context, run *domain.SearchRun) error {
	f.runs = append(f.runs, *run)
	return nil
}

type fakeSettings struct {
	settings domain.UserSettings
}

func (f *fakeSettings) Get(_ context.Context, userID string) (*domain.UserSettings, error) {
	s := f.settings
	if s.UserID == "" {
		s = domain.DefaultSettings(userID)
	}
	return &s, nil
}

type fakeNotifier struct {
	dispatches []domain.SearchSummary
}

func (f *fakeNotifier) Dispatch(_ context.Context, _ domain.UserSettings, summary domain.SearchSummary, _ []domain.ScoredPost) notify.Result {
	f.dispatches = append(f.dispatches, summary)
	return notify.Result{}
}

type pipelineFixture struct {
	svc      *Service
	fetcher  *fakeFetcher
	quota    *fakeQuota
	leads    *fakeLeadStore
	runs     *fakeRunStore
	settings *fakeSettings
	notifier *fakeNotifier
}

func newFixture(posts []domain.Post, labels map[string]domain.IntentLabel) *pipelineFixture {
	f := &pipelineFixture{
		fetcher:  &fakeFetcher{posts: posts},
		quota:    &fakeQuota{},
		leads:    &fakeLeadStore{},
		runs:     &fakeRunStore{},
		settings: &fakeSettings{},
		notifier: &fakeNotifier{},
	}
	f.svc = NewService(
		f.fetcher,
		&fakeClassifier{labels: labels},
		f.quota,
		f.leads,
		f.runs,
		f.settings,
		f.notifier,
		nil,
		nil,
		Config{DefaultLimit: 20, TopKeywords: 10},
		logger.NewNop(),
	)
	return f
}

func searchPosts() []domain.Post {
	return []domain.Post{
		{ExternalID: "reddit_1", Platform: domain.PlatformReddit, Content: "need a crm now", Engagement: 10},
		{ExternalID: "reddit_2", Platform: domain.PlatformReddit, Content: "crm thoughts", Engagement: 3},
		{ExternalID: "twitter_1", Platform: domain.PlatformTwitter, Content: "considering a crm", Engagement: 5},
	}
}

func TestSearchRejectsEmptyKeywords(t *testing.T) {
	f := newFixture(nil, nil)

	_, err := f.svc.Search(context.Background(), "user-1", SearchRequest{Keywords: []string{" ", ""}})

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Zero(t, f.fetcher.calls)
}

func TestSearchQuotaCheckedBeforeFetch(t *testing.T) {
	f := newFixture(searchPosts(), nil)
	f.quota.searchErr = &domain.QuotaExceededError{Resource: "searches per day", Limit: 5, Current: 5}

	_, err := f.svc.Search(context.Background(), "user-1", SearchRequest{Keywords: []string{"crm"}})

	assert.True(t, domain.IsQuotaExceeded(err))
	assert.Zero(t, f.fetcher.calls)
	assert.Empty(t, f.runs.runs)
}

func TestSearchRanksAndRecordsRun(t *testing.T) {
	f := newFixture(searchPosts(), map[string]domain.IntentLabel{
		"reddit_1":  domain.IntentHigh,
		"reddit_2":  domain.IntentLow,
		"twitter_1": domain.IntentMedium,
	})

	result, err := f.svc.Search(context.Background(), "user-1", SearchRequest{
		Keywords:  []string{"crm"},
		Platforms: []string{"reddit", "twitter"},
	})
	require.NoError(t, err)

	require.Len(t, result.Leads, 3)
	assert.Equal(t, "reddit_1", result.Leads[0].Post.ExternalID)
	assert.Equal(t, "twitter_1", result.Leads[1].Post.ExternalID)
	assert.Equal(t, "reddit_2", result.Leads[2].Post.ExternalID)

	assert.Equal(t, 3, result.Summary.Total)
	assert.Equal(t, 1, result.Summary.High)

	require.Len(t, f.runs.runs, 1)
	run := f.runs.runs[0]
	assert.Equal(t, "user-1", run.UserID)
	assert.Equal(t, 3, run.ResultCount)
	assert.Equal(t, 1, run.HighIntentCount)
	assert.Equal(t, 1, run.MediumIntentCount)
	assert.Equal(t, 1, run.LowIntentCount)

	require.Len(t, f.notifier.dispatches, 1)
	assert.Equal(t, 1, f.notifier.dispatches[0].High)
}

func TestSearchRespectsLimit(t *testing.T) {
	f := newFixture(searchPosts(), nil)

	result, err := f.svc.Search(context.Background(), "user-1", SearchRequest{
		Keywords: []string{"crm"},
		Limit:    2,
	})
	require.NoError(t, err)
	assert.Len(t, result.Leads, 2)
	// The run records what was returned, not what was fetched.
	assert.Equal(t, 2, f.runs.runs[0].ResultCount)
}

func TestSearchAutoSavesHighIntent(t *testing.T) {
	f := newFixture(searchPosts(), map[string]domain.IntentLabel{
		"reddit_1":  domain.IntentHigh,
		"twitter_1": domain.IntentHigh,
	})
	f.settings.settings = domain.DefaultSettings("user-1")
	f.settings.settings.AutoSaveHighIntent = true

	_, err := f.svc.Search(context.Background(), "user-1", SearchRequest{Keywords: []string{"crm"}})
	require.NoError(t, err)

	require.Len(t, f.leads.saved, 2)
	assert.Equal(t, domain.IntentHigh, f.leads.saved[0].IntentLabel)
	assert.Equal(t, "user-1", f.leads.saved[0].UserID)
}

func TestSearchAutoSaveStopsAtQuota(t *testing.T) {
	f := newFixture(searchPosts(), map[string]domain.IntentLabel{
		"reddit_1":  domain.IntentHigh,
		"twitter_1": domain.IntentHigh,
	})
	f.settings.settings = domain.DefaultSettings("user-1")
	f.settings.settings.AutoSaveHighIntent = true
	f.quota.saveErr = &domain.QuotaExceededError{Resource: "saved leads", Limit: 1, Current: 1}
	f.quota.saveErrAfter = 1

	_, err := f.svc.Search(context.Background(), "user-1", SearchRequest{Keywords: []string{"crm"}})
	require.NoError(t, err)
	assert.Len(t, f.leads.saved, 1)
}

func TestSaveLead(t *testing.T) {
	f := newFixture(nil, nil)

	sp := domain.ScoredPost{
		Post: domain.Post{
			ExternalID: "reddit_9",
			Platform:   domain.PlatformReddit,
			Content:    "need a crm",
		},
		Assessment: domain.Assessment{Label: domain.IntentHigh, Confidence: 88},
	}

	lead, err := f.svc.SaveLead(context.Background(), "user-1", sp)
	require.NoError(t, err)
	assert.Equal(t, "lead-reddit_9", lead.ID)
	assert.Equal(t, domain.IntentHigh, lead.IntentLabel)
}

func TestSaveLeadValidation(t *testing.T) {
	f := newFixture(nil, nil)

	_, err := f.svc.SaveLead(context.Background(), "user-1", domain.ScoredPost{
		Post: domain.Post{Platform: domain.PlatformReddit},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.svc.SaveLead(context.Background(), "user-1", domain.ScoredPost{
		Post: domain.Post{ExternalID: "x", Content: "y", Platform: "linkedin"},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSaveLeadQuota(t *testing.T) {
	f := newFixture(nil, nil)
	f.quota.saveErr = &domain.QuotaExceededError{Resource: "saved leads", Limit: 50, Current: 50}

	_, err := f.svc.SaveLead(context.Background(), "user-1", domain.ScoredPost{
		Post: domain.Post{ExternalID: "x", Content: "y", Platform: domain.PlatformReddit},
	})
	assert.True(t, domain.IsQuotaExceeded(err))
	assert.Empty(t, f.leads.saved)
}
