package rank

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/intentiq/intentiq/internal/domain"
)

func scoredPost(id string, platform domain.Platform, label domain.IntentLabel, confidence, engagement int, keywords ...string) domain.ScoredPost {
	return domain.ScoredPost{
		Post: domain.Post{
			ExternalID: id,
			Platform:   platform,
			Engagement: engagement,
		},
		Assessment: domain.Assessment{
			Label:           label,
			Confidence:      confidence,
			MatchedKeywords: keywords,
		},
	}
}

func ids(scored []domain.ScoredPost) []string {
	out := make([]string, 0, len(scored))
	for _, sp := range scored {
		out = append(out, sp.Post.ExternalID)
	}
	return out
}

func TestRankOrdering(t *testing.T) {
	input := []domain.ScoredPost{
		scoredPost("low", domain.PlatformReddit, domain.IntentLow, 95, 500),
		scoredPost("med_conf70", domain.PlatformReddit, domain.IntentMedium, 70, 0),
		scoredPost("high_conf60", domain.PlatformTwitter, domain.IntentHigh, 60, 1),
		scoredPost("high_conf90", domain.PlatformReddit, domain.IntentHigh, 90, 0),
		scoredPost("med_conf70_hot", domain.PlatformTwitter, domain.IntentMedium, 70, 40),
	}

	got := Rank(input, 0)

	assert.Equal(t, []string{
		"high_conf90", "high_conf60", "med_conf70_hot", "med_conf70", "low",
	}, ids(got))
	// Input untouched.
	assert.Equal(t, "low", input[0].Post.ExternalID)
}

func TestRankStableOnTies(t *testing.T) {
	input := []domain.ScoredPost{
		scoredPost("first", domain.PlatformReddit, domain.IntentHigh, 80, 10),
		scoredPost("second", domain.PlatformReddit, domain.IntentHigh, 80, 10),
		scoredPost("third", domain.PlatformReddit, domain.IntentHigh, 80, 10),
	}

	got := Rank(input, 0)
	assert.Equal(t, []string{"first", "second", "third"}, ids(got))
}

func TestRankTruncates(t *testing.T) {
	input := []domain.ScoredPost{
		scoredPost("a", domain.PlatformReddit, domain.IntentHigh, 90, 0),
		scoredPost("b", domain.PlatformReddit, domain.IntentMedium, 60, 0),
		scoredPost("c", domain.PlatformReddit, domain.IntentLow, 30, 0),
	}

	got := Rank(input, 2)
	assert.Equal(t, []string{"a", "b"}, ids(got))
}

func TestRankIdempotent(t *testing.T) {
	input := []domain.ScoredPost{
		scoredPost("b", domain.PlatformReddit, domain.IntentMedium, 60, 5),
		scoredPost("a", domain.PlatformReddit, domain.IntentHigh, 90, 0),
		scoredPost("c", domain.PlatformReddit, domain.IntentLow, 30, 9),
	}

	once := Rank(input, 0)
	twice := Rank(once, 0)
	assert.Equal(t, ids(once), ids(twice))
}

func TestSummarize(t *testing.T) {
	input := []domain.ScoredPost{
		scoredPost("1", domain.PlatformReddit, domain.IntentHigh, 90, 10, "crm"),
		scoredPost("2", domain.PlatformReddit, domain.IntentMedium, 60, 5, "crm", "email marketing"),
		scoredPost("3", domain.PlatformTwitter, domain.IntentLow, 30, 2, "email marketing"),
		scoredPost("4", domain.PlatformTwitter, domain.IntentHigh, 85, 7, "crm"),
	}

	got := Summarize(input, 10)

	assert.Equal(t, 4, got.Total)
	assert.Equal(t, 2, got.High)
	assert.Equal(t, 1, got.Medium)
	assert.Equal(t, 1, got.Low)

	require.Len(t, got.TopKeywords, 2)
	assert.Equal(t, domain.KeywordCount{Keyword: "crm", Count: 3}, got.TopKeywords[0])
	assert.Equal(t, domain.KeywordCount{Keyword: "email marketing", Count: 2}, got.TopKeywords[1])

	assert.Equal(t, domain.PlatformStats{Count: 2, Engagement: 15}, got.Platforms[domain.PlatformReddit])
	assert.Equal(t, domain.PlatformStats{Count: 2, Engagement: 9}, got.Platforms[domain.PlatformTwitter])
}

func TestSummarizeKeywordTiesKeepFirstSeenOrder(t *testing.T) {
	input := []domain.ScoredPost{
		scoredPost("1", domain.PlatformReddit, domain.IntentLow, 30, 0, "beta", "alpha"),
		scoredPost("2", domain.PlatformReddit, domain.IntentLow, 30, 0, "alpha", "beta"),
	}

	got := Summarize(input, 1)
	require.Len(t, got.TopKeywords, 1)
	assert.Equal(t, "beta", got.TopKeywords[0].Keyword)
}

func TestSummarizeEmpty(t *testing.T) {
	got := Summarize(nil, 5)
	assert.Equal(t, 0, got.Total)
	assert.Empty(t, got.TopKeywords)
	assert.Empty(t, got.Platforms)
}
