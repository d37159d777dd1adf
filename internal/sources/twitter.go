package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/intentiq/intentiq/internal/domain"
)

const twitterHTTPTimeout = 15 * time.Second

// TwitterFetcher queries the Twitter API v2 recent-search endpoint. Without
// a bearer token it returns no results rather than failing, so a deployment
// that has not set up API access still searches the remaining platforms.
type TwitterFetcher struct {
	baseURL     string
	bearerToken string
	limit       int
	client      *http.Client
}

func NewTwitterFetcher(baseURL, bearerToken string, limit int) *TwitterFetcher {
	return &TwitterFetcher{
		baseURL:     baseURL,
		bearerToken: bearerToken,
		limit:       limit,
		client:      &http.Client{Timeout: twitterHTTPTimeout},
	}
}

func (f *TwitterFetcher) Platform() domain.Platform {
	return domain.PlatformTwitter
}

type twitterResponse struct {
	Data []struct {
		ID            string    `json:"id"`
		Text          string    `json:"text"`
		AuthorID      string    `json:"author_id"`
		CreatedAt     time.Time `json:"created_at"`
		PublicMetrics struct {
			LikeCount    int `json:"like_count"`
			RetweetCount int `json:"retweet_count"`
		} `json:"public_metrics"`
	} `json:"data"`
}

func (f *TwitterFetcher) Fetch(ctx context.Context, keywords []string) ([]domain.Post, error) {
	if f.bearerToken == "" {
		return nil, nil
	}

	// One combined OR query keeps us inside the recent-search rate limit.
	quoted := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		quoted = append(quoted, `"`+kw+`"`)
	}

	q := url.Values{}
	q.Set("query", strings.Join(quoted, " OR ")+" -is:retweet lang:en")
	q.Set("max_results", fmt.Sprintf("%d", f.limit))
	q.Set("tweet.fields", "created_at,public_metrics,author_id")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		f.baseURL+"/2/tweets/search/recent?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+f.bearerToken)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}

	var payload twitterResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	posts := make([]domain.Post, 0, len(payload.Data))
	for _, tweet := range payload.Data {
		if tweet.Text == "" {
			continue
		}
		posts = append(posts, domain.Post{
			ExternalID: "twitter_" + tweet.ID,
			Platform:   domain.PlatformTwitter,
			Content:    tweet.Text,
			Author:     tweet.AuthorID,
			URL:        "https://twitter.com/i/status/" + tweet.ID,
			CreatedAt:  tweet.CreatedAt,
			Engagement: tweet.PublicMetrics.LikeCount + tweet.PublicMetrics.RetweetCount,
		})
	}
	return posts, nil
}
