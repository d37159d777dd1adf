package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/intentiq/intentiq/internal/domain"
)

const redditHTTPTimeout = 15 * time.Second

// RedditFetcher queries the public Reddit search endpoint, one request per
// keyword, newest posts first.
type RedditFetcher struct {
	baseURL   string
	userAgent string
	limit     int
	client    *http.Client
}

// NewRedditFetcher constructs a fetcher. limit is the number of posts
// requested per keyword.
func NewRedditFetcher(baseURL, userAgent string, limit int) *RedditFetcher {
	return &RedditFetcher{
		baseURL:   baseURL,
		userAgent: userAgent,
		limit:     limit,
		client:    &http.Client{Timeout: redditHTTPTimeout},
	}
}

func (f *RedditFetcher) Platform() domain.Platform {
	return domain.PlatformReddit
}

// redditListing mirrors the subset of the search.json response we read.
type redditListing struct {
	Data struct {
		Children []struct {
			Data redditPost `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

type redditPost struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	SelfText   string  `json:"selftext"`
	Author     string  `json:"author"`
	Permalink  string  `json:"permalink"`
	CreatedUTC float64 `json:"created_utc"`
	Ups        int     `json:"ups"`
}

// Fetch runs one search per keyword. A failing keyword query fails the whole
// platform branch; the adapter isolates that from other platforms.
func (f *RedditFetcher) Fetch(ctx context.Context, keywords []string) ([]domain.Post, error) {
	var posts []domain.Post
	seen := make(map[string]bool)

	for _, keyword := range keywords {
		batch, err := f.search(ctx, keyword)
		if err != nil {
			return posts, fmt.Errorf("keyword %q: %w", keyword, err)
		}
		for _, p := range batch {
			if seen[p.ExternalID] {
				continue
			}
			seen[p.ExternalID] = true
			posts = append(posts, p)
		}
	}
	return posts, nil
}

func (f *RedditFetcher) search(ctx context.Context, keyword string) ([]domain.Post, error) {
	q := url.Values{}
	q.Set("q", keyword)
	q.Set("limit", strconv.Itoa(f.limit))
	q.Set("sort", "new")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		f.baseURL+"/search.json?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}

	var listing redditListing
	if err := json.NewDecoder(resp.Body).Decode(&listing); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	posts := make([]domain.Post, 0, len(listing.Data.Children))
	for _, child := range listing.Data.Children {
		p := child.Data
		content := p.Title
		if p.SelfText != "" {
			content = p.Title + " " + p.SelfText
		}
		if content == "" {
			continue
		}
		posts = append(posts, domain.Post{
			ExternalID: "reddit_" + p.ID,
			Platform:   domain.PlatformReddit,
			Content:    content,
			Author:     p.Author,
			URL:        "https://reddit.com" + p.Permalink,
			CreatedAt:  time.Unix(int64(p.CreatedUTC), 0).UTC(),
			Engagement: p.Ups,
		})
	}
	return posts, nil
}
