// Package sources fetches raw posts from external social platforms.
package sources

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/intentiq/intentiq/internal/domain"
	"github.com/intentiq/intentiq/internal/logger"
)

// Fetcher retrieves posts from a single platform for a set of keywords.
// One attempt per call; retries and rate limits are the caller's concern.
type Fetcher interface {
	Platform() domain.Platform
	Fetch(ctx context.Context, keywords []string) ([]domain.Post, error)
}

// Adapter fans a fetch out across the requested platforms and merges the
// results. A failing platform never aborts the others: its failure is logged
// and it contributes zero posts.
type Adapter struct {
	fetchers map[domain.Platform]Fetcher
	timeout  time.Duration
	log      logger.Logger
}

// NewAdapter builds an adapter over the given fetchers. timeout bounds each
// platform branch so one stalled upstream cannot hold the whole search.
func NewAdapter(fetchers []Fetcher, timeout time.Duration, log logger.Logger) *Adapter {
	byPlatform := make(map[domain.Platform]Fetcher, len(fetchers))
	for _, f := range fetchers {
		byPlatform[f.Platform()] = f
	}
	return &Adapter{fetchers: byPlatform, timeout: timeout, log: log}
}

// FetchPosts queries each requested platform concurrently and returns the
// merged posts that mention at least one keyword. Unsupported platform names
// are skipped. Results may be incomplete when an upstream fails; callers
// should treat empty results as non-authoritative.
func (a *Adapter) FetchPosts(ctx context.Context, keywords, platforms []string) []domain.Post {
	type branch struct {
		posts []domain.Post
		err   error
		name  domain.Platform
	}

	var selected []Fetcher
	for _, name := range platforms {
		f, ok := a.fetchers[domain.Platform(name)]
		if !ok {
			a.log.Debug("Skipping unsupported platform", logger.String("platform", name))
			continue
		}
		selected = append(selected, f)
	}

	results := make(chan branch, len(selected))
	var wg sync.WaitGroup
	for _, f := range selected {
		wg.Add(1)
		go func(f Fetcher) {
			defer wg.Done()
			fetchCtx, cancel := context.WithTimeout(ctx, a.timeout)
			defer cancel()

			posts, err := f.Fetch(fetchCtx, keywords)
			results <- branch{posts: posts, err: err, name: f.Platform()}
		}(f)
	}
	wg.Wait()
	close(results)

	var merged []domain.Post
	for b := range results {
		if b.err != nil {
			a.log.Warn("Platform fetch failed",
				logger.String("platform", string(b.name)),
				logger.Error(b.err),
			)
			continue
		}
		merged = append(merged, b.posts...)
	}

	filtered := FilterByKeywords(merged, keywords)

	a.log.Info("Fetched posts",
		logger.Strings("keywords", keywords),
		logger.Int("platforms", len(selected)),
		logger.Int("fetched", len(merged)),
		logger.Int("matching", len(filtered)),
	)

	return filtered
}

// FilterByKeywords keeps only posts whose content contains at least one of
// the keywords, case-insensitively. This is a substring test, not a token
// match; the looser semantic is deliberate because it affects recall.
func FilterByKeywords(posts []domain.Post, keywords []string) []domain.Post {
	lowered := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		if kw = strings.TrimSpace(kw); kw != "" {
			lowered = append(lowered, strings.ToLower(kw))
		}
	}

	var out []domain.Post
	for _, post := range posts {
		content := strings.ToLower(post.Content)
		for _, kw := range lowered {
			if strings.Contains(content, kw) {
				out = append(out, post)
				break
			}
		}
	}
	return out
}
