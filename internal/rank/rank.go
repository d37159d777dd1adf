// Package rank orders scored posts and aggregates search summaries.
package rank

import (
	"sort"

	"github.com/intentiq/intentiq/internal/domain"
)

// Rank sorts scored posts best-first: intent label, then confidence, then
// engagement, all descending. The sort is stable, so equally ranked posts
// keep their fetch order. The result is truncated to limit when limit > 0.
// The input slice is not modified.
func Rank(scored []domain.ScoredPost, limit int) []domain.ScoredPost {
	out := make([]domain.ScoredPost, len(scored))
	copy(out, scored)

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Assessment.Label.Rank() != b.Assessment.Label.Rank() {
			return a.Assessment.Label.Rank() > b.Assessment.Label.Rank()
		}
		if a.Assessment.Confidence != b.Assessment.Confidence {
			return a.Assessment.Confidence > b.Assessment.Confidence
		}
		return a.Post.Engagement > b.Post.Engagement
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Summarize aggregates a result set into per-tier counts, keyword frequency
// and platform breakdown. topN bounds TopKeywords; ties stay in first-seen
// order.
func Summarize(scored []domain.ScoredPost, topN int) domain.SearchSummary {
	summary := domain.SearchSummary{
		Total:     len(scored),
		Platforms: make(map[domain.Platform]domain.PlatformStats),
	}

	keywordCounts := make(map[string]int)
	var keywordOrder []string

	for _, sp := range scored {
		switch sp.Assessment.Label {
		case domain.IntentHigh:
			summary.High++
		case domain.IntentMedium:
			summary.Medium++
		case domain.IntentLow:
			summary.Low++
		}

		for _, kw := range sp.Assessment.MatchedKeywords {
			if keywordCounts[kw] == 0 {
				keywordOrder = append(keywordOrder, kw)
			}
			keywordCounts[kw]++
		}

		stats := summary.Platforms[sp.Post.Platform]
		stats.Count++
		stats.Engagement += sp.Post.Engagement
		summary.Platforms[sp.Post.Platform] = stats
	}

	// First-seen order breaks count ties deterministically.
	sort.SliceStable(keywordOrder, func(i, j int) bool {
		return keywordCounts[keywordOrder[i]] > keywordCounts[keywordOrder[j]]
	})
	if topN > 0 && len(keywordOrder) > topN {
		keywordOrder = keywordOrder[:topN]
	}
	for _, kw := range keywordOrder {
		summary.TopKeywords = append(summary.TopKeywords, domain.KeywordCount{
			Keyword: kw,
			Count:   keywordCounts[kw],
		})
	}

	return summary
}
