// Package intent scores social posts for buyer intent.
package intent

import (
	"context"
	"strings"

	"github.com/intentiq/intentiq/internal/domain"
)

// Strategy names accepted by the service configuration.
const (
	StrategyHeuristic = "heuristic"
	StrategyModel     = "model"
)

// Classifier assigns an intent assessment to a single piece of content.
// queryKeywords are the user's search keywords; the classifier reports which
// of them appear in the content.
type Classifier interface {
	Strategy() string
	Classify(ctx context.Context, content string, queryKeywords []string) (domain.Assessment, error)
}

// matchQueryKeywords returns the subset of keywords present in the content,
// case-insensitively, preserving query order.
func matchQueryKeywords(contentLower string, keywords []string) []string {
	var matched []string
	for _, kw := range keywords {
		if kw == "" {
			continue
		}
		if strings.Contains(contentLower, strings.ToLower(kw)) {
			matched = append(matched, kw)
		}
	}
	return matched
}
