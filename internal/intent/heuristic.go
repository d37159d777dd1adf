package intent

import (
	"context"
	"math"
	"strings"

	ahocorasick "github.com/cloudflare/ahocorasick"

	"github.com/intentiq/intentiq/internal/domain"
)

// Phrase sets behind the heuristic scorer. Matching is substring-based over
// lowercased content, so "need" also hits "needed"; that looseness is part
// of the scoring contract. A phrase listed in two sets counts in both.
var (
	highIntentPhrases = []string{
		"need", "looking for", "recommend", "buy", "purchase", "invest",
		"budget", "price", "cost", "funding", "closed round", "just got",
		"ready to", "time to",
	}
	mediumIntentPhrases = []string{
		"considering", "thinking about", "exploring", "research", "compare",
		"alternative", "suggestions", "advice", "help", "anyone using",
	}
	urgencyPhrases = []string{
		"asap", "urgent", "quickly", "fast", "immediately", "now",
		"drowning", "manual", "scaling", "growing",
	}
	budgetPhrases = []string{
		"$", "budget", "cost", "price", "expensive", "affordable", "cheap",
		"investment",
	}
)

// Phrase weights feeding the combined score.
const (
	highWeight    = 3
	mediumWeight  = 2
	urgencyWeight = 2
	budgetWeight  = 1.5
)

// Heuristic scores content with a single Aho-Corasick pass over four
// weighted phrase sets. It is deterministic and needs no external service.
type Heuristic struct {
	matcher *ahocorasick.Matcher
	unique  []string
}

// NewHeuristic builds the phrase automaton once; the classifier is safe for
// concurrent use.
func NewHeuristic() *Heuristic {
	seen := make(map[string]bool)
	var unique []string
	for _, set := range [][]string{highIntentPhrases, mediumIntentPhrases, urgencyPhrases, budgetPhrases} {
		for _, p := range set {
			if !seen[p] {
				seen[p] = true
				unique = append(unique, p)
			}
		}
	}
	return &Heuristic{
		matcher: ahocorasick.NewStringMatcher(unique),
		unique:  unique,
	}
}

func (h *Heuristic) Strategy() string { return StrategyHeuristic }

// Classify never fails; the error return satisfies the Classifier contract.
func (h *Heuristic) Classify(_ context.Context, content string, queryKeywords []string) (domain.Assessment, error) {
	lower := strings.ToLower(content)

	hit := make(map[string]bool)
	for _, idx := range h.matcher.Match([]byte(lower)) {
		hit[h.unique[idx]] = true
	}

	matched := func(set []string) []string {
		var out []string
		for _, p := range set {
			if hit[p] {
				out = append(out, p)
			}
		}
		return out
	}

	high := matched(highIntentPhrases)
	medium := matched(mediumIntentPhrases)
	urgency := matched(urgencyPhrases)
	budget := matched(budgetPhrases)

	score := float64(len(high))*highWeight +
		float64(len(medium))*mediumWeight +
		float64(len(urgency))*urgencyWeight +
		float64(len(budget))*budgetWeight

	var label domain.IntentLabel
	var confidence float64
	switch {
	case score >= 6 || len(high) >= 2:
		label = domain.IntentHigh
		confidence = math.Min(90, 60+score*5)
	case score >= 3 || len(high) >= 1 || len(medium) >= 2:
		label = domain.IntentMedium
		confidence = math.Min(75, 40+score*7)
	default:
		label = domain.IntentLow
		confidence = math.Min(50, 20+score*10)
	}

	var signals []string
	if len(high) > 0 {
		signals = append(signals, "High intent keywords: "+strings.Join(high, ", "))
	}
	if len(urgency) > 0 {
		signals = append(signals, "Urgency indicators: "+strings.Join(urgency, ", "))
	}
	if len(budget) > 0 {
		signals = append(signals, "Budget mentioned: "+strings.Join(budget, ", "))
	}
	if len(medium) > 0 {
		signals = append(signals, "Research phase: "+strings.Join(medium, ", "))
	}

	return domain.Assessment{
		Label:           label,
		Confidence:      int(confidence),
		MatchedKeywords: matchQueryKeywords(lower, queryKeywords),
		Signals:         signals,
		Strategy:        StrategyHeuristic,
	}, nil
}
