package intent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/intentiq/intentiq/internal/domain"
)

func TestHeuristicHighIntent(t *testing.T) {
	h := NewHeuristic()

	got, err := h.Classify(context.Background(),
		"Looking for a CRM, budget is $500/month", []string{"CRM"})
	require.NoError(t, err)

	assert.Equal(t, domain.IntentHigh, got.Label)
	assert.Equal(t, 90, got.Confidence)
	assert.Equal(t, []string{"CRM"}, got.MatchedKeywords)
	assert.Equal(t, []string{
		"High intent keywords: looking for, budget",
		"Budget mentioned: $, budget",
	}, got.Signals)
	assert.Equal(t, StrategyHeuristic, got.Strategy)
}

func TestHeuristicLabels(t *testing.T) {
	h := NewHeuristic()

	tests := []struct {
		name       string
		content    string
		label      domain.IntentLabel
		confidence int
	}{
		{
			name:       "no phrases",
			content:    "lovely weather today",
			label:      domain.IntentLow,
			confidence: 20,
		},
		{
			name:       "single budget phrase stays low",
			content:    "that one was cheap",
			label:      domain.IntentLow,
			confidence: 35,
		},
		{
			name:       "single high phrase promotes to medium",
			content:    "we need something better",
			label:      domain.IntentMedium,
			confidence: 61,
		},
		{
			name:       "two research phrases promote to medium",
			content:    "considering a switch, any advice?",
			label:      domain.IntentMedium,
			confidence: 68,
		},
		{
			name:       "urgency alone reaches medium",
			content:    "this is urgent, we are drowning",
			label:      domain.IntentMedium,
			confidence: 68,
		},
		{
			name:       "two high phrases promote to high",
			content:    "ready to buy once the team signs off",
			label:      domain.IntentHigh,
			confidence: 90,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := h.Classify(context.Background(), tt.content, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.label, got.Label)
			assert.Equal(t, tt.confidence, got.Confidence)
		})
	}
}

func TestHeuristicCaseInsensitive(t *testing.T) {
	h := NewHeuristic()

	upper, err := h.Classify(context.Background(), "LOOKING FOR A NEW VENDOR ASAP", nil)
	require.NoError(t, err)
	lower, err := h.Classify(context.Background(), "looking for a new vendor asap", nil)
	require.NoError(t, err)

	assert.Equal(t, lower.Label, upper.Label)
	assert.Equal(t, lower.Confidence, upper.Confidence)
	assert.Equal(t, lower.Signals, upper.Signals)
}

func TestHeuristicQueryKeywordSubset(t *testing.T) {
	h := NewHeuristic()

	got, err := h.Classify(context.Background(),
		"anyone using email marketing tools?",
		[]string{"CRM", "email marketing", "sales tools"})
	require.NoError(t, err)

	assert.Equal(t, []string{"email marketing"}, got.MatchedKeywords)
}

func TestHeuristicConfidenceMonotonic(t *testing.T) {
	h := NewHeuristic()

	weak, err := h.Classify(context.Background(), "we need a tool", nil)
	require.NoError(t, err)
	strong, err := h.Classify(context.Background(),
		"we need a tool, ready to buy, budget approved, urgent", nil)
	require.NoError(t, err)

	assert.Greater(t, strong.Label.Rank(), weak.Label.Rank())
	assert.GreaterOrEqual(t, strong.Confidence, weak.Confidence)
}
