package domain

// IntentLabel is a categorical estimate of a post author's readiness to
// purchase. Labels are ordinal: HIGH > MEDIUM > LOW.
type IntentLabel string

const (
	IntentHigh   IntentLabel = "HIGH"
	IntentMedium IntentLabel = "MEDIUM"
	IntentLow    IntentLabel = "LOW"
)

// Rank returns the ordinal value of a label for sorting (HIGH=3 .. LOW=1).
// Unknown labels rank below LOW.
func (l IntentLabel) Rank() int {
	switch l {
	case IntentHigh:
		return 3
	case IntentMedium:
		return 2
	case IntentLow:
		return 1
	default:
		return 0
	}
}

// Valid reports whether the label is one of the three known tiers.
func (l IntentLabel) Valid() bool {
	return l == IntentHigh || l == IntentMedium || l == IntentLow
}

// Assessment is the output of classifying one post against a keyword set.
type Assessment struct {
	Label IntentLabel `json:"label"`
	// Confidence is an integer 0-100.
	Confidence int `json:"confidence"`
	// MatchedKeywords is the subset of the query keywords present in the
	// post content (case-insensitive substring match).
	MatchedKeywords []string `json:"matched_keywords"`
	// Signals are human-readable fragments explaining the score.
	Signals []string `json:"signals"`
	// Strategy names the classifier that produced this assessment.
	Strategy string `json:"strategy,omitempty"`
}

// ScoredPost pairs a post with its intent assessment.
type ScoredPost struct {
	Post       Post       `json:"post"`
	Assessment Assessment `json:"assessment"`
}
