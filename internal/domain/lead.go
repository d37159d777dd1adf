package domain

import "time"

// Lead is a post enriched with its intent assessment plus user-tracked
// follow-up state. Identity is (UserID, Platform, ExternalID); re-ingesting
// the same external post for the same user upserts rather than duplicates.
type Lead struct {
	ID         string    `db:"id"          json:"id"`
	UserID     string    `db:"user_id"     json:"user_id"`
	Platform   Platform  `db:"platform"    json:"platform"`
	ExternalID string    `db:"external_id" json:"external_id"`
	Content    string    `db:"content"     json:"content"`
	Author     string    `db:"author"      json:"author,omitempty"`
	URL        string    `db:"url"         json:"url"`
	Engagement int       `db:"engagement"  json:"engagement"`
	PostedAt   time.Time `db:"posted_at"   json:"posted_at"`

	IntentLabel IntentLabel `db:"intent_label" json:"intent_label"`
	Confidence  int         `db:"confidence"   json:"confidence"`
	Keywords    StringList  `db:"keywords"     json:"keywords"`
	Signals     StringList  `db:"signals"      json:"signals"`

	IsContacted bool       `db:"is_contacted" json:"is_contacted"`
	ContactedAt *time.Time `db:"contacted_at" json:"contacted_at,omitempty"`
	Notes       string     `db:"notes"        json:"notes"`
	Tags        StringList `db:"tags"         json:"tags"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// LeadFilter narrows saved-lead listings.
type LeadFilter string

const (
	LeadFilterAll         LeadFilter = "all"
	LeadFilterContacted   LeadFilter = "contacted"
	LeadFilterUncontacted LeadFilter = "uncontacted"
)

// Valid reports whether the filter is one of the known values.
func (f LeadFilter) Valid() bool {
	return f == LeadFilterAll || f == LeadFilterContacted || f == LeadFilterUncontacted
}

// LeadUpdate carries the mutable user state of a lead. Nil fields are left
// untouched.
type LeadUpdate struct {
	IsContacted *bool    `json:"is_contacted,omitempty"`
	Notes       *string  `json:"notes,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

// NewLead builds a Lead from a scored post for the given user. The ID and
// timestamps are assigned by the repository on upsert.
func NewLead(userID string, sp ScoredPost) Lead {
	return Lead{
		UserID:      userID,
		Platform:    sp.Post.Platform,
		ExternalID:  sp.Post.ExternalID,
		Content:     sp.Post.Content,
		Author:      sp.Post.Author,
		URL:         sp.Post.URL,
		Engagement:  sp.Post.Engagement,
		PostedAt:    sp.Post.CreatedAt,
		IntentLabel: sp.Assessment.Label,
		Confidence:  sp.Assessment.Confidence,
		Keywords:    sp.Assessment.MatchedKeywords,
		Signals:     sp.Assessment.Signals,
	}
}
