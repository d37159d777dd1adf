package domain

import "time"

// SearchRun is an immutable record of one keyword-search execution, kept for
// analytics.
type SearchRun struct {
	ID                string     `db:"id"                 json:"id"`
	UserID            string     `db:"user_id"            json:"user_id"`
	Keywords          StringList `db:"keywords"           json:"keywords"`
	Platforms         StringList `db:"platforms"          json:"platforms"`
	ResultCount       int        `db:"result_count"       json:"result_count"`
	HighIntentCount   int        `db:"high_intent_count"  json:"high_intent_count"`
	MediumIntentCount int        `db:"medium_intent_count" json:"medium_intent_count"`
	LowIntentCount    int        `db:"low_intent_count"   json:"low_intent_count"`
	DurationMs        int64      `db:"duration_ms"        json:"duration_ms"`
	CreatedAt         time.Time  `db:"created_at"         json:"created_at"`
}

// KeywordCount is one entry of a keyword-frequency ranking.
type KeywordCount struct {
	Keyword string `json:"keyword"`
	Count   int    `json:"count"`
}

// PlatformStats aggregates per-platform results within one search.
type PlatformStats struct {
	Count      int `json:"count"`
	Engagement int `json:"engagement"`
}

// SearchSummary holds the per-search aggregate statistics returned alongside
// the ranked lead list.
type SearchSummary struct {
	Total       int                        `json:"total"`
	High        int                        `json:"high"`
	Medium      int                        `json:"medium"`
	Low         int                        `json:"low"`
	TopKeywords []KeywordCount             `json:"top_keywords"`
	Platforms   map[Platform]PlatformStats `json:"platforms"`
}

// UserKeyword is a keyword a user has registered for monitoring.
type UserKeyword struct {
	ID        string    `db:"id"         json:"id"`
	UserID    string    `db:"user_id"    json:"user_id"`
	Keyword   string    `db:"keyword"    json:"keyword"`
	Category  string    `db:"category"   json:"category"`
	IsActive  bool      `db:"is_active"  json:"is_active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
