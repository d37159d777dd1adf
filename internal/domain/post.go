// Package domain defines the core types shared across the intentiq service.
package domain

import "time"

// Platform identifies a supported content source.
type Platform string

const (
	PlatformReddit  Platform = "reddit"
	PlatformTwitter Platform = "twitter"
)

// SupportedPlatforms lists every platform the source adapter can query.
var SupportedPlatforms = []Platform{PlatformReddit, PlatformTwitter}

// IsSupportedPlatform reports whether name is a known platform.
func IsSupportedPlatform(name string) bool {
	for _, p := range SupportedPlatforms {
		if string(p) == name {
			return true
		}
	}
	return false
}

// Post is a unit of externally sourced social content, prior to
// classification.
type Post struct {
	ExternalID string    `json:"external_id"`
	Platform   Platform  `json:"platform"`
	Content    string    `json:"content"`
	Author     string    `json:"author,omitempty"`
	URL        string    `json:"url"`
	CreatedAt  time.Time `json:"created_at"`
	// Engagement is an optional upstream popularity signal (upvotes, likes).
	// Used only as a ranking tiebreaker; zero when the source provides none.
	Engagement int `json:"engagement"`
}
