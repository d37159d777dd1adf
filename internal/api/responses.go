package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/intentiq/intentiq/internal/domain"
)

// searchRequest is the body of POST /search.
type searchRequest struct {
	Keywords  []string `json:"keywords" binding:"required"`
	Platforms []string `json:"platforms"`
	Limit     int      `json:"limit"`
}

// saveLeadRequest is the body of POST /leads: a scored post the user picked
// from search results.
type saveLeadRequest struct {
	Platform   string    `json:"platform" binding:"required"`
	ExternalID string    `json:"external_id" binding:"required"`
	Content    string    `json:"content" binding:"required"`
	Author     string    `json:"author"`
	URL        string    `json:"url"`
	Engagement int       `json:"engagement"`
	PostedAt   time.Time `json:"posted_at"`

	IntentLabel string   `json:"intent_label"`
	Confidence  int      `json:"confidence"`
	Keywords    []string `json:"keywords"`
	Signals     []string `json:"signals"`
}

func (r saveLeadRequest) toScoredPost() domain.ScoredPost {
	label := domain.IntentLabel(r.IntentLabel)
	if !label.Valid() {
		label = domain.IntentLow
	}
	return domain.ScoredPost{
		Post: domain.Post{
			ExternalID: r.ExternalID,
			Platform:   domain.Platform(r.Platform),
			Content:    r.Content,
			Author:     r.Author,
			URL:        r.URL,
			Engagement: r.Engagement,
			CreatedAt:  r.PostedAt,
		},
		Assessment: domain.Assessment{
			Label:           label,
			Confidence:      r.Confidence,
			MatchedKeywords: r.Keywords,
			Signals:         r.Signals,
		},
	}
}

// updateLeadRequest is the body of PATCH /leads/:id.
type updateLeadRequest struct {
	IsContacted *bool    `json:"is_contacted"`
	Notes       *string  `json:"notes"`
	Tags        []string `json:"tags"`
}

// createKeywordRequest is the body of POST /keywords.
type createKeywordRequest struct {
	Keyword  string `json:"keyword" binding:"required"`
	Category string `json:"category"`
}

// updateSettingsRequest is the body of PUT /settings.
type updateSettingsRequest struct {
	EmailNotifications bool     `json:"email_notifications"`
	NotifyEmail        string   `json:"notify_email"`
	SlackWebhookURL    string   `json:"slack_webhook_url"`
	MonitoringEnabled  bool     `json:"monitoring_enabled"`
	MaxLeadsPerSearch  int      `json:"max_leads_per_search"`
	Platforms          []string `json:"platforms"`
	AutoSaveHighIntent bool     `json:"auto_save_high_intent"`
}

// respondError maps the domain error taxonomy onto HTTP statuses. Anything
// unrecognized is a 500 with a generic body so internals never leak.
func respondError(c *gin.Context, err error) {
	var qe *domain.QuotaExceededError
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrDuplicate):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.As(err, &qe):
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error":    qe.Error(),
			"resource": qe.Resource,
			"limit":    qe.Limit,
			"current":  qe.Current,
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
