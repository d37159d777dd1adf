package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v82"

	"github.com/intentiq/intentiq/internal/analytics"
	"github.com/intentiq/intentiq/internal/domain"
	"github.com/intentiq/intentiq/internal/events"
	"github.com/intentiq/intentiq/internal/export"
	"github.com/intentiq/intentiq/internal/logger"
	"github.com/intentiq/intentiq/internal/pipeline"
)

const maxWebhookBody = 65536

// Searcher runs the lead pipeline.
type Searcher interface {
	Search(ctx context.Context, userID string, req pipeline.SearchRequest) (*pipeline.SearchResult, error)
	SaveLead(ctx context.Context, userID string, sp domain.ScoredPost) (*domain.Lead, error)
}

// LeadStore manages saved leads.
type LeadStore interface {
	GetByID(ctx context.Context, userID, id string) (*domain.Lead, error)
	List(ctx context.Context, userID string, filter domain.LeadFilter, limit int) ([]domain.Lead, error)
	Update(ctx context.Context, userID, id string, update domain.LeadUpdate) (*domain.Lead, error)
	Delete(ctx context.Context, userID, id string) error
	ListSince(ctx context.Context, userID string, since time.Time) ([]domain.Lead, error)
}

// KeywordStore manages registered keywords.
type KeywordStore interface {
	Create(ctx context.Context, kw *domain.UserKeyword) error
	ListActive(ctx context.Context, userID string) ([]domain.UserKeyword, error)
	Delete(ctx context.Context, userID, id string) error
}

// SettingsStore manages user preferences.
type SettingsStore interface {
	Get(ctx context.Context, userID string) (*domain.UserSettings, error)
	Upsert(ctx context.Context, settings *domain.UserSettings) error
}

// RunStore reads search history for exports.
type RunStore interface {
	ListSince(ctx context.Context, userID string, since time.Time) ([]domain.SearchRun, error)
}

// KeywordQuota gates keyword registration on plan limits.
type KeywordQuota interface {
	CheckAddKeyword(ctx context.Context, userID string) error
}

// Reporter builds analytics reports.
type Reporter interface {
	Report(ctx context.Context, userID string, timeframe analytics.Timeframe) (*analytics.Report, error)
}

// BillingService processes Stripe webhooks.
type BillingService interface {
	VerifyAndParse(payload []byte, signature string) (*stripe.Event, error)
	HandleEvent(ctx context.Context, event *stripe.Event) error
}

// Handler holds the HTTP handlers and their collaborators.
type Handler struct {
	searcher  Searcher
	leads     LeadStore
	keywords  KeywordStore
	settings  SettingsStore
	runs      RunStore
	quota     KeywordQuota
	reporter  Reporter
	billing   BillingService
	publisher *events.Publisher
	log       logger.Logger
	now       func() time.Time
}

// NewHandler wires the handlers.
func NewHandler(
	searcher Searcher,
	leads LeadStore,
	keywords KeywordStore,
	settings SettingsStore,
	runs RunStore,
	quota KeywordQuota,
	reporter Reporter,
	billing BillingService,
	publisher *events.Publisher,
	log logger.Logger,
) *Handler {
	return &Handler{
		searcher:  searcher,
		leads:     leads,
		keywords:  keywords,
		settings:  settings,
		runs:      runs,
		quota:     quota,
		reporter:  reporter,
		billing:   billing,
		publisher: publisher,
		log:       log,
		now:       time.Now,
	}
}

// Search handles POST /api/v1/search.
func (h *Handler) Search(c *gin.Context) {
	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	result, err := h.searcher.Search(c.Request.Context(), userID(c), pipeline.SearchRequest{
		Keywords:  req.Keywords,
		Platforms: req.Platforms,
		Limit:     req.Limit,
	})
	if err != nil {
		h.log.Error("search failed", logger.Error(err))
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// ListLeads handles GET /api/v1/leads.
func (h *Handler) ListLeads(c *gin.Context) {
	filter := domain.LeadFilter(c.DefaultQuery("filter", string(domain.LeadFilterAll)))

	limit := 50
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = parsed
	}

	leads, err := h.leads.List(c.Request.Context(), userID(c), filter, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"leads": leads, "count": len(leads)})
}

// SaveLead handles POST /api/v1/leads.
func (h *Handler) SaveLead(c *gin.Context) {
	var req saveLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	lead, err := h.searcher.SaveLead(c.Request.Context(), userID(c), req.toScoredPost())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, lead)
}

// GetLead handles GET /api/v1/leads/:id.
func (h *Handler) GetLead(c *gin.Context) {
	lead, err := h.leads.GetByID(c.Request.Context(), userID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, lead)
}

// UpdateLead handles PATCH /api/v1/leads/:id.
func (h *Handler) UpdateLead(c *gin.Context) {
	var req updateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	uid := userID(c)
	lead, err := h.leads.Update(c.Request.Context(), uid, c.Param("id"), domain.LeadUpdate{
		IsContacted: req.IsContacted,
		Notes:       req.Notes,
		Tags:        req.Tags,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	if req.IsContacted != nil && *req.IsContacted {
		h.publisher.PublishAsync(events.Event{
			EventType: events.EventLeadContacted,
			UserID:    uid,
			Payload:   map[string]any{"lead_id": lead.ID},
		})
	}

	c.JSON(http.StatusOK, lead)
}

// DeleteLead handles DELETE /api/v1/leads/:id.
func (h *Handler) DeleteLead(c *gin.Context) {
	if err := h.leads.Delete(c.Request.Context(), userID(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ListKeywords handles GET /api/v1/keywords.
func (h *Handler) ListKeywords(c *gin.Context) {
	keywords, err := h.keywords.ListActive(c.Request.Context(), userID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"keywords": keywords, "count": len(keywords)})
}

// CreateKeyword handles POST /api/v1/keywords.
func (h *Handler) CreateKeyword(c *gin.Context) {
	var req createKeywordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	uid := userID(c)
	if err := h.quota.CheckAddKeyword(c.Request.Context(), uid); err != nil {
		respondError(c, err)
		return
	}

	kw := domain.UserKeyword{
		UserID:   uid,
		Keyword:  req.Keyword,
		Category: req.Category,
	}
	if err := h.keywords.Create(c.Request.Context(), &kw); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, kw)
}

// DeleteKeyword handles DELETE /api/v1/keywords/:id.
func (h *Handler) DeleteKeyword(c *gin.Context) {
	if err := h.keywords.Delete(c.Request.Context(), userID(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// GetSettings handles GET /api/v1/settings.
func (h *Handler) GetSettings(c *gin.Context) {
	settings, err := h.settings.Get(c.Request.Context(), userID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, settings)
}

// UpdateSettings handles PUT /api/v1/settings.
func (h *Handler) UpdateSettings(c *gin.Context) {
	var req updateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	for _, p := range req.Platforms {
		if !domain.IsSupportedPlatform(p) {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("unsupported platform %q", p)})
			return
		}
	}

	settings := domain.UserSettings{
		UserID:             userID(c),
		EmailNotifications: req.EmailNotifications,
		NotifyEmail:        req.NotifyEmail,
		SlackWebhookURL:    req.SlackWebhookURL,
		MonitoringEnabled:  req.MonitoringEnabled,
		MaxLeadsPerSearch:  req.MaxLeadsPerSearch,
		Platforms:          req.Platforms,
		AutoSaveHighIntent: req.AutoSaveHighIntent,
	}
	if err := h.settings.Upsert(c.Request.Context(), &settings); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, settings)
}

// Analytics handles GET /api/v1/analytics.
func (h *Handler) Analytics(c *gin.Context) {
	timeframe, err := analytics.ParseTimeframe(c.Query("timeframe"))
	if err != nil {
		respondError(c, err)
		return
	}

	report, err := h.reporter.Report(c.Request.Context(), userID(c), timeframe)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// Export handles GET /api/v1/export.
func (h *Handler) Export(c *gin.Context) {
	kind, err := export.ParseKind(c.Query("type"))
	if err != nil {
		respondError(c, err)
		return
	}
	format, err := export.ParseFormat(c.Query("format"))
	if err != nil {
		respondError(c, err)
		return
	}

	uid := userID(c)
	var body []byte
	switch kind {
	case export.KindSearches:
		runs, listErr := h.runs.ListSince(c.Request.Context(), uid, time.Time{})
		if listErr != nil {
			respondError(c, listErr)
			return
		}
		body, err = export.Runs(format, runs)
	case export.KindKeywords:
		keywords, listErr := h.keywords.ListActive(c.Request.Context(), uid)
		if listErr != nil {
			respondError(c, listErr)
			return
		}
		body, err = export.Keywords(format, keywords)
	default:
		leads, listErr := h.leads.ListSince(c.Request.Context(), uid, time.Time{})
		if listErr != nil {
			respondError(c, listErr)
			return
		}
		body, err = export.Render(format, leads)
	}
	if err != nil {
		h.log.Error("export failed", logger.String("kind", string(kind)), logger.Error(err))
		respondError(c, err)
		return
	}

	filename := format.FilenameFor(kind, h.now())
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, format.ContentType(), body)
}

// StripeWebhook handles POST /api/v1/webhooks/stripe.
func (h *Handler) StripeWebhook(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable payload"})
		return
	}

	event, err := h.billing.VerifyAndParse(payload, c.GetHeader("Stripe-Signature"))
	if err != nil {
		h.log.Warn("webhook signature rejected", logger.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid signature"})
		return
	}

	if err := h.billing.HandleEvent(c.Request.Context(), event); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}
