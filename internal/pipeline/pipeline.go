// Package pipeline runs the end-to-end lead search: quota, fetch, classify,
// rank, persist, notify.
package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/intentiq/intentiq/internal/domain"
	"github.com/intentiq/intentiq/internal/events"
	"github.com/intentiq/intentiq/internal/logger"
	"github.com/intentiq/intentiq/internal/metrics"
	"github.com/intentiq/intentiq/internal/notify"
	"github.com/intentiq/intentiq/internal/rank"
)

// SearchRequest is the pipeline entry payload.
type SearchRequest struct {
	Keywords  []string `json:"keywords"`
	Platforms []string `json:"platforms"`
	Limit     int      `json:"limit"`
}

// SearchResult is what a completed run returns.
type SearchResult struct {
	Leads   []domain.ScoredPost  `json:"leads"`
	Summary domain.SearchSummary `json:"summary"`
}

// Fetcher produces candidate posts for the requested keywords and platforms.
type Fetcher interface {
	FetchPosts(ctx context.Context, keywords, platforms []string) []domain.Post
}

// Classifier scores a batch of posts.
type Classifier interface {
	Classify(ctx context.Context, posts []domain.Post, keywords []string) []domain.ScoredPost
}

// QuotaChecker gates work on the user's plan limits.
type QuotaChecker interface {
	CheckSearch(ctx context.Context, userID string, keywordCount int) error
	CheckSaveLead(ctx context.Context, userID string) error
}

// LeadStore persists auto-saved leads.
type LeadStore interface {
	Upsert(ctx context.Context, lead *domain.Lead) error
}

// RunStore records completed searches.
type RunStore interface {
	Create(ctx context.Context, run *domain.SearchRun) error
}

// SettingsStore reads the user's preferences.
type SettingsStore interface {
	Get(ctx context.Context, userID string) (*domain.UserSettings, error)
}

// Notifier alerts the user about high-intent results.
type Notifier interface {
	Dispatch(ctx context.Context, settings domain.UserSettings, summary domain.SearchSummary, leads []domain.ScoredPost) notify.Result
}

// Config bounds pipeline behavior.
type Config struct {
	DefaultLimit int
	TopKeywords  int
}

// Service wires the pipeline stages together.
type Service struct {
	fetcher    Fetcher
	classifier Classifier
	quota      QuotaChecker
	leads      LeadStore
	runs       RunStore
	settings   SettingsStore
	notifier   Notifier
	publisher  *events.Publisher
	metrics    *metrics.Metrics
	cfg        Config
	log        logger.Logger
}

func NewService(
	fetcher Fetcher,
	classifier Classifier,
	quota QuotaChecker,
	leads LeadStore,
	runs RunStore,
	settings SettingsStore,
	notifier Notifier,
	publisher *events.Publisher,
	m *metrics.Metrics,
	cfg Config,
	log logger.Logger,
) *Service {
	if cfg.DefaultLimit <= 0 {
		cfg.DefaultLimit = 20
	}
	if cfg.TopKeywords <= 0 {
		cfg.TopKeywords = 10
	}
	return &Service{
		fetcher:    fetcher,
		classifier: classifier,
		quota:      quota,
		leads:      leads,
		runs:       runs,
		settings:   settings,
		notifier:   notifier,
		publisher:  publisher,
		metrics:    m,
		cfg:        cfg,
		log:        log,
	}
}

// Search runs the full pipeline for one user request. Only invalid input and
// quota exhaustion abort; upstream failures degrade to partial results.
func (s *Service) Search(ctx context.Context, userID string, req SearchRequest) (*SearchResult, error) {
	keywords := cleanKeywords(req.Keywords)
	if len(keywords) == 0 {
		return nil, domain.InvalidInputf("at least one keyword is required")
	}
	if userID == "" {
		return nil, domain.InvalidInputf("user id is required")
	}

	settings, err := s.settings.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	platforms := req.Platforms
	if len(platforms) == 0 {
		platforms = settings.Platforms
	}
	limit := req.Limit
	if limit <= 0 {
		limit = s.cfg.DefaultLimit
	}
	if settings.MaxLeadsPerSearch > 0 && limit > settings.MaxLeadsPerSearch {
		limit = settings.MaxLeadsPerSearch
	}

	if err := s.quota.CheckSearch(ctx, userID, len(keywords)); err != nil {
		s.observeQuotaRejection("search")
		return nil, err
	}

	start := time.Now()

	posts := s.fetcher.FetchPosts(ctx, keywords, platforms)
	s.observeFetched(posts)

	scored := s.classifier.Classify(ctx, posts, keywords)
	s.observeClassified(scored)

	ranked := rank.Rank(scored, limit)
	summary := rank.Summarize(ranked, s.cfg.TopKeywords)

	duration := time.Since(start)
	s.recordRun(ctx, userID, keywords, platforms, summary, duration)

	if settings.AutoSaveHighIntent {
		s.autoSaveHighIntent(ctx, userID, ranked)
	}

	result := s.notifier.Dispatch(ctx, *settings, summary, ranked)
	if s.metrics != nil {
		for _, delivery := range result.Deliveries {
			outcome := "ok"
			if delivery.Err != nil {
				outcome = "error"
			}
			s.metrics.NotificationsTotal.WithLabelValues(string(delivery.Channel), outcome).Inc()
		}
	}

	s.publisher.PublishAsync(events.Event{
		EventType: events.EventSearchCompleted,
		UserID:    userID,
		Payload: map[string]any{
			"keywords":    keywords,
			"platforms":   platforms,
			"total":       summary.Total,
			"high_intent": summary.High,
		},
	})

	if s.metrics != nil {
		s.metrics.SearchesTotal.WithLabelValues("ok").Inc()
		s.metrics.SearchDuration.Observe(duration.Seconds())
	}

	s.log.Info("Search completed",
		logger.String("user_id", userID),
		logger.Strings("keywords", keywords),
		logger.Int("results", summary.Total),
		logger.Int("high_intent", summary.High),
		logger.Int64("duration_ms", duration.Milliseconds()),
	)

	return &SearchResult{Leads: ranked, Summary: summary}, nil
}

// SaveLead persists one scored post as a lead, subject to the saved-lead
// quota.
func (s *Service) SaveLead(ctx context.Context, userID string, sp domain.ScoredPost) (*domain.Lead, error) {
	if sp.Post.ExternalID == "" || sp.Post.Content == "" {
		return nil, domain.InvalidInputf("lead requires an external id and content")
	}
	if !domain.IsSupportedPlatform(string(sp.Post.Platform)) {
		return nil, domain.InvalidInputf("unsupported platform %q", sp.Post.Platform)
	}

	if err := s.quota.CheckSaveLead(ctx, userID); err != nil {
		s.observeQuotaRejection("saved leads")
		return nil, err
	}

	lead := domain.NewLead(userID, sp)
	if err := s.leads.Upsert(ctx, &lead); err != nil {
		return nil, err
	}

	s.publisher.PublishAsync(events.Event{
		EventType: events.EventLeadSaved,
		UserID:    userID,
		Payload: map[string]any{
			"lead_id":      lead.ID,
			"platform":     string(lead.Platform),
			"intent_label": string(lead.IntentLabel),
		},
	})

	return &lead, nil
}

func (s *Service) recordRun(ctx context.Context, userID string, keywords, platforms []string, summary domain.SearchSummary, duration time.Duration) {
	run := &domain.SearchRun{
		UserID:            userID,
		Keywords:          domain.StringList(keywords),
		Platforms:         domain.StringList(platforms),
		ResultCount:       summary.Total,
		HighIntentCount:   summary.High,
		MediumIntentCount: summary.Medium,
		LowIntentCount:    summary.Low,
		DurationMs:        duration.Milliseconds(),
	}
	if err := s.runs.Create(ctx, run); err != nil {
		s.log.Warn("Failed to record search run",
			logger.String("user_id", userID),
			logger.Error(err),
		)
	}
}

// autoSaveHighIntent persists HIGH leads until the saved-lead quota fills.
// Failures are logged; the search result is already complete at this point.
func (s *Service) autoSaveHighIntent(ctx context.Context, userID string, ranked []domain.ScoredPost) {
	for _, sp := range ranked {
		if sp.Assessment.Label != domain.IntentHigh {
			continue
		}

		if err := s.quota.CheckSaveLead(ctx, userID); err != nil {
			if domain.IsQuotaExceeded(err) {
				s.observeQuotaRejection("saved leads")
				s.log.Warn("Auto-save stopped at saved-lead quota",
					logger.String("user_id", userID))
				return
			}
			s.log.Warn("Auto-save quota check failed", logger.Error(err))
			return
		}

		lead := domain.NewLead(userID, sp)
		if err := s.leads.Upsert(ctx, &lead); err != nil {
			s.log.Warn("Auto-save failed",
				logger.String("user_id", userID),
				logger.String("external_id", sp.Post.ExternalID),
				logger.Error(err),
			)
		}
	}
}

func (s *Service) observeFetched(posts []domain.Post) {
	if s.metrics == nil {
		return
	}
	for _, p := range posts {
		s.metrics.PostsFetched.WithLabelValues(string(p.Platform)).Inc()
	}
}

func (s *Service) observeClassified(scored []domain.ScoredPost) {
	if s.metrics == nil {
		return
	}
	for _, sp := range scored {
		s.metrics.LeadsClassified.WithLabelValues(string(sp.Assessment.Label)).Inc()
	}
}

func (s *Service) observeQuotaRejection(resource string) {
	if s.metrics != nil {
		s.metrics.QuotaRejectionsTotal.WithLabelValues(resource).Inc()
	}
}

func cleanKeywords(keywords []string) []string {
	var out []string
	for _, kw := range keywords {
		if kw = strings.TrimSpace(kw); kw != "" {
			out = append(out, kw)
		}
	}
	return out
}
