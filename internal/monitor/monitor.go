// Package monitor runs scheduled background searches for users who enabled
// keyword monitoring.
package monitor

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/intentiq/intentiq/internal/domain"
	"github.com/intentiq/intentiq/internal/logger"
	"github.com/intentiq/intentiq/internal/pipeline"
)

// SettingsStore lists users who opted into monitoring.
type SettingsStore interface {
	ListMonitoringEnabled(ctx context.Context) ([]domain.UserSettings, error)
}

// KeywordStore reads a user's registered keywords.
type KeywordStore interface {
	ListActive(ctx context.Context, userID string) ([]domain.UserKeyword, error)
}

// Searcher is the pipeline entry the scheduler drives.
type Searcher interface {
	Search(ctx context.Context, userID string, req pipeline.SearchRequest) (*pipeline.SearchResult, error)
}

// Scheduler fires the monitoring cycle on a fixed interval. Each user's run
// is independent; one user failing never stops the cycle.
type Scheduler struct {
	cron     *cron.Cron
	settings SettingsStore
	keywords KeywordStore
	searcher Searcher
	spec     string
	log      logger.Logger
}

func NewScheduler(settings SettingsStore, keywords KeywordStore, searcher Searcher, interval time.Duration, log logger.Logger) *Scheduler {
	if interval <= 0 {
		interval = time.Hour
	}
	return &Scheduler{
		cron:     cron.New(),
		settings: settings,
		keywords: keywords,
		searcher: searcher,
		spec:     fmt.Sprintf("@every %s", interval),
		log:      log,
	}
}

// Start registers the job and starts ticking.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.spec, func() {
		s.RunCycle(ctx)
	})
	if err != nil {
		return fmt.Errorf("register cron job: %w", err)
	}

	s.cron.Start()
	s.log.Info("Monitoring scheduler started", logger.String("spec", s.spec))
	return nil
}

// Stop halts the scheduler and waits for a running cycle to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.log.Info("Monitoring scheduler stopped")
}

// RunCycle executes one monitoring pass over all opted-in users.
func (s *Scheduler) RunCycle(ctx context.Context) {
	users, err := s.settings.ListMonitoringEnabled(ctx)
	if err != nil {
		s.log.Error("Failed to list monitoring users", logger.Error(err))
		return
	}
	if len(users) == 0 {
		s.log.Debug("No users with monitoring enabled")
		return
	}

	s.log.Info("Monitoring cycle started", logger.Int("users", len(users)))

	for _, settings := range users {
		if err := s.runUser(ctx, settings); err != nil {
			s.log.Warn("Monitoring run failed",
				logger.String("user_id", settings.UserID),
				logger.Error(err),
			)
		}
	}

	s.log.Info("Monitoring cycle complete", logger.Int("users", len(users)))
}

func (s *Scheduler) runUser(ctx context.Context, settings domain.UserSettings) error {
	registered, err := s.keywords.ListActive(ctx, settings.UserID)
	if err != nil {
		return fmt.Errorf("load keywords: %w", err)
	}
	if len(registered) == 0 {
		return nil
	}

	keywords := make([]string, 0, len(registered))
	for _, kw := range registered {
		keywords = append(keywords, kw.Keyword)
	}

	_, err = s.searcher.Search(ctx, settings.UserID, pipeline.SearchRequest{
		Keywords:  keywords,
		Platforms: settings.Platforms,
	})
	if err != nil {
		// Quota exhaustion is expected at scale; log it quietly.
		if domain.IsQuotaExceeded(err) {
			s.log.Debug("Monitoring run skipped by quota",
				logger.String("user_id", settings.UserID))
			return nil
		}
		return err
	}
	return nil
}
