package bootstrap

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/stripe/stripe-go/v82"

	"github.com/intentiq/intentiq/internal/analytics"
	"github.com/intentiq/intentiq/internal/api"
	"github.com/intentiq/intentiq/internal/billing"
	"github.com/intentiq/intentiq/internal/config"
	"github.com/intentiq/intentiq/internal/database"
	"github.com/intentiq/intentiq/internal/events"
	"github.com/intentiq/intentiq/internal/intent"
	"github.com/intentiq/intentiq/internal/logger"
	"github.com/intentiq/intentiq/internal/metrics"
	"github.com/intentiq/intentiq/internal/monitor"
	"github.com/intentiq/intentiq/internal/notify"
	"github.com/intentiq/intentiq/internal/pipeline"
	"github.com/intentiq/intentiq/internal/quota"
	"github.com/intentiq/intentiq/internal/sources"
)

// SetupServices wires repositories, the search pipeline and the HTTP layer.
// The returned scheduler is nil when background monitoring is disabled.
func SetupServices(cfg *config.Config, db *sqlx.DB, publisher *events.Publisher, log logger.Logger) (*api.Server, *monitor.Scheduler, error) {
	leadRepo := database.NewLeadRepository(db)
	runRepo := database.NewSearchRunRepository(db)
	keywordRepo := database.NewKeywordRepository(db)
	settingsRepo := database.NewSettingsRepository(db)
	profileRepo := database.NewProfileRepository(db)

	quotaSvc, err := quota.NewService(
		cfg.Quota.Tiers(),
		database.NewQuotaStore(profileRepo, runRepo, leadRepo, keywordRepo),
		log,
	)
	if err != nil {
		return nil, nil, fmt.Errorf("quota service: %w", err)
	}

	adapter := sources.NewAdapter([]sources.Fetcher{
		sources.NewRedditFetcher(cfg.Sources.Reddit.BaseURL, cfg.Sources.Reddit.UserAgent, cfg.Sources.PostsPerKeyword),
		sources.NewTwitterFetcher(cfg.Sources.Twitter.BaseURL, cfg.Sources.Twitter.BearerToken, cfg.Sources.PostsPerKeyword),
	}, cfg.Sources.FetchTimeout, log)

	var classifier intent.Classifier
	switch cfg.Intent.Strategy {
	case intent.StrategyModel:
		classifier = intent.NewModelClassifier(
			cfg.Intent.Model.BaseURL,
			cfg.Intent.Model.APIKey,
			cfg.Intent.Model.Name,
			cfg.Intent.Model.RequestsPerSecond,
		)
	default:
		classifier = intent.NewHeuristic()
	}
	batch := intent.NewBatch(classifier, cfg.Intent.Concurrency, log)

	notifiers := []notify.Notifier{notify.NewSlackNotifier()}
	if cfg.Notifications.SMTP.Host != "" {
		notifiers = append(notifiers, notify.NewEmailNotifier(notify.SMTPConfig{
			Host:     cfg.Notifications.SMTP.Host,
			Port:     cfg.Notifications.SMTP.Port,
			User:     cfg.Notifications.SMTP.User,
			Password: cfg.Notifications.SMTP.Password,
			From:     cfg.Notifications.SMTP.From,
			FromName: cfg.Notifications.SMTP.FromName,
		}))
	}
	dispatcher := notify.NewDispatcher(notifiers, cfg.Notifications.DashboardURL, log)

	m := metrics.New()

	pipelineSvc := pipeline.NewService(
		adapter, batch, quotaSvc,
		leadRepo, runRepo, settingsRepo,
		dispatcher, publisher, m,
		pipeline.Config{DefaultLimit: cfg.Service.DefaultSearchLimit},
		log,
	)

	stripe.Key = cfg.Billing.StripeSecretKey
	billingSvc := billing.NewService(profileRepo, cfg.Billing.StripeWebhookSecret, log)
	analyticsSvc := analytics.NewService(runRepo, leadRepo)

	handler := api.NewHandler(
		pipelineSvc, leadRepo, keywordRepo, settingsRepo, runRepo,
		quotaSvc, analyticsSvc, billingSvc, publisher, log,
	)

	if !cfg.Service.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	api.SetupRoutes(router, handler, m, cfg.Service.CORSAllowedOrigins, log)

	srv := api.NewServer(fmt.Sprintf(":%d", cfg.Service.Port), router, log)

	var scheduler *monitor.Scheduler
	if cfg.Monitoring.Enabled {
		scheduler = monitor.NewScheduler(settingsRepo, keywordRepo, pipelineSvc, cfg.Monitoring.Interval, log)
	}

	return srv, scheduler, nil
}
