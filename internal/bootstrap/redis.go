package bootstrap

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/intentiq/intentiq/internal/config"
	"github.com/intentiq/intentiq/internal/events"
	"github.com/intentiq/intentiq/internal/logger"
)

// SetupEventPublisher connects to Redis for the event stream. Redis is
// optional: if it is unreachable the publisher is nil and events are dropped.
func SetupEventPublisher(cfg *config.Config, log logger.Logger) *events.Publisher {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.Database,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Warn("redis not available, events disabled",
			logger.String("addr", cfg.Redis.Addr),
			logger.Error(err),
		)
		_ = client.Close()
		return nil
	}

	log.Info("event publisher initialized",
		logger.String("addr", cfg.Redis.Addr),
		logger.String("stream", cfg.Redis.Stream),
	)
	return events.NewPublisher(client, cfg.Redis.Stream, log)
}
