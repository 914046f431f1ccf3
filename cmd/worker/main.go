// Command worker delivers the notification emails queued by the web server.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"inkwell/internal/config"
	"inkwell/internal/logger"
	"inkwell/internal/services"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Info().Msg("No .env file found, reading configuration from the environment")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}
	logger.Init(cfg.App.Env, cfg.App.LogLevel)

	mailer, err := services.NewMailer(cfg.Mail)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create mailer")
	}

	mux := asynq.NewServeMux()
	services.NewNotificationTaskHandler(mailer).Register(mux)

	srv := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		},
		asynq.Config{
			Queues:      map[string]int{cfg.Queue.Name: 1},
			Concurrency: cfg.Queue.Concurrency,
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				retried, _ := asynq.GetRetryCount(ctx)
				maxRetry, _ := asynq.GetMaxRetry(ctx)
				log.Error().Err(err).
					Str("type", task.Type()).
					Int("retry", retried).
					Int("max_retry", maxRetry).
					Msg("Task failed")
			}),
		},
	)

	log.Info().Str("queue", cfg.Queue.Name).Int("concurrency", cfg.Queue.Concurrency).Msg("Worker starting")
	if err := srv.Start(mux); err != nil {
		log.Fatal().Err(err).Msg("Worker failed to start")
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down worker...")
	srv.Shutdown()
	log.Info().Msg("Worker stopped")
}
