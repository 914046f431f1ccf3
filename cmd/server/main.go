package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"inkwell/internal/cache"
	"inkwell/internal/config"
	"inkwell/internal/db"
	"inkwell/internal/logger"
	"inkwell/internal/router"
	"inkwell/internal/services"
	"inkwell/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Info().Msg("No .env file found, reading configuration from the environment")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}
	logger.Init(cfg.App.Env, cfg.App.LogLevel)
	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()

	conn, err := db.Open(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open database")
	}

	var redisClient *redis.Client
	if cfg.UsesRedis() {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Fatal().Err(err).Str("addr", cfg.Redis.Addr).Msg("Failed to connect to redis")
		}
		defer redisClient.Close()
	}

	postCache, err := cache.New(cfg.Cache, redisClient)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create cache")
	}

	media, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create media storage")
	}

	dispatcher, closeDispatcher := newDispatcher(cfg)
	defer closeDispatcher()

	if cfg.App.StaffUsername != "" {
		authors := services.NewAuthorService(conn, postCache, media)
		if err := authors.EnsureStaff(ctx, cfg.App.StaffUsername, cfg.App.StaffEmail, cfg.App.StaffPassword); err != nil {
			log.Fatal().Err(err).Msg("Failed to create staff account")
		}
	}

	engine, err := router.Setup(router.Dependencies{
		Config:     cfg,
		DB:         conn,
		Redis:      redisClient,
		Cache:      postCache,
		Storage:    media,
		Dispatcher: dispatcher,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to set up router")
	}

	srv := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.App.Port).Str("env", cfg.App.Env).Msgf("%s server starting", cfg.App.Name)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Forced shutdown")
	}
	log.Info().Msg("Server stopped")
}

// newDispatcher wires notifications either to the asynq queue or to in-process delivery.
func newDispatcher(cfg *config.Config) (services.Dispatcher, func()) {
	if cfg.Queue.Backend == "asynq" {
		client := asynq.NewClient(asynq.RedisClientOpt{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		log.Info().Str("queue", cfg.Queue.Name).Msg("Notifications go through asynq")
		return services.NewQueueDispatcher(client, cfg.Queue), func() { _ = client.Close() }
	}

	mailer, err := services.NewMailer(cfg.Mail)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create mailer")
	}
	log.Info().Str("mail_backend", cfg.Mail.Backend).Msg("Notifications are delivered inline")
	return services.NewInlineDispatcher(mailer), func() {}
}
