package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const defaultSessionSecret = "secret_key_change_me"

// Config is built once at process start and handed to every component that needs it.
type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Queue    QueueConfig
	Mail     MailConfig
	Storage  StorageConfig
	Cache    CacheConfig
	Blog     BlogConfig
}

type AppConfig struct {
	Name          string
	Env           string // development, production
	Port          string
	LogLevel      string
	SessionSecret string
	Schema        string // http or https, used for absolute links in emails
	Domain        string // host[:port]
	StaffUsername string // seeded staff account, skipped when empty
	StaffEmail    string
	StaffPassword string
}

// BaseURL returns the absolute site root without a trailing slash.
func (a AppConfig) BaseURL() string {
	return fmt.Sprintf("%s://%s", a.Schema, strings.TrimSuffix(a.Domain, "/"))
}

func (a AppConfig) IsProduction() bool {
	return a.Env == "production"
}

type DatabaseConfig struct {
	Driver string // postgres, sqlite
	DSN    string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type QueueConfig struct {
	Backend     string // asynq, inline
	Name        string
	MaxRetry    int
	Concurrency int
}

type MailConfig struct {
	Backend  string // smtp, console
	Host     string
	Port     string
	Username string
	Password string
	From     string // fixed sender of site notifications
	Admin    string // site administrator mailbox
}

type StorageConfig struct {
	Backend   string // local, minio
	MediaRoot string
	MediaURL  string
	MinIO     MinIOConfig
}

type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

type CacheConfig struct {
	Backend string // lru, redis
	Size    int
	TTL     time.Duration
}

type BlogConfig struct {
	PostsPerPage       int
	AuthorPostsPerPage int
	CommentsPerPage    int
	ModerationPerPage  int
	FeedSize           int
}

// Load reads the configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Name:          getEnv("APP_NAME", "Inkwell"),
			Env:           getEnv("APP_ENV", "development"),
			Port:          getEnv("PORT", "8080"),
			LogLevel:      getEnv("LOG_LEVEL", "info"),
			SessionSecret: getEnv("SESSION_SECRET", defaultSessionSecret),
			Schema:        getEnv("SITE_SCHEMA", "http"),
			Domain:        getEnv("SITE_DOMAIN", "127.0.0.1:8080"),
			StaffUsername: getEnv("STAFF_USERNAME", ""),
			StaffEmail:    getEnv("STAFF_EMAIL", ""),
			StaffPassword: getEnv("STAFF_PASSWORD", ""),
		},
		Database: DatabaseConfig{
			Driver: getEnv("DB_DRIVER", "postgres"),
			DSN:    getEnv("DATABASE_URL", "host=localhost user=postgres password=postgres dbname=inkwell port=5432 sslmode=disable"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Queue: QueueConfig{
			Backend:     getEnv("QUEUE_BACKEND", "asynq"),
			Name:        getEnv("QUEUE_NAME", "mail"),
			MaxRetry:    getEnvInt("QUEUE_MAX_RETRY", 5),
			Concurrency: getEnvInt("QUEUE_CONCURRENCY", 5),
		},
		Mail: MailConfig{
			Backend:  getEnv("MAIL_BACKEND", "console"),
			Host:     getEnv("SMTP_HOST", "localhost"),
			Port:     getEnv("SMTP_PORT", "25"),
			Username: getEnv("SMTP_USER", ""),
			Password: getEnv("SMTP_PASS", ""),
			From:     getEnv("MAIL_FROM", "admin@example.com"),
			Admin:    getEnv("MAIL_ADMIN", "admin@example.com"),
		},
		Storage: StorageConfig{
			Backend:   getEnv("STORAGE_BACKEND", "local"),
			MediaRoot: getEnv("MEDIA_ROOT", "media"),
			MediaURL:  getEnv("MEDIA_URL", "/media/"),
			MinIO: MinIOConfig{
				Endpoint:  getEnv("MINIO_ENDPOINT", "localhost:9000"),
				AccessKey: getEnv("MINIO_ACCESS_KEY", "minioadmin"),
				SecretKey: getEnv("MINIO_SECRET_KEY", "minioadmin"),
				Bucket:    getEnv("MINIO_BUCKET", "inkwell"),
				UseSSL:    getEnvBool("MINIO_USE_SSL", false),
			},
		},
		Cache: CacheConfig{
			Backend: getEnv("CACHE_BACKEND", "lru"),
			Size:    getEnvInt("CACHE_SIZE", 500),
			TTL:     getEnvDuration("CACHE_TTL", time.Minute),
		},
		Blog: BlogConfig{
			PostsPerPage:       getEnvInt("POSTS_PER_PAGE", 5),
			AuthorPostsPerPage: getEnvInt("AUTHOR_POSTS_PER_PAGE", 3),
			CommentsPerPage:    getEnvInt("COMMENTS_PER_PAGE", 3),
			ModerationPerPage:  getEnvInt("MODERATION_PER_PAGE", 20),
			FeedSize:           getEnvInt("FEED_SIZE", 20),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// Validate rejects combinations that cannot run.
func (c *Config) Validate() error {
	if c.App.IsProduction() && c.App.SessionSecret == defaultSessionSecret {
		return fmt.Errorf("SESSION_SECRET must be set in production")
	}
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.Database.Driver)
	}
	switch c.Queue.Backend {
	case "asynq", "inline":
	default:
		return fmt.Errorf("unsupported QUEUE_BACKEND %q", c.Queue.Backend)
	}
	switch c.Mail.Backend {
	case "smtp", "console":
	default:
		return fmt.Errorf("unsupported MAIL_BACKEND %q", c.Mail.Backend)
	}
	switch c.Storage.Backend {
	case "local", "minio":
	default:
		return fmt.Errorf("unsupported STORAGE_BACKEND %q", c.Storage.Backend)
	}
	switch c.Cache.Backend {
	case "lru", "redis":
	default:
		return fmt.Errorf("unsupported CACHE_BACKEND %q", c.Cache.Backend)
	}
	if c.Blog.PostsPerPage < 1 || c.Blog.AuthorPostsPerPage < 1 || c.Blog.CommentsPerPage < 1 {
		return fmt.Errorf("page sizes must be positive")
	}
	return nil
}

// UsesRedis reports whether any configured backend talks to Redis.
func (c *Config) UsesRedis() bool {
	return c.Queue.Backend == "asynq" || c.Cache.Backend == "redis"
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvBool(key string, defaultValue bool) bool {
	value, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}
