package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type HealthHandler struct {
	db    *gorm.DB
	redis *redis.Client // nil when nothing uses Redis
}

func NewHealthHandler(db *gorm.DB, redisClient *redis.Client) *HealthHandler {
	return &HealthHandler{db: db, redis: redisClient}
}

func (h *HealthHandler) Check(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := gin.H{"database": "ok"}
	code := http.StatusOK

	if sqlDB, err := h.db.DB(); err != nil || sqlDB.PingContext(ctx) != nil {
		status["database"] = "unavailable"
		code = http.StatusServiceUnavailable
	}
	if h.redis != nil {
		status["redis"] = "ok"
		if err := h.redis.Ping(ctx).Err(); err != nil {
			status["redis"] = "unavailable"
			code = http.StatusServiceUnavailable
		}
	}
	c.JSON(code, status)
}
