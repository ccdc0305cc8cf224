package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/courseloft/api/utils/cache"
	"github.com/courseloft/api/utils/response"
)

// HealthHandler reports service liveness and dependency reachability
type HealthHandler struct {
	db    *gorm.DB
	cache *cache.RedisCache
	start time.Time
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(db *gorm.DB, redisCache *cache.RedisCache) *HealthHandler {
	return &HealthHandler{db: db, cache: redisCache, start: time.Now()}
}

// Check pings the database and cache and reports overall status
func (h *HealthHandler) Check(c *fiber.Ctx) error {
	status := fiber.Map{
		"status": "ok",
		"uptime": time.Since(h.start).Round(time.Second).String(),
	}

	sqlDB, err := h.db.DB()
	if err != nil || sqlDB.PingContext(c.Context()) != nil {
		status["status"] = "degraded"
		status["database"] = "unreachable"
	} else {
		status["database"] = "ok"
	}

	if h.cache != nil {
		if err := h.cache.Ping(c.Context()); err != nil {
			status["status"] = "degraded"
			status["cache"] = "unreachable"
		} else {
			status["cache"] = "ok"
		}
	}

	if status["status"] != "ok" {
		return c.Status(fiber.StatusServiceUnavailable).JSON(status)
	}
	return response.Success(c, status)
}
