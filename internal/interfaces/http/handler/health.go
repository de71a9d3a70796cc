package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/socialsync/backend/internal/infrastructure/persistence"
	"go.uber.org/zap"
)

// HealthHandler reports liveness of the service and its backing stores
type HealthHandler struct {
	db     *persistence.Database
	redis  *redis.Client
	logger *zap.Logger
}

// NewHealthHandler creates a new HealthHandler. The redis client may be nil
// when the service runs with the in-memory locker.
func NewHealthHandler(db *persistence.Database, redisClient *redis.Client, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		db:     db,
		redis:  redisClient,
		logger: logger,
	}
}

// RegisterRoutes registers the health check route
func (h *HealthHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/health", h.Check)
}

// Check godoc
// @Summary      Health check
// @Description  Pings the database and Redis and reports overall health.
// @Tags         ops
// @Produce      json
// @Success      200 {object} map[string]string
// @Failure      503 {object} map[string]string
// @Router       /health [get]
func (h *HealthHandler) Check(c *gin.Context) {
	status := gin.H{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	}
	healthy := true

	if err := h.db.Ping(); err != nil {
		h.logger.Warn("health check: database ping failed", zap.Error(err))
		status["database"] = "error"
		healthy = false
	} else {
		status["database"] = "ok"
	}

	if h.redis != nil {
		if err := h.redis.Ping(c.Request.Context()).Err(); err != nil {
			h.logger.Warn("health check: redis ping failed", zap.Error(err))
			status["redis"] = "error"
			healthy = false
		} else {
			status["redis"] = "ok"
		}
	}

	if !healthy {
		status["status"] = "unhealthy"
		c.JSON(http.StatusServiceUnavailable, status)
		return
	}

	c.JSON(http.StatusOK, status)
}
