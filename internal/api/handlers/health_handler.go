package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"golang-admin-command-runner/internal/config"
)

// Pinger reports whether the database answers.
type Pinger interface {
	Ping() error
}

type HealthHandler struct {
	db     Pinger
	logger *logrus.Logger
	cfg    *config.Config
}

func NewHealthHandler(db Pinger, logger *logrus.Logger, cfg *config.Config) *HealthHandler {
	return &HealthHandler{
		db:     db,
		logger: logger,
		cfg:    cfg,
	}
}

// HealthCheck handles GET /health
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	status, database := http.StatusOK, "ok"
	if err := h.db.Ping(); err != nil {
		h.logger.WithError(err).Error("Database health check failed")
		status, database = http.StatusServiceUnavailable, "unreachable"
	}

	c.JSON(status, gin.H{
		"status":    http.StatusText(status),
		"database":  database,
		"version":   h.cfg.Server.Version,
		"timestamp": time.Now().Format(time.RFC3339),
		"service":   "admin-command-runner",
	})
}
