package core

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/treklog/treklog/config"
	"github.com/treklog/treklog/database"
	"github.com/treklog/treklog/storage"
)

var startTime = time.Now()

// HealthHandler reports liveness of the backing services.
type HealthHandler struct {
	db      *database.Provider
	storage storage.Provider
}

func NewHealthHandler(db *database.Provider, store storage.Provider) *HealthHandler {
	return &HealthHandler{db: db, storage: store}
}

func (h *HealthHandler) Handle(c *gin.Context) {
	checks := gin.H{
		"database": h.checkDatabase(),
		"storage":  h.checkStorage(c),
	}

	httpStatus := http.StatusOK
	for _, result := range checks {
		if result != "ok" {
			httpStatus = http.StatusServiceUnavailable
			break
		}
	}

	c.JSON(httpStatus, gin.H{
		"status":  statusFor(httpStatus),
		"uptime":  time.Since(startTime).Round(time.Second).String(),
		"version": config.Version,
		"checks":  checks,
	})
}

func (h *HealthHandler) checkDatabase() string {
	if h.db == nil {
		return "not configured"
	}
	if err := h.db.Ping(); err != nil {
		return "error: " + err.Error()
	}
	return "ok"
}

func (h *HealthHandler) checkStorage(c *gin.Context) string {
	if h.storage == nil {
		return "not configured"
	}
	if err := h.storage.Health(c.Request.Context()); err != nil {
		return "error: " + err.Error()
	}
	return "ok"
}

func statusFor(httpStatus int) string {
	if httpStatus == http.StatusOK {
		return "ok"
	}
	return "degraded"
}
