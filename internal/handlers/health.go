package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

func (h *Handler) HealthCheck(ctx *gin.Context) {
	status, code := "ok", http.StatusOK

	if err := h.pingDatabase(ctx.Request.Context()); err != nil {
		h.logger.Error().Err(err).Msg("database ping failed")
		status, code = "degraded", http.StatusServiceUnavailable
	}

	ctx.JSON(code, gin.H{
		"status":    status,
		"message":   "Taskdeck is running",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

func (h *Handler) pingDatabase(ctx context.Context) error {
	if h.db == nil {
		return nil
	}

	sqlDB, err := h.db.DB()

	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	return sqlDB.PingContext(ctx)
}
