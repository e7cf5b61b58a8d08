package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthCheck reports liveness and whether the store answers a ping.
func (h *Handler) HealthCheck(ctx *gin.Context) {
	now := time.Now().UTC().Format(time.RFC3339)

	if err := h.store.Ping(ctx.Request.Context()); err != nil {
		log.Warnf("Health check failed: %v", err)
		ctx.JSON(http.StatusServiceUnavailable, gin.H{
			"status":    "unavailable",
			"message":   "Database is unreachable",
			"timestamp": now,
		})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"message":   "ConsultDesk is running",
		"timestamp": now,
	})
}
