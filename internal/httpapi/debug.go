package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"nexus-chat/internal/telemetry"
)

// registerDebugRoutes wires debug-only endpoints.
func registerDebugRoutes(router *gin.Engine, emitter *telemetry.AuditEmitter, enabled bool) {
	if !enabled {
		return
	}

	router.GET("/debug/audit-test", func(c *gin.Context) {
		if emitter == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "audit emitter not configured"})
			return
		}
		emitter.Emit(c.Request.Context(), "audit_test", "ok", requestIDFromContext(c), nil, 0)
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}
