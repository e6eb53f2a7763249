package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// TriggerSync handles POST /api/sync. A cycle already in flight absorbs the
// request, so the endpoint always reports whether a new one was started.
func (h *Handler) TriggerSync(c *gin.Context) {
	if h.orch == nil {
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "Sync is disabled"})
		return
	}
	started := h.orch.TriggerAsync()
	c.JSON(http.StatusOK, gin.H{"started": started})
}

// SyncStatus handles GET /api/sync/status.
func (h *Handler) SyncStatus(c *gin.Context) {
	if h.orch == nil {
		c.JSON(http.StatusOK, gin.H{"enabled": false})
		return
	}
	lastSync, lastErr, inFlight := h.orch.Status()
	resp := gin.H{"enabled": true, "inFlight": inFlight}
	if !lastSync.IsZero() {
		resp["lastSync"] = lastSync
	}
	if lastErr != "" {
		resp["lastError"] = lastErr
	}
	c.JSON(http.StatusOK, resp)
}
