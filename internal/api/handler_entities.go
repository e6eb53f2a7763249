package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"facility-logbook-backend/internal/status"
)

// GetMachines handles GET /api/machines. Falls back to the built-in default
// list when the configuration cache is empty.
func (h *Handler) GetMachines(c *gin.Context) {
	machines, err := h.store.Machines(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve machines"})
		return
	}
	c.JSON(http.StatusOK, machines)
}

// GetMeters handles GET /api/meters.
func (h *Handler) GetMeters(c *gin.Context) {
	meters, err := h.store.Meters(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve meters"})
		return
	}
	c.JSON(http.StatusOK, meters)
}

// GetGenerators handles GET /api/generators.
func (h *Handler) GetGenerators(c *gin.Context) {
	gens, err := h.store.Generators(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve generators"})
		return
	}
	c.JSON(http.StatusOK, gens)
}

// GetMachineHealth handles GET /api/machines/:id/health.
func (h *Handler) GetMachineHealth(c *gin.Context) {
	logs, err := h.store.ListLogs(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve logs"})
		return
	}
	health := status.MachineHealth(logs, c.Param("id"), time.Now().UTC())
	c.JSON(http.StatusOK, gin.H{"machineId": c.Param("id"), "health": health})
}

// GetGeneratorService handles GET /api/generators/:id/service.
func (h *Handler) GetGeneratorService(c *gin.Context) {
	logs, err := h.store.ListLogs(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve logs"})
		return
	}
	c.JSON(http.StatusOK, status.GeneratorService(logs, c.Param("id")))
}
