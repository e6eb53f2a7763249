package api

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"facility-logbook-backend/internal/model"
)

// ListLogs handles GET /api/logs with optional kind/entity filters.
func (h *Handler) ListLogs(c *gin.Context) {
	logs, err := h.store.ListLogs(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve logs"})
		return
	}

	recordType := c.Query("type")
	machineID := c.Query("machineId")
	meterID := c.Query("meterId")
	generatorID := c.Query("generatorId")

	filtered := make([]model.LogRecord, 0, len(logs))
	for _, rec := range logs {
		if recordType != "" && string(rec.RecordType) != recordType {
			continue
		}
		if machineID != "" && (rec.MachineID == nil || *rec.MachineID != machineID) {
			continue
		}
		if meterID != "" && (rec.MeterID == nil || *rec.MeterID != meterID) {
			continue
		}
		if generatorID != "" && (rec.GeneratorID == nil || *rec.GeneratorID != generatorID) {
			continue
		}
		filtered = append(filtered, rec)
	}
	c.JSON(http.StatusOK, filtered)
}

// CreateLog handles POST /api/logs: append locally as unsynced, then let the
// orchestrator push it opportunistically in the background.
func (h *Handler) CreateLog(c *gin.Context) {
	var rec model.LogRecord
	if err := c.ShouldBindJSON(&rec); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now().UTC()
	}
	if rec.RecordedBy == "" {
		if user := h.actingUser(c); user != nil {
			rec.RecordedBy = user.Name
		} else {
			rec.RecordedBy = "Unknown User"
		}
	}
	rec.SyncedToSheet = false

	if err := rec.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.store.AppendLog(c.Request.Context(), &rec); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	h.triggerSync()
	c.JSON(http.StatusCreated, rec)
}

// DeleteLog handles DELETE /api/logs/:id. Admin only; deleting an unknown id
// is a no-op success.
func (h *Handler) DeleteLog(c *gin.Context) {
	if !h.requireAdmin(c) {
		return
	}
	if err := h.store.DeleteLog(c.Request.Context(), c.Param("id")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

// ResetSyncFlags handles POST /api/logs/reset_sync: the admin escape hatch
// that forces a full re-push of every record.
func (h *Handler) ResetSyncFlags(c *gin.Context) {
	if !h.requireAdmin(c) {
		return
	}
	if err := h.store.ResetAllSyncFlags(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	h.triggerSync()
	c.JSON(http.StatusOK, gin.H{"status": "reset"})
}

// ExportCSV handles GET /api/logs/export.
func (h *Handler) ExportCSV(c *gin.Context) {
	ctx := c.Request.Context()
	logs, err := h.store.ListLogs(ctx)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve logs"})
		return
	}

	names := make(map[string]string)
	if machines, err := h.store.Machines(ctx); err == nil {
		for _, m := range machines {
			names[m.ID] = m.Name
		}
	}
	if meters, err := h.store.Meters(ctx); err == nil {
		for _, m := range meters {
			names[m.ID] = m.Name
		}
	}
	if gens, err := h.store.Generators(ctx); err == nil {
		for _, g := range gens {
			names[g.ID] = g.Name
		}
	}
	displayName := func(id string) string {
		if name, ok := names[id]; ok {
			return name
		}
		return id
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=export_%d.csv", time.Now().Unix()))

	w := csv.NewWriter(c.Writer)
	w.Write([]string{"ID", "Type", "Name", "Date", "Value", "Details"})
	for _, rec := range logs {
		var value, details string
		switch rec.RecordType {
		case model.RecordMeterReading:
			if rec.Value != nil {
				value = fmt.Sprintf("%g", *rec.Value)
			}
		case model.RecordGeneratorRun:
			if rec.RunHours != nil {
				value = fmt.Sprintf("%g hrs", *rec.RunHours)
			}
			if rec.Notes != nil {
				details = *rec.Notes
			}
		case model.RecordGeneratorService:
			value = "Service"
			if rec.ServiceType != nil {
				details = *rec.ServiceType
			}
		case model.RecordTemperature:
			if rec.CurrentTemp != nil {
				value = fmt.Sprintf("%g", *rec.CurrentTemp)
			}
		case model.RecordMaintenance:
			if rec.IssueDescription != nil {
				value = *rec.IssueDescription
			}
		}
		w.Write([]string{
			rec.ID,
			string(rec.RecordType),
			displayName(rec.EntityID()),
			rec.Timestamp.UTC().Format(time.RFC3339),
			value,
			details,
		})
	}
	w.Flush()
}
