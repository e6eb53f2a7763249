package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"facility-logbook-backend/internal/model"
	"facility-logbook-backend/internal/syncer"
)

type adviceRequest struct {
	MachineName string `json:"machineName" binding:"required"`
	Issue       string `json:"issue" binding:"required"`
	PhotoData   string `json:"photoData"`
	Language    string `json:"language"`
}

// Advice handles POST /api/advice. The response degrades to a canned message
// when no key is configured, so the UI never has to special-case it.
func (h *Handler) Advice(c *gin.Context) {
	var req adviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "machineName and issue are required"})
		return
	}
	advice := h.advisor.AnalyzeIssue(c.Request.Context(), req.MachineName, req.Issue, req.PhotoData, req.Language)
	c.JSON(http.StatusOK, gin.H{"advice": advice})
}

type anomalyRequest struct {
	Temp        *float64 `json:"temp" binding:"required"`
	Setpoint    *float64 `json:"setpoint" binding:"required"`
	MachineType string   `json:"machineType"`
}

// Anomaly handles POST /api/anomaly.
func (h *Handler) Anomaly(c *gin.Context) {
	var req anomalyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "temp and setpoint are required"})
		return
	}
	verdict := h.advisor.DetectAnomaly(c.Request.Context(), *req.Temp, *req.Setpoint, req.MachineType)
	c.JSON(http.StatusOK, verdict)
}

type reportRequest struct {
	MachineID string `json:"machineId" binding:"required"`
}

const reportLogLimit = 50

// Report handles POST /api/report. Summarizes the most recent entries for one
// machine.
func (h *Handler) Report(c *gin.Context) {
	var req reportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "machineId is required"})
		return
	}
	machines, err := h.store.Machines(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve machines"})
		return
	}
	var machine *model.Machine
	for i := range machines {
		if machines[i].ID == req.MachineID {
			machine = &machines[i]
			break
		}
	}
	if machine == nil {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "unknown machine"})
		return
	}
	logs, err := h.store.ListLogs(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve logs"})
		return
	}
	recent := make([]model.LogRecord, 0, reportLogLimit)
	for _, rec := range logs {
		if rec.MachineID == nil || *rec.MachineID != machine.ID {
			continue
		}
		recent = append(recent, rec)
		if len(recent) == reportLogLimit {
			break
		}
	}
	report := h.advisor.DailyReport(c.Request.Context(), *machine, recent)
	c.JSON(http.StatusOK, gin.H{"report": report})
}

type advisorKeyRequest struct {
	Key string `json:"key" binding:"required"`
}

// SetAdvisorKey handles POST /api/settings/advisor_key. Admin only. The key
// is stored locally and mirrored to the shared sheet config so other devices
// pick it up on their next sync.
func (h *Handler) SetAdvisorKey(c *gin.Context) {
	if !h.requireAdmin(c) {
		return
	}
	var req advisorKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "key is required"})
		return
	}
	key := strings.TrimSpace(req.Key)
	if len(key) <= 10 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "key looks too short to be valid"})
		return
	}
	if err := h.store.SetSetting(c.Request.Context(), syncer.AdvisorKeySetting, key); err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to save key"})
		return
	}
	if h.cloud != nil {
		if err := h.cloud.SetConfig(c.Request.Context(), syncer.AdvisorKeySetting, key); err != nil {
			c.JSON(http.StatusOK, gin.H{"status": "saved locally, sheet update failed"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "saved"})
}
