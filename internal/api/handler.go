package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"facility-logbook-backend/internal/advisor"
	"facility-logbook-backend/internal/bridge"
	"facility-logbook-backend/internal/model"
	"facility-logbook-backend/internal/store"
	"facility-logbook-backend/internal/syncer"
)

// CloudAdmin is the bridge subset the admin handlers invoke directly, outside
// the sync cycle. User and shared-config mutations are optimistic: local
// state changes first, the cloud write is best-effort.
type CloudAdmin interface {
	AddUser(ctx context.Context, u bridge.UserRow) error
	DeleteUser(ctx context.Context, username string) error
	SetConfig(ctx context.Context, key, value string) error
}

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store   store.Store
	cloud   CloudAdmin
	orch    *syncer.Orchestrator
	advisor *advisor.Advisor
}

// NewHandler creates a new API handler.
func NewHandler(s store.Store, cloud CloudAdmin, orch *syncer.Orchestrator, adv *advisor.Advisor) *Handler {
	return &Handler{
		store:   s,
		cloud:   cloud,
		orch:    orch,
		advisor: adv,
	}
}

// actingUser resolves the account named by the X-Username header. The UI is
// the trusted session holder; the backend only checks roles.
func (h *Handler) actingUser(c *gin.Context) *model.User {
	username := c.GetHeader("X-Username")
	if username == "" {
		return nil
	}
	user, err := h.store.UserByUsername(c.Request.Context(), username)
	if err != nil {
		return nil
	}
	return user
}

// requireAdmin rejects the request synchronously when the caller is not an
// administrator; no state change happens on rejection.
func (h *Handler) requireAdmin(c *gin.Context) bool {
	user := h.actingUser(c)
	if user == nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unknown user"})
		return false
	}
	if user.Role != model.RoleAdmin {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin only"})
		return false
	}
	return true
}

// triggerSync opportunistically starts a background cycle if none is running.
func (h *Handler) triggerSync() {
	if h.orch != nil {
		h.orch.TriggerAsync()
	}
}
