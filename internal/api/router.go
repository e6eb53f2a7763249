package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"facility-logbook-backend/config"
	"facility-logbook-backend/internal/advisor"
	"facility-logbook-backend/internal/mw"
	"facility-logbook-backend/internal/store"
	"facility-logbook-backend/internal/syncer"
)

// NewRouter creates and configures a new Gin router.
func NewRouter(cfg *config.Config, s store.Store, cloud CloudAdmin, orch *syncer.Orchestrator, adv *advisor.Advisor) *gin.Engine {
	r := gin.Default()

	handler := NewHandler(s, cloud, orch, adv)

	rateLimiter := mw.RateLimiter(rate.Limit(cfg.Server.RateLimitPerSec), cfg.Server.RateLimitBurst)

	cacheTTL := time.Duration(cfg.Server.CacheTTLSeconds) * time.Second
	cacheStore := cache.New(cacheTTL, 2*cacheTTL)
	caching := mw.Cache(cacheStore, cacheTTL)

	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		api.POST("/login", handler.Login)
		api.GET("/users", handler.ListUsers)
		api.POST("/users", handler.AddUser)
		api.DELETE("/users/:username", handler.DeleteUser)

		api.GET("/logs", handler.ListLogs)
		api.POST("/logs", handler.CreateLog)
		api.DELETE("/logs/:id", handler.DeleteLog)
		api.POST("/logs/reset_sync", handler.ResetSyncFlags)
		api.GET("/logs/export", handler.ExportCSV)

		// Entity configuration changes only on sync, so cached reads are safe.
		api.GET("/machines", caching, handler.GetMachines)
		api.GET("/meters", caching, handler.GetMeters)
		api.GET("/generators", caching, handler.GetGenerators)
		api.GET("/machines/:id/health", handler.GetMachineHealth)
		api.GET("/generators/:id/service", handler.GetGeneratorService)

		api.POST("/sync", handler.TriggerSync)
		api.GET("/sync/status", handler.SyncStatus)

		api.POST("/advice", handler.Advice)
		api.POST("/anomaly", handler.Anomaly)
		api.POST("/report", handler.Report)

		api.POST("/settings/advisor_key", handler.SetAdvisorKey)
	}

	return r
}
