package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ekazakov/news-relay/app/database"
	"github.com/ekazakov/news-relay/app/source"
	"github.com/ekazakov/news-relay/app/state"
)

func NewHandler(configCache *source.ConfigCache, repository database.PostRepositoryInterface,
	st *state.State) *Handler {
	return &Handler{
		repository:  repository,
		configCache: configCache,
		state:       st,
		startedAt:   time.Now().UTC(),
	}
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
		"uptime":    time.Since(h.startedAt).Round(time.Second).String(),
	}

	health["loaded_configurations"] = h.configCache.GetConfigCount()

	c.JSON(http.StatusOK, health)
}

func (h *Handler) GetStatus(c *gin.Context) {
	stats := h.state.Stats()

	status := map[string]interface{}{
		"last_published":  stats.LastPublished,
		"total_published": stats.TotalPublished,
		"recent_errors":   stats.RecentErrors,
		"sources":         len(h.configCache.GetEnabledConfigs()),
	}

	if stats.LastRunAt != nil {
		status["last_run_at"] = stats.LastRunAt.Format(time.RFC3339)
	}

	if count, err := h.repository.Count(); err == nil {
		status["identities"] = count
	}

	translations, reports := h.state.CacheSizes()
	status["caches"] = map[string]int{
		"translations": translations,
		"reports":      reports,
	}

	c.JSON(http.StatusOK, status)
}
