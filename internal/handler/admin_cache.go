package handler

import (
	"net/http"

	"github.com/service-lgtm/pw-next-sub000/internal/inventory"
)

// CacheStatsProvider exposes land cache statistics
type CacheStatsProvider interface {
	Stats() inventory.CacheStats
}

// AdminCacheHandler handles admin cache operations
type AdminCacheHandler struct {
	cache CacheStatsProvider
}

// NewAdminCacheHandler creates a new admin cache handler
func NewAdminCacheHandler(cache CacheStatsProvider) *AdminCacheHandler {
	return &AdminCacheHandler{
		cache: cache,
	}
}

// HandleGetCacheStats returns current land cache statistics
// GET /api/v1/admin/cache/stats
func (h *AdminCacheHandler) HandleGetCacheStats(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.cache.Stats())
}
