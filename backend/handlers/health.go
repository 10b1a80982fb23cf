// ABOUTME: HTTP handler for the health endpoint
// ABOUTME: Reports service status and the live instance type sources

package handlers

import (
	"net/http"

	"github.com/markalston/pypiserver-capacity/backend/models"
)

// Health returns API status and which catalog sources answer lookups.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	resp := models.HealthResponse{
		Status:         "ok",
		CatalogSources: h.catalog.Sources(),
	}
	if h.cfg != nil {
		resp.CacheTTL = h.cfg.CacheTTL
	}

	h.writeJSON(w, http.StatusOK, resp)
}
