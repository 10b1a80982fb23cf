// ABOUTME: HTTP handlers for the instance type catalog
// ABOUTME: Lists the static table and resolves single names through all sources

package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/markalston/pypiserver-capacity/backend/models"
)

// ListInstanceTypes returns the static catalog.
func (h *Handler) ListInstanceTypes(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, models.InstanceTypeList{
		InstanceTypes: h.catalog.List(),
		Sources:       h.catalog.Sources(),
	})
}

// GetInstanceType resolves one name, consulting live providers when needed.
func (h *Handler) GetInstanceType(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	it, err := h.catalog.Lookup(r.Context(), name)
	if err != nil {
		h.writeLookupError(w, name, err)
		return
	}

	h.writeJSON(w, http.StatusOK, it)
}
