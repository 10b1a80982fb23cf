// ABOUTME: HTTP handlers for the capacity planning API
// ABOUTME: Holds shared dependencies and JSON response helpers

package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/markalston/pypiserver-capacity/backend/config"
	"github.com/markalston/pypiserver-capacity/backend/models"
	"github.com/markalston/pypiserver-capacity/backend/services"
)

const maxRequestBodySize = 1 << 20 // 1MB

const defaultSubnetCount = 2

type Handler struct {
	cfg        *config.Config
	catalog    *services.Catalog
	planner    *services.Planner
	comparator *services.Comparator
}

// NewHandler wires the planner and comparator over a catalog. Both arguments
// may be nil, which gives the static catalog and built-in defaults.
func NewHandler(cfg *config.Config, catalog *services.Catalog) *Handler {
	if catalog == nil {
		catalog = services.NewCatalog(nil)
	}

	concurrency := 0
	if cfg != nil {
		concurrency = cfg.CompareConcurrency
	}

	planner := services.NewPlanner()
	return &Handler{
		cfg:        cfg,
		catalog:    catalog,
		planner:    planner,
		comparator: services.NewComparator(catalog, planner, concurrency),
	}
}

// subnetCount applies the configured default when a request leaves it out
func (h *Handler) subnetCount(requested int) int {
	if requested != 0 {
		return requested
	}
	if h.cfg != nil && h.cfg.DefaultSubnetCount > 0 {
		return h.cfg.DefaultSubnetCount
	}
	return defaultSubnetCount
}

// decodeJSON reads a size-limited JSON body, rejecting unknown fields so that
// misspelled overrides are not silently ignored
func (h *Handler) decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.writeError(w, "Request body too large", http.StatusBadRequest)
			return false
		}
		h.writeErrorWithDetails(w, "Invalid JSON", err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, message string, code int) {
	h.writeJSON(w, code, models.ErrorResponse{
		Error: message,
		Code:  code,
	})
}

func (h *Handler) writeErrorWithDetails(w http.ResponseWriter, message, details string, code int) {
	h.writeJSON(w, code, models.ErrorResponse{
		Error:   message,
		Details: details,
		Code:    code,
	})
}

// writeConfigError reports a rejected planning input as 422
func (h *Handler) writeConfigError(w http.ResponseWriter, ce *models.ConfigError) {
	h.writeJSON(w, http.StatusUnprocessableEntity, models.ErrorResponse{
		Error:   ce.Error(),
		Details: ce.Constraint,
		Code:    http.StatusUnprocessableEntity,
		Kind:    string(ce.Kind),
		Field:   ce.Field,
	})
}

// writeLookupError maps catalog failures to status codes
func (h *Handler) writeLookupError(w http.ResponseWriter, name string, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidInstanceTypeName):
		h.writeErrorWithDetails(w, "Invalid instance type name", err.Error(), http.StatusBadRequest)
	case errors.Is(err, models.ErrUnknownInstanceType):
		h.writeErrorWithDetails(w, "Unknown instance type", err.Error(), http.StatusNotFound)
	default:
		slog.Error("Instance type lookup failed", "name", name, "error", err)
		h.writeError(w, "Instance type provider unavailable", http.StatusBadGateway)
	}
}
