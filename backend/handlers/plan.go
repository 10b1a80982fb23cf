// ABOUTME: HTTP handlers for planning and candidate comparison
// ABOUTME: Resolves the node shape, runs the planner, and renders reports

package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/markalston/pypiserver-capacity/backend/models"
	"github.com/markalston/pypiserver-capacity/backend/services"
)

// Plan sizes containers and replica bounds for one node shape.
// The shape comes either inline (instance) or from the catalog (instance_type).
func (h *Handler) Plan(w http.ResponseWriter, r *http.Request) {
	var req models.PlanRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	profile, err := services.ResolveProfile(r.Context(), h.catalog, req)
	if err != nil {
		if errors.Is(err, services.ErrNoInstance) {
			h.writeError(w, err.Error(), http.StatusBadRequest)
			return
		}
		h.writeLookupError(w, req.InstanceType, err)
		return
	}

	sizing, err := h.planner.Plan(profile, req.Overrides, h.subnetCount(req.SubnetCount))
	if err != nil {
		if ce, ok := models.AsConfigError(err); ok {
			slog.Info("Plan rejected", "kind", ce.Kind, "field", ce.Field, "value", ce.Value)
			h.writeConfigError(w, ce)
			return
		}
		slog.Error("Planning failed", "error", err)
		h.writeError(w, "Planning failed", http.StatusInternalServerError)
		return
	}

	slog.Info("Plan computed",
		"instance_type", profile.InstanceType,
		"binding", sizing.BindingConstraint,
		"tasks_per_node", sizing.NodeTaskCapacity,
		"replica_min", sizing.ReplicaMin,
		"replica_max", sizing.ReplicaMax)

	h.writeJSON(w, http.StatusOK, services.BuildPlanResponse(profile, sizing))
}

// Compare evaluates candidate node types against one replica target.
func (h *Handler) Compare(w http.ResponseWriter, r *http.Request) {
	var req models.CompareRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}
	req.SubnetCount = h.subnetCount(req.SubnetCount)

	result, err := h.comparator.Compare(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidCompareRequest):
			h.writeErrorWithDetails(w, "Invalid compare request", err.Error(), http.StatusBadRequest)
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			h.writeError(w, "Comparison cancelled", http.StatusServiceUnavailable)
		default:
			slog.Error("Comparison failed", "error", err)
			h.writeError(w, "Comparison failed", http.StatusInternalServerError)
		}
		return
	}

	h.writeJSON(w, http.StatusOK, result)
}
