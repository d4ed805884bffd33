package handlers

import (
	"delivery-route-console/internal/api/dto"
	"delivery-route-console/internal/ports"
	"net/http"
)

type HealthHandler struct {
	Solver ports.Solver
}

// Get reports liveness and whether the solver has its street graph loaded.
func (h *HealthHandler) Get(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, dto.HealthResponse{
		Status:      "ok",
		GraphLoaded: h.Solver.Ready(r.Context()),
	})
}
