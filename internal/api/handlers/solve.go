package handlers

import (
	"delivery-route-console/internal/api/dto"
	"delivery-route-console/internal/ports"
	"delivery-route-console/internal/services"
	"net/http"
)

type SolveHandler struct {
	Repo   ports.PlanningRepository
	Solver ports.Solver
}

// Solve plans routes for the stored orders over the selected fleet.
func (h *SolveHandler) Solve(w http.ResponseWriter, r *http.Request) {
	var req dto.SolveRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	routes, err := services.PlanRoutes(r.Context(), services.PlanRoutesRequest{
		ForceAll:   req.ForceAll,
		VehicleIDs: req.Vehicles,
	}, h.Repo, h.Solver)
	if err != nil {
		writeServiceError(w, r, "solve", err, "")
		return
	}

	writeJSON(w, r, http.StatusOK, dto.NewSolveResponse(routes))
}
