package handlers

import (
	"delivery-route-console/internal/api/dto"
	"delivery-route-console/internal/ports"
	"delivery-route-console/internal/services"
	"log/slog"
	"net/http"
)

type DepotHandler struct {
	Repo     ports.PlanningRepository
	Geocoder ports.Geocoder
}

// Get returns the depot, or null when none has been saved.
func (h *DepotHandler) Get(w http.ResponseWriter, r *http.Request) {
	d, err := h.Repo.GetDepot(r.Context())
	if err != nil {
		slog.Error("get depot failed", "err", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}
	if d == nil {
		writeJSON(w, r, http.StatusOK, nil)
		return
	}
	writeJSON(w, r, http.StatusOK, dto.NewDepotResponse(*d))
}

func (h *DepotHandler) Save(w http.ResponseWriter, r *http.Request) {
	var req dto.DepotRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	d, err := services.SaveDepot(r.Context(), services.DepotRequest{
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
		Address:   req.Address,
	}, h.Repo, h.Geocoder)
	if err != nil {
		writeServiceError(w, r, "save depot", err, "")
		return
	}

	writeJSON(w, r, http.StatusOK, dto.NewDepotResponse(d))
}
