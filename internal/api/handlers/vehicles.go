package handlers

import (
	"delivery-route-console/internal/api/dto"
	"delivery-route-console/internal/domain"
	"delivery-route-console/internal/ports"
	"log/slog"
	"net/http"
	"strings"
)

const vehicleNotFound = "vehicle not found"

type VehicleHandler struct {
	Repo ports.PlanningRepository
}

func (h *VehicleHandler) List(w http.ResponseWriter, r *http.Request) {
	vs, err := h.Repo.ListVehicles(r.Context())
	if err != nil {
		slog.Error("list vehicles failed", "err", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, r, http.StatusOK, dto.NewVehicleList(vs))
}

// Create registers an active vehicle.
func (h *VehicleHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateVehicleRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		writeError(w, r, http.StatusBadRequest, "name is required")
		return
	}
	if req.Capacity == nil {
		writeError(w, r, http.StatusBadRequest, "capacity is required")
		return
	}
	if *req.Capacity < 0 {
		writeError(w, r, http.StatusBadRequest, "capacity must not be negative")
		return
	}

	v, err := h.Repo.CreateVehicle(r.Context(), domain.Vehicle{
		Name:         name,
		Capacity:     *req.Capacity,
		Active:       true,
		DefaultReady: true,
	})
	if err != nil {
		writeServiceError(w, r, "create vehicle", err, "")
		return
	}

	writeJSON(w, r, http.StatusCreated, dto.NewVehicleResponse(v))
}

func (h *VehicleHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, vehicleNotFound)
	if !ok {
		return
	}

	var req dto.UpdateVehicleRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			writeError(w, r, http.StatusBadRequest, "name must not be empty")
			return
		}
		req.Name = &name
	}
	if req.Capacity != nil && *req.Capacity < 0 {
		writeError(w, r, http.StatusBadRequest, "capacity must not be negative")
		return
	}

	v, err := h.Repo.UpdateVehicle(r.Context(), id, ports.VehicleUpdate{
		Name:     req.Name,
		Capacity: req.Capacity,
		Active:   req.Active,
	})
	if err != nil {
		writeServiceError(w, r, "update vehicle", err, vehicleNotFound)
		return
	}

	writeJSON(w, r, http.StatusOK, dto.NewVehicleResponse(v))
}

func (h *VehicleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, vehicleNotFound)
	if !ok {
		return
	}
	if err := h.Repo.DeleteVehicle(r.Context(), id); err != nil {
		writeServiceError(w, r, "delete vehicle", err, vehicleNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
