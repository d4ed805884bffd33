package handlers

import (
	"delivery-route-console/internal/api/dto"
	"delivery-route-console/internal/domain"
	"delivery-route-console/internal/ports"
	"delivery-route-console/internal/services"
	"errors"
	"log/slog"
	"net/http"
)

const (
	orderNotFound = "order not found"
	// Upper bound for an uploaded import file.
	maxImportBytes = 10 << 20
)

type OrderHandler struct {
	Repo     ports.PlanningRepository
	Geocoder ports.Geocoder
}

func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	os, err := h.Repo.ListOrders(r.Context())
	if err != nil {
		slog.Error("list orders failed", "err", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, r, http.StatusOK, dto.NewOrderList(os))
}

func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateOrderRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	o, err := services.CreateOrder(r.Context(), ports.OrderInput{
		ExternalID:  req.ExternalID,
		Address:     req.Address,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
		Volume:      req.Volume,
		WindowStart: req.WindowStart,
		WindowEnd:   req.WindowEnd,
	}, h.Repo, h.Geocoder)
	if err != nil {
		writeServiceError(w, r, "create order", err, "")
		return
	}

	writeJSON(w, r, http.StatusCreated, dto.NewOrderResponse(o))
}

func (h *OrderHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, orderNotFound)
	if !ok {
		return
	}

	var req dto.UpdateOrderRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	u := ports.OrderUpdate{
		ExternalID:     req.ExternalID,
		Address:        req.Address,
		Volume:         req.Volume,
		SetWindowStart: req.WindowStart.Set,
		WindowStart:    req.WindowStart.Value,
		SetWindowEnd:   req.WindowEnd.Set,
		WindowEnd:      req.WindowEnd.Value,
	}
	if req.Latitude != nil && req.Longitude != nil {
		u.Location = &domain.Coordinates{Lat: *req.Latitude, Lon: *req.Longitude}
	}

	o, err := h.Repo.UpdateOrder(r.Context(), id, u)
	if err != nil {
		writeServiceError(w, r, "update order", err, orderNotFound)
		return
	}

	writeJSON(w, r, http.StatusOK, dto.NewOrderResponse(o))
}

func (h *OrderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, orderNotFound)
	if !ok {
		return
	}
	if err := h.Repo.DeleteOrder(r.Context(), id); err != nil {
		writeServiceError(w, r, "delete order", err, orderNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Import creates orders from the multipart "file" field and returns them.
func (h *OrderHandler) Import(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxImportBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, r, http.StatusRequestEntityTooLarge, "file too large")
			return
		}
		writeError(w, r, http.StatusBadRequest, "file required")
		return
	}
	defer file.Close()

	res, err := services.ImportOrders(r.Context(), header.Filename, file, h.Repo, h.Geocoder)
	if err != nil {
		writeServiceError(w, r, "import orders", err, "")
		return
	}

	slog.Info("orders imported", "file", header.Filename, "created", len(res.Created), "skipped", res.Skipped)
	writeJSON(w, r, http.StatusOK, dto.NewOrderList(res.Created))
}
