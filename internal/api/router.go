package api

import (
	"delivery-route-console/internal/api/handlers"
	"delivery-route-console/internal/platform/metrics"
	"delivery-route-console/internal/ports"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Deps are the adapters the planner API is built from.
type Deps struct {
	Repo     ports.PlanningRepository
	Geocoder ports.Geocoder
	Solver   ports.Solver
}

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(d Deps) http.Handler {
	health := &handlers.HealthHandler{Solver: d.Solver}
	depot := &handlers.DepotHandler{Repo: d.Repo, Geocoder: d.Geocoder}
	vehicles := &handlers.VehicleHandler{Repo: d.Repo}
	orders := &handlers.OrderHandler{Repo: d.Repo, Geocoder: d.Geocoder}
	solve := &handlers.SolveHandler{Repo: d.Repo, Solver: d.Solver}

	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware)
	r.Use(middleware.Recoverer)
	r.NotFound(handlers.NotFound)
	r.MethodNotAllowed(handlers.MethodNotAllowed)

	r.Handle("/metrics", metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(metrics.Middleware)

		r.Get("/health", health.Get)

		r.Get("/depot", depot.Get)
		r.Post("/depot", depot.Save)

		r.Get("/vehicles", vehicles.List)
		r.Post("/vehicles", vehicles.Create)
		r.Put("/vehicles/{id}", vehicles.Update)
		r.Delete("/vehicles/{id}", vehicles.Delete)

		r.Get("/orders", orders.List)
		r.Post("/orders", orders.Create)
		r.Post("/orders/import", orders.Import)
		r.Put("/orders/{id}", orders.Update)
		r.Delete("/orders/{id}", orders.Delete)

		r.Post("/solve", solve.Solve)
	})

	return r
}
