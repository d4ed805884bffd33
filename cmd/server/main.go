package main

import (
	"context"
	"delivery-route-console/internal/adapters/cache"
	"delivery-route-console/internal/adapters/geocode"
	"delivery-route-console/internal/adapters/repositories"
	"delivery-route-console/internal/adapters/solver"
	"delivery-route-console/internal/api"
	"delivery-route-console/internal/config"
	"delivery-route-console/internal/platform/db"
	"delivery-route-console/internal/platform/logging"
	"delivery-route-console/internal/ports"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
)

// Geocode results are stable; keep them in redis for a month.
const redisGeocodeTTL = 30 * 24 * time.Hour

// main is the application composition root.
// It wires concrete adapters (SQL store, ORS geocoder, solver) behind ports and starts the HTTP server.
func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "err", err)
		os.Exit(1)
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Format, os.Stderr)

	if err := cfg.ValidateServer(); err != nil {
		slog.Error("invalid config", "err", err)
		os.Exit(1)
	}

	conn, dialect, err := db.Open(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		slog.Error("open database", "err", err)
		os.Exit(1)
	}
	defer conn.Close()

	if err := repositories.InitSchema(conn, dialect); err != nil {
		slog.Error("init schema", "err", err)
		os.Exit(1)
	}

	var geocodeCache ports.GeocodeCache
	switch cfg.Geocode.Cache {
	case "redis":
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
		defer rdb.Close()
		geocodeCache = cache.NewRedisGeocodeCache(rdb, redisGeocodeTTL)
	default:
		geocodeCache = cache.NewSQLGeocodeCache(conn, dialect)
	}

	var geocoder ports.Geocoder = geocode.Unavailable{}
	if key := strings.TrimSpace(cfg.Geocode.ORSKey); key != "" {
		g, err := geocode.NewORSGeocoder(key, geocodeCache, geocode.WithCountry(cfg.Geocode.Country))
		if err != nil {
			slog.Error("create geocoder", "err", err)
			os.Exit(1)
		}
		geocoder = g
	} else {
		slog.Warn("GEOCODE_ORS_KEY not set; orders and depot must carry coordinates")
	}

	var planner ports.Solver = solver.StaticSolver{}
	if cfg.Solver.URL != config.StaticSolver {
		s, err := solver.NewHTTPSolver(cfg.Solver.URL)
		if err != nil {
			slog.Error("create solver", "err", err)
			os.Exit(1)
		}
		planner = s
	} else {
		slog.Warn("using the built-in straight-line planner")
	}

	router := api.NewRouter(api.Deps{
		Repo:     repositories.NewSQLPlanningRepository(conn, dialect),
		Geocoder: geocoder,
		Solver:   planner,
	})

	// Timeouts leave room for a cold solver (graph loading, large problems).
	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      150 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		slog.Info("server listening", "addr", srv.Addr, "db", dialect.DriverName(), "geocode_cache", cfg.Geocode.Cache)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server", "err", err)
			os.Exit(1)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown", "err", err)
	}
}
