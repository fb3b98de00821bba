// Package api exposes the admin HTTP API of the spawn server.
package api

import (
	"context"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/udisondev/swarmspawn/internal/model"
	"github.com/udisondev/swarmspawn/internal/sim"
)

// Controller is the simulation surface used by the API. Every mutating call
// is executed on the simulation goroutine.
type Controller interface {
	Status() sim.Status
	TriggerSpawn(ctx context.Context) error
	SetSpawningEnabled(ctx context.Context, enabled bool) error
	SetStage(ctx context.Context, stage model.Stage) error
	PlaceBuilding(ctx context.Context, kind model.BuildingKind, anchor model.Position, xSize, zSize int) (model.Building, error)
	DemolishBuilding(ctx context.Context, id uint32) error
	PlaceMineral(ctx context.Context, pos model.Position) (model.Mineral, error)
	RemoveMineral(ctx context.Context, id uint32) error
	KillUnit(ctx context.Context, id uint32) error
}

// RouterConfig contains the dependencies of the router.
type RouterConfig struct {
	// Controller is the simulation (required)
	Controller Controller

	// Gatherer serves /metrics. If nil, prometheus.DefaultGatherer is used.
	Gatherer prometheus.Gatherer

	// TriggerLimiter limits manual spawn triggers. If nil, triggers are unlimited.
	TriggerLimiter *rate.Limiter

	// CORSOrigins lists allowed origins for browser tooling. Empty disables CORS.
	CORSOrigins []string

	// DisableLogging disables the request logger middleware (useful for tests).
	DisableLogging bool
}

type handlers struct {
	ctrl    Controller
	limiter *rate.Limiter
}

// NewRouter constructs the HTTP router. It starts no goroutines and opens
// no listeners, so it is safe to use with httptest.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	if !cfg.DisableLogging {
		r.Use(middleware.Logger)
	}
	r.Use(middleware.Recoverer)

	if len(cfg.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: cfg.CORSOrigins,
			AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Content-Type"},
		}))
	}

	gatherer := cfg.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	h := &handlers{ctrl: cfg.Controller, limiter: cfg.TriggerLimiter}

	r.Get("/status", h.handleStatus)

	r.Route("/spawn", func(r chi.Router) {
		r.Post("/trigger", h.handleTrigger)
		r.Put("/enabled", h.handleSetEnabled)
	})

	r.Put("/stage", h.handleSetStage)

	r.Route("/buildings", func(r chi.Router) {
		r.Post("/", h.handlePlaceBuilding)
		r.Delete("/{id}", h.handleDemolishBuilding)
	})

	r.Route("/minerals", func(r chi.Router) {
		r.Post("/", h.handlePlaceMineral)
		r.Delete("/{id}", h.handleRemoveMineral)
	})

	r.Post("/units/{id}/kill", h.handleKillUnit)

	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	return r
}
