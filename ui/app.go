// Package ui exposes stored experiments and their analyses over HTTP.
package ui

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"driftlab/app"
	"driftlab/ports"
)

// App represents the report server
type App struct {
	router  *chi.Mux
	repo    ports.TrialRepository
	service *app.ExperimentService
}

// Config holds server configuration
type Config struct {
	Port string
}

// NewApp creates the report server
func NewApp(repo ports.TrialRepository, service *app.ExperimentService) *App {
	a := &App{
		router:  chi.NewRouter(),
		repo:    repo,
		service: service,
	}
	a.setupMiddleware()
	a.setupRoutes()
	return a
}

func (a *App) setupMiddleware() {
	a.router.Use(middleware.Logger)
	a.router.Use(middleware.Recoverer)
	a.router.Use(middleware.Compress(5))
}

func (a *App) setupRoutes() {
	a.router.Get("/healthz", a.handleHealth)
	a.router.Get("/api/experiments", a.handleListExperiments)
	a.router.Get("/api/experiments/{id}", a.handleGetExperiment)
	a.router.Get("/api/experiments/{id}/analysis", a.handleAnalysis)
	a.router.Get("/report", a.handleReport)
}

// Handler returns the router for serving or testing.
func (a *App) Handler() http.Handler {
	return a.router
}

// Start starts the HTTP server
func (a *App) Start(cfg Config) error {
	addr := ":" + cfg.Port
	log.Printf("[UI] serving on %s", addr)
	return http.ListenAndServe(addr, a.router)
}
