// Package web provides the HTTP server and JSON API for the vehicle
// import service.
package web

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/salvageops/yardbook/internal/config"
	"github.com/salvageops/yardbook/internal/importer"
	"github.com/salvageops/yardbook/internal/store"
	"github.com/salvageops/yardbook/internal/web/middleware"
)

// ImportRunner executes a staged CSV import.
type ImportRunner interface {
	Run(ctx context.Context, stageKey string, file io.Reader, window importer.RowWindow) (*importer.ImportReport, error)
}

// VehicleDirectory reads and administers vehicle records for the API
// surface. The import pipeline has its own narrower store interface.
type VehicleDirectory interface {
	Get(ctx context.Context, id uuid.UUID) (*importer.Vehicle, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DuplicateVINs(ctx context.Context) ([]store.DuplicateVIN, error)
}

// MetaReader reads the metadata map for a vehicle.
type MetaReader interface {
	Map(ctx context.Context, vehicleID uuid.UUID) (map[string]string, error)
}

// LotStatusFetcher looks up live auction lot details.
type LotStatusFetcher interface {
	LotDetails(ctx context.Context, lotNumber string) (json.RawMessage, error)
}

// Server is the HTTP server for the vehicle import API.
type Server struct {
	imports  ImportRunner
	vehicles VehicleDirectory
	metas    MetaReader
	lots     LotStatusFetcher
	cfg      *config.Config
	router   *chi.Mux
	server   *http.Server
}

// NewServer creates a new Server instance.
func NewServer(cfg *config.Config, imports ImportRunner, vehicles VehicleDirectory, metas MetaReader, lots LotStatusFetcher) *Server {
	s := &Server{
		imports:  imports,
		vehicles: vehicles,
		metas:    metas,
		lots:     lots,
		cfg:      cfg,
		router:   chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(chimw.RequestID)
	s.router.Use(chimw.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(chimw.Recoverer)
	s.router.Use(chimw.Compress(5))
	s.router.Use(chimw.Timeout(s.cfg.Import.Timeout))
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Post("/import/{stage}", s.handleImport)
		r.Get("/stages", s.handleListStages)
		r.Get("/vehicles/duplicates", s.handleDuplicateVINs)
		r.Get("/vehicles/{vehicleID}", s.handleGetVehicle)
		r.Delete("/vehicles/{vehicleID}", s.handleDeleteVehicle)
		r.Get("/lot-status/{lotNumber}", s.handleLotStatus)
	})
}

// Start begins listening for HTTP requests.
func (s *Server) Start(addr string) error {
	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}
