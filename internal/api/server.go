// Package api implements the stateless front-end described in spec.md
// §4.1: request validation, job admission, status/result retrieval, and
// catalog/search endpoints, mounted under base path /0.1. Routing and
// middleware chain are adapted from the teacher's internal/web/server.go.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	apimiddleware "github.com/reactome/gsa-orchestrator/internal/api/middleware"
	"github.com/reactome/gsa-orchestrator/internal/broker"
	"github.com/reactome/gsa-orchestrator/internal/jobservice"
	"github.com/reactome/gsa-orchestrator/internal/searchindex"
)

// Server wires the HTTP surface to the job admission/status layer.
type Server struct {
	router chi.Router

	store        *jobservice.Store
	br           broker.Broker
	index        *searchindex.Index
	analysis     *jobservice.AnalysisAdmitter
	dataset      *jobservice.DatasetAdmitter
	reportTrigger *jobservice.ReportTrigger
}

// Config bundles the dependencies and tuning knobs NewServer needs.
type Config struct {
	Store           *jobservice.Store
	Broker          broker.Broker
	Index           *searchindex.Index
	MaxMessageTries int
	LoadCacheTTL    time.Duration
	AdmissionQueue  int
	RequestTimeout  time.Duration
}

// NewServer builds a Server and mounts its routes.
func NewServer(cfg Config) *Server {
	s := &Server{
		router:        chi.NewRouter(),
		store:         cfg.Store,
		br:            cfg.Broker,
		index:         cfg.Index,
		analysis:      jobservice.NewAnalysisAdmitter(cfg.Store, cfg.Broker, cfg.MaxMessageTries),
		dataset:       jobservice.NewDatasetAdmitter(cfg.Store, cfg.Broker, cfg.MaxMessageTries, cfg.LoadCacheTTL),
		reportTrigger: jobservice.NewReportTrigger(cfg.Broker),
	}

	s.routes(cfg)
	return s
}

// Router exposes the mounted handler for cmd/api's http.Server.
func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) routes(cfg Config) {
	r := s.router

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)

	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	r.Use(chimiddleware.Timeout(timeout))

	limiter := apimiddleware.NewLimiter(cfg.AdmissionQueue, cfg.AdmissionQueue)

	r.Route("/0.1", func(r chi.Router) {
		r.Use(limiter.Limit)

		r.Get("/methods", s.handleMethods)
		r.Get("/types", s.handleTypes)

		r.Post("/analysis", s.handlePostAnalysis)
		r.Get("/status/{id}", s.handleStatus)
		r.Get("/result/{id}", s.handleResult)
		r.Get("/report_status/{id}", s.handleReportStatus)
		r.Get("/report/{id}/{name}", s.handleReportArtifact)

		r.Get("/data/sources", s.handleDataSources)
		r.Get("/data/examples", s.handleDataExamples)
		r.Post("/data/load/{resource_id}", s.handlePostDataLoad)
		r.Get("/data/status/{loading_id}", s.handleDataStatus)
		r.Get("/data/summary/{dataset_id}", s.handleDataSummary)

		r.Get("/data/search", s.handleDataSearch)
	})
}
