package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/edvin/crisisdesk/internal/api/handler"
	mw "github.com/edvin/crisisdesk/internal/api/middleware"
	"github.com/edvin/crisisdesk/internal/core"
)

// Check reports whether a dependency is usable.
type Check func(ctx context.Context) error

type Server struct {
	router    chi.Router
	logger    zerolog.Logger
	lifecycle handler.LifecycleService
	ledger    handler.LedgerService
	checks    map[string]Check
}

func NewServer(logger zerolog.Logger, services *core.Services, checks map[string]Check) *Server {
	return newServer(logger, services.Lifecycle, services.Ledger, checks)
}

func newServer(logger zerolog.Logger, lifecycle handler.LifecycleService, ledger handler.LedgerService, checks map[string]Check) *Server {
	s := &Server{
		router:    chi.NewRouter(),
		logger:    logger,
		lifecycle: lifecycle,
		ledger:    ledger,
		checks:    checks,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(mw.RequestLogger(s.logger))
	s.router.Use(middleware.Recoverer)
	s.router.Use(mw.Metrics)
}

func (s *Server) setupRoutes() {
	// Prometheus metrics endpoint
	s.router.Handle("/metrics", promhttp.Handler())

	// Health check endpoints
	s.router.Get("/healthz", s.handleHealthz)
	s.router.Get("/readyz", s.handleReadyz)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Use(mw.Actor)
		r.Use(middleware.Timeout(30 * time.Second))

		// Incidents
		incident := handler.NewIncident(s.lifecycle)
		r.Get("/incidents", incident.List)
		r.Post("/incidents", incident.Report)
		r.Get("/incidents/{id}", incident.Get)
		r.Delete("/incidents/{id}", incident.Delete)
		r.Post("/incidents/{id}/transition", incident.Transition)
		r.Post("/incidents/{id}/accept", incident.Accept)
		r.Get("/incidents/{id}/updates", incident.AuditTrail)

		// Resources
		resource := handler.NewResource(s.ledger)
		r.Get("/resources", resource.List)
		r.Post("/resources", resource.Create)
		r.Get("/resources/{id}", resource.Get)
		r.Delete("/resources/{id}", resource.Delete)
		r.Put("/resources/{id}/availability", resource.UpdateAvailability)

		// Assignments
		assignment := handler.NewAssignment(s.ledger)
		r.Get("/incidents/{id}/assignments", assignment.ListByIncident)
		r.Post("/incidents/{id}/assignments", assignment.Assign)
		r.Post("/incidents/{id}/assignments/release", assignment.ReleaseAll)
		r.Post("/assignments/{id}/release", assignment.Release)
	})
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	checks := map[string]string{}
	healthy := true

	for name, check := range s.checks {
		if err := check(ctx); err != nil {
			checks[name] = err.Error()
			healthy = false
		} else {
			checks[name] = "ok"
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if healthy {
		w.WriteHeader(http.StatusOK)
	} else {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	json.NewEncoder(w).Encode(checks)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
