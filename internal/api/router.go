package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimid "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dealflow-studio/engine/internal/api/handlers"
	mw "github.com/dealflow-studio/engine/internal/api/middleware"
	"github.com/dealflow-studio/engine/internal/identity"
)

type Dependencies struct {
	Resolver identity.Resolver

	PipelinesHandler *handlers.PipelinesHandler
	CompaniesHandler *handlers.CompaniesHandler
	AnalysisHandler  *handlers.AnalysisHandler
	SettingsHandler  *handlers.SettingsHandler
	HealthHandler    *handlers.HealthHandler

	CORSAllowedOrigins []string
	// TrustProxyHeaders derives the client address from forwarded headers.
	TrustProxyHeaders bool
	// RateLimiter is optional; nil disables rate limiting.
	RateLimiter *mw.RateLimiter
	// Metrics and Gatherer are optional; /metrics is served when both are set.
	Metrics  *mw.Metrics
	Gatherer prometheus.Gatherer
}

func NewRouter(dep Dependencies) http.Handler {
	r := chi.NewRouter()

	if dep.TrustProxyHeaders {
		r.Use(chimid.RealIP)
	}
	r.Use(mw.RequestID)
	r.Use(mw.Recovery)
	r.Use(mw.Logging)
	if dep.Metrics != nil {
		r.Use(dep.Metrics.Handler)
	}
	r.Use(mw.CORS(dep.CORSAllowedOrigins))
	if dep.RateLimiter != nil {
		r.Use(dep.RateLimiter.Handler)
	}
	r.Use(chimid.Compress(5))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"Not found"}`))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusMethodNotAllowed)
		_, _ = w.Write([]byte(`{"error":"Method not allowed"}`))
	})

	if dep.HealthHandler != nil {
		r.Get("/healthz", dep.HealthHandler.Liveness)
		r.Get("/readyz", dep.HealthHandler.Readiness)
	}
	if dep.Metrics != nil && dep.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(dep.Gatherer, promhttp.HandlerOpts{
			ErrorHandling: promhttp.HTTPErrorOnError,
		}))
	}

	r.Route("/api", func(api chi.Router) {
		api.Use(mw.Auth(dep.Resolver))

		api.Route("/pipelines", func(pr chi.Router) {
			pr.Get("/", dep.PipelinesHandler.List)
			pr.Post("/", dep.PipelinesHandler.Create)
			pr.Get("/{id}", dep.PipelinesHandler.Get)
			pr.Put("/{id}", dep.PipelinesHandler.Update)
			pr.Delete("/{id}", dep.PipelinesHandler.Delete)
			pr.Get("/{id}/companies", dep.CompaniesHandler.List)
			pr.Post("/{id}/companies", dep.CompaniesHandler.Create)
		})

		api.Route("/companies", func(cr chi.Router) {
			cr.Get("/{id}", dep.CompaniesHandler.Get)
			cr.Put("/{id}", dep.CompaniesHandler.Update)
			cr.Delete("/{id}", dep.CompaniesHandler.Delete)
			cr.Get("/{id}/analysis", dep.AnalysisHandler.Latest)
		})

		api.Post("/run-analysis", dep.AnalysisHandler.Run)

		api.Route("/settings", func(sr chi.Router) {
			sr.Get("/", dep.SettingsHandler.Get)
			sr.Put("/profile", dep.SettingsHandler.SaveProfile)
			sr.Put("/notifications", dep.SettingsHandler.SaveNotifications)
		})
	})

	return r
}
