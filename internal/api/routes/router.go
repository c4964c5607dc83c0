package routes

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/zatekoja/limsgateway/internal/api/handlers"
	"github.com/zatekoja/limsgateway/internal/api/middleware"
	"github.com/zatekoja/limsgateway/internal/infrastructure/observability"
)

// Handlers groups the gateway's endpoint handlers
type Handlers struct {
	Accessions    *handlers.AccessionHandler
	Patients      *handlers.PatientHandler
	Organizations *handlers.OrganizationHandler
	Notifications *handlers.NotificationHandler
	Admin         *handlers.AdminHandler
	Stream        *handlers.StreamHandler
}

// Router holds all route handlers
type Router struct {
	mux            *http.ServeMux
	handlers       Handlers
	metrics        *observability.Metrics
	gatherer       prometheus.Gatherer
	allowedOrigins []string
	logger         zerolog.Logger
}

// NewRouter creates a new router. gatherer backs /metrics; nil uses the
// default Prometheus registry.
func NewRouter(
	h Handlers,
	metrics *observability.Metrics,
	gatherer prometheus.Gatherer,
	allowedOrigins []string,
	logger zerolog.Logger,
) *Router {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return &Router{
		mux:            http.NewServeMux(),
		handlers:       h,
		metrics:        metrics,
		gatherer:       gatherer,
		allowedOrigins: allowedOrigins,
		logger:         logger,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	r.mux.HandleFunc("GET /health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.mux.Handle("GET /metrics", promhttp.HandlerFor(r.gatherer, promhttp.HandlerOpts{}))

	// Accession endpoints
	a := r.handlers.Accessions
	r.mux.HandleFunc("GET /api/accessions", a.ListAccessions)
	r.mux.HandleFunc("POST /api/accessions", a.CreateAccession)
	r.mux.HandleFunc("GET /api/accessions/{id}", a.GetAccession)
	r.mux.HandleFunc("PUT /api/accessions/{id}", a.UpdateAccession)
	r.mux.HandleFunc("DELETE /api/accessions/{id}", a.DeleteAccession)
	r.mux.HandleFunc("GET /api/accessions/{id}/for-edit", a.GetAccessionForEdit)
	r.mux.HandleFunc("POST /api/accessions/{id}/submit", a.SubmitAccession)
	r.mux.HandleFunc("POST /api/accessions/{id}/comments", a.AddComment)
	r.mux.HandleFunc("DELETE /api/accessions/{id}/comments/{commentId}", a.DeleteComment)
	r.mux.HandleFunc("DELETE /api/accessions/{id}/attachments/{attachmentId}", a.DeleteAttachment)
	r.mux.HandleFunc("POST /api/accessions/{id}/test-orders", a.AddTestOrder)
	r.mux.HandleFunc("POST /api/accessions/{id}/panel-orders", a.AddPanelOrder)
	r.mux.HandleFunc("POST /api/test-orders/{id}/cancel", a.CancelTestOrder)

	// Patient and sample endpoints
	p := r.handlers.Patients
	r.mux.HandleFunc("GET /api/patients", p.ListPatients)
	r.mux.HandleFunc("POST /api/patients", p.CreatePatient)
	r.mux.HandleFunc("GET /api/patients/{id}", p.GetPatient)
	r.mux.HandleFunc("PUT /api/patients/{id}", p.UpdatePatient)
	r.mux.HandleFunc("GET /api/patients/{id}/samples", p.ListSamples)
	r.mux.HandleFunc("POST /api/samples/{id}/dispose", p.DisposeSample)

	// Organization endpoints
	o := r.handlers.Organizations
	r.mux.HandleFunc("GET /api/organizations/{id}/contacts", o.ListContacts)
	r.mux.HandleFunc("POST /api/organizations/{id}/contacts", o.CreateContact)
	r.mux.HandleFunc("PUT /api/organizations/{id}/contacts/{contactId}", o.UpdateContact)

	r.mux.HandleFunc("GET /api/notifications", r.handlers.Notifications.ListNotifications)

	// Operator endpoints
	if r.handlers.Admin != nil {
		r.mux.HandleFunc("POST /api/admin/invalidate", r.handlers.Admin.Invalidate)
		r.mux.HandleFunc("GET /api/admin/cache", r.handlers.Admin.CacheSnapshot)
		r.mux.HandleFunc("GET /api/admin/mutations", r.handlers.Admin.ListMutations)
	}

	if r.handlers.Stream != nil {
		r.mux.HandleFunc("GET /api/stream/invalidations", r.handlers.Stream.StreamInvalidations)
		r.mux.HandleFunc("GET /api/stream/stats", r.handlers.Stream.Stats)
	}

	// Apply middleware in reverse order (last middleware wraps first).
	// Observability sits directly on the mux so it can read the matched pattern.
	var handler http.Handler = r.mux
	handler = middleware.ObservabilityMiddleware(r.metrics)(handler)
	handler = middleware.RecoveryMiddleware(handler)
	handler = middleware.LoggingMiddleware(r.logger)(handler)
	handler = middleware.CORSMiddleware(r.allowedOrigins)(handler)

	return handler
}
