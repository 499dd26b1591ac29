// Package httpapi is the HTTP surface of the scheduling authority.
package httpapi

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"spaziopratiche.org/internal/account"
	"spaziopratiche.org/internal/contact"
	"spaziopratiche.org/internal/obs"
	"spaziopratiche.org/internal/scheduling"
	"spaziopratiche.org/internal/stream"
)

// ReadyProbe pings the database when one is configured.
type ReadyProbe struct {
	DB *sql.DB
}

func (rp ReadyProbe) Check(ctx context.Context) error {
	if rp.DB == nil {
		return nil
	}
	return rp.DB.PingContext(ctx)
}

// Options tune the outer middleware chain.
type Options struct {
	AllowedOrigins []string
	RateLimitRPS   float64
	RateLimitBurst int
	MaxBodyBytes   int64
}

func (o *Options) withDefaults() {
	if len(o.AllowedOrigins) == 0 {
		o.AllowedOrigins = []string{"*"}
	}
	if o.RateLimitRPS <= 0 {
		o.RateLimitRPS = 10
	}
	if o.RateLimitBurst <= 0 {
		o.RateLimitBurst = 20
	}
	if o.MaxBodyBytes <= 0 {
		o.MaxBodyBytes = 1 << 20
	}
}

// API is the HTTP layer over the account, scheduling and contact services.
type API struct {
	router     chi.Router
	readyProbe ReadyProbe
	version    string
	opts       Options

	accounts  *account.Service
	scheduler scheduling.Service
	contacts  *contact.Service
	events    *stream.Stream
}

func New(rp ReadyProbe, version string, accounts *account.Service, scheduler scheduling.Service, contacts *contact.Service, events *stream.Stream, opts Options) *API {
	opts.withDefaults()
	a := &API{
		router:     chi.NewRouter(),
		readyProbe: rp,
		version:    version,
		opts:       opts,
		accounts:   accounts,
		scheduler:  scheduler,
		contacts:   contacts,
		events:     events,
	}

	r := a.router
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		writeError(w, req, http.StatusMethodNotAllowed, "method not allowed")
	})
	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		writeError(w, req, http.StatusNotFound, "resource not found")
	})

	r.Get("/healthz", a.healthz)
	r.Get("/readyz", a.ready)
	r.Handle("/metrics", obs.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Get("/info", a.info)

		r.Post("/auth/login", a.login)
		r.Post("/auth/register", a.register)
		r.Get("/auth/me", a.me)

		r.Route("/appointments", func(r chi.Router) {
			r.Get("/my", a.listMyAppointments)
			r.Get("/availability/{date}", a.availability)
			r.Post("/", a.bookAppointment)
			r.With(RequireRole(account.RoleStaff)).Post("/{id}/confirm", a.confirmAppointment)
			r.Delete("/{id}", a.cancelAppointment)
		})

		r.Post("/contact", a.submitContact)
		r.With(RequireRole(account.RoleStaff)).Get("/contacts", a.listContacts)

		r.With(RequireRole(account.RoleStaff)).Get("/stream", a.streamEvents)
	})

	return a
}

// Handler returns the fully wrapped handler for the server.
func (a *API) Handler() http.Handler {
	var h http.Handler = a.withAuth(a.router)
	h = obs.Instrument(h)
	h = RateLimit(h, a.opts.RateLimitBurst, a.opts.RateLimitRPS)
	h = MaxBodyBytes(h, a.opts.MaxBodyBytes)
	h = CORS(h, a.opts.AllowedOrigins)
	h = SecurityHeaders(h)
	h = LoggingJSON(h)
	h = RequestID(h)
	return h
}

func (a *API) healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "spratiche-api",
		"version": a.version,
	})
}

func (a *API) ready(w http.ResponseWriter, r *http.Request) {
	if err := a.readyProbe.Check(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status": "not_ready",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ready",
	})
}

func (a *API) info(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"name":    "spratiche-api",
		"time":    time.Now().UTC().Format(time.RFC3339),
		"version": a.version,
	})
}
