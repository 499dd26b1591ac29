package obs

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Shared HTTP metrics.
var (
	httpInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "http_in_flight_requests",
		Help: "In-flight HTTP requests.",
	})

	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// Booking domain counters.
	appointmentsBooked = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "appointments_booked_total",
		Help: "Appointments accepted by the scheduling service.",
	})
	appointmentConflicts = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "appointment_conflicts_total",
		Help: "Booking attempts rejected because the slot was already taken.",
	})
	appointmentsCancelled = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "appointments_cancelled_total",
		Help: "Appointments cancelled by their owner.",
	})

	buildInfo = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "build_info",
			Help: "Spaziopratiche API build information.",
		},
		[]string{"version", "commit"},
	)
)

// Init registers all metrics in the default registry.
func Init() {
	prometheus.MustRegister(
		httpInFlight, httpRequestsTotal, httpRequestDuration,
		appointmentsBooked, appointmentConflicts, appointmentsCancelled,
		buildInfo,
	)
}

// SetBuildInfo pins the running version and commit onto the build_info gauge.
// Call after Init.
func SetBuildInfo(version, commit string) {
	buildInfo.WithLabelValues(version, commit).Set(1)
}

// Handler exposes the Prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// BookingAccepted increments the booked-appointments counter.
func BookingAccepted() { appointmentsBooked.Inc() }

// BookingConflict increments the slot-conflict counter.
func BookingConflict() { appointmentConflicts.Inc() }

// BookingCancelled increments the cancelled-appointments counter.
func BookingCancelled() { appointmentsCancelled.Inc() }

// Instrument wraps a handler with RPS/latency/in-flight measurement.
func Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := CanonicalPath(r.URL.Path)
		method := r.Method

		httpInFlight.Inc()
		start := time.Now()

		sw := &statusWriter{ResponseWriter: w, code: 200}
		next.ServeHTTP(sw, r)

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(sw.code)

		httpRequestDuration.WithLabelValues(method, path, status).Observe(duration)
		httpRequestsTotal.WithLabelValues(method, path, status).Inc()
		httpInFlight.Dec()
	})
}

// CanonicalPath collapses identifier segments so metric label cardinality stays
// bounded regardless of how many appointments or dates exist.
func CanonicalPath(path string) string {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	if path == "" {
		return "/"
	}
	switch {
	case strings.HasPrefix(path, "/v1/appointments/availability/"):
		return "/v1/appointments/availability/:date"
	case strings.HasPrefix(path, "/v1/appointments/") && strings.HasSuffix(path, "/confirm"):
		return "/v1/appointments/:id/confirm"
	case strings.HasPrefix(path, "/v1/appointments/") && path != "/v1/appointments/my":
		rest := strings.TrimPrefix(path, "/v1/appointments/")
		if rest != "" && !strings.Contains(rest, "/") {
			return "/v1/appointments/:id"
		}
	}
	return path
}

// statusWriter captures the response code for metric labels.
type statusWriter struct {
	http.ResponseWriter
	code int
}

func (w *statusWriter) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}

// Flush keeps SSE responses streaming through the instrumented handler.
func (w *statusWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
