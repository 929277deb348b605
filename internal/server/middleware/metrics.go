package middleware

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
)

var histogramBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5}

// Metrics — счётчик запросов и гистограмма длительности по маршрутам chi.
type Metrics struct {
	requestTotal   *prometheus.CounterVec
	requestLatency *prometheus.HistogramVec
}

// NewMetrics регистрирует коллекторы в reg.
// Повторная регистрация (например второй роутер в тестах) переиспользует существующие.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "vaxreport",
			Name:      "http_requests_total",
			Help:      "Count of processed HTTP requests",
		}, []string{"method", "route", "status"}),
		requestLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "vaxreport",
			Name:      "http_request_duration_seconds",
			Help:      "Latency distribution of HTTP handlers",
			Buckets:   histogramBuckets,
		}, []string{"method", "route", "status"}),
	}

	if err := reg.Register(m.requestTotal); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				m.requestTotal = existing
			}
		}
	}
	if err := reg.Register(m.requestLatency); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(*prometheus.HistogramVec); ok {
				m.requestLatency = existing
			}
		}
	}
	return m
}

// Middleware считает запросы. Метка route — шаблон маршрута chi,
// для ненайденных маршрутов "unmatched", чтобы не плодить серии по URL.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wr := wrap(w)
		next.ServeHTTP(wr, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		status := strconv.Itoa(wr.StatusOrOK())

		m.requestTotal.WithLabelValues(r.Method, route, status).Inc()
		m.requestLatency.WithLabelValues(r.Method, route, status).Observe(time.Since(start).Seconds())
	})
}
