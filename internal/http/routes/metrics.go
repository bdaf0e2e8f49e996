package routes

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type httpMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func (m *httpMetrics) observe(method, route string, status int, d time.Duration) {
	m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.duration.WithLabelValues(method, route).Observe(d.Seconds())
}

// registerMetrics registers request and cache collectors on s.Metrics. Cache
// values are read from the store at scrape time.
func (s *Server) registerMetrics() *httpMetrics {
	m := &httpMetrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "astroview",
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "astroview",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	store := s.Cache
	s.Metrics.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requests,
		m.duration,
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: "astroview",
			Subsystem: "cache",
			Name:      "hits_total",
			Help:      "Cache lookups that found a live entry.",
		}, func() float64 { return float64(store.Stats().Hits) }),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: "astroview",
			Subsystem: "cache",
			Name:      "misses_total",
			Help:      "Cache lookups that found nothing.",
		}, func() float64 { return float64(store.Stats().Misses) }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "astroview",
			Subsystem: "cache",
			Name:      "keys",
			Help:      "Live entries; expired entries are excluded before they are swept.",
		}, func() float64 { return float64(store.Stats().Keys) }),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: "astroview",
			Subsystem: "cache",
			Name:      "expired_total",
			Help:      "Expired entries removed by the sweeper.",
		}, func() float64 { return float64(store.Stats().Expired) }),
	)
	return m
}

func (s *Server) metricsHandler() http.Handler {
	return promhttp.HandlerFor(s.Metrics, promhttp.HandlerOpts{})
}
