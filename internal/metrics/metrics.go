// Package metrics exposes Prometheus instrumentation for the service.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service's Prometheus collectors. Construct it once; the
// collectors register against a private registry so tests can build several.
type Metrics struct {
	registry *prometheus.Registry

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	SearchesTotal        *prometheus.CounterVec
	PostsFetched         *prometheus.CounterVec
	LeadsClassified      *prometheus.CounterVec
	SearchDuration       prometheus.Histogram
	NotificationsTotal   *prometheus.CounterVec
	QuotaRejectionsTotal *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intentiq_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)
	m.httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "intentiq_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)
	m.SearchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intentiq_searches_total",
			Help: "Lead searches executed, by outcome",
		},
		[]string{"outcome"},
	)
	m.PostsFetched = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intentiq_posts_fetched_total",
			Help: "Posts fetched from source platforms",
		},
		[]string{"platform"},
	)
	m.LeadsClassified = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intentiq_leads_classified_total",
			Help: "Posts classified, by intent label",
		},
		[]string{"label"},
	)
	m.SearchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "intentiq_search_duration_seconds",
			Help:    "End-to-end search pipeline duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)
	m.NotificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intentiq_notifications_total",
			Help: "Notification deliveries, by channel and outcome",
		},
		[]string{"channel", "outcome"},
	)
	m.QuotaRejectionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intentiq_quota_rejections_total",
			Help: "Requests rejected by quota, by resource",
		},
		[]string{"resource"},
	)

	m.registry.MustRegister(
		m.httpRequestsTotal,
		m.httpRequestDuration,
		m.SearchesTotal,
		m.PostsFetched,
		m.LeadsClassified,
		m.SearchDuration,
		m.NotificationsTotal,
		m.QuotaRejectionsTotal,
	)
	return m
}

// Middleware records request counts and latency per route.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unknown"
		}
		method := c.Request.Method
		status := strconv.Itoa(c.Writer.Status())

		m.httpRequestsTotal.WithLabelValues(method, endpoint, status).Inc()
		m.httpRequestDuration.WithLabelValues(method, endpoint).Observe(time.Since(start).Seconds())
	}
}

// Handler serves the scrape endpoint.
func (m *Metrics) Handler() gin.HandlerFunc {
	handler := promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
	return func(c *gin.Context) {
		handler.ServeHTTP(c.Writer, c.Request)
	}
}
