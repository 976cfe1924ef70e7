package httpapi

import (
	"strconv"
	"time"

	"github.com/dmitrijs2005/nowstatus/internal/buildinfo"
	"github.com/dmitrijs2005/nowstatus/internal/server/models"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Publish outcomes recorded in nowstatus_publish_total.
const (
	resultOK           = "ok"
	resultBadRequest   = "bad_request"
	resultTooLarge     = "too_large"
	resultUnauthorized = "unauthorized"
	resultInvalid      = "invalid"
	resultError        = "error"
)

// Metrics holds the Prometheus collectors of the HTTP gateway.
type Metrics struct {
	gatherer prometheus.Gatherer

	publishTotal    *prometheus.CounterVec
	viewTotal       *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// NewMetrics registers the collectors on reg. Each server gets its own
// registry so tests can build several.
func NewMetrics(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		gatherer: reg,
		publishTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nowstatus_publish_total",
				Help: "Publish requests by result",
			},
			[]string{"result"},
		),
		viewTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nowstatus_view_total",
				Help: "Page views by requested and effective segment",
			},
			[]string{"requested", "effective"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "nowstatus_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint", "status"},
		),
	}

	info := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "nowstatus_build_info",
			Help: "Build information",
		},
		[]string{"version", "commit"},
	)
	info.WithLabelValues(buildinfo.Version, buildinfo.Commit).Set(1)

	reg.MustRegister(m.publishTotal, m.viewTotal, m.requestDuration, info)
	return m
}

func (m *Metrics) published(result string) {
	m.publishTotal.WithLabelValues(result).Inc()
}

func (m *Metrics) viewed(requested, effective models.Segment) {
	m.viewTotal.WithLabelValues(requested.String(), effective.String()).Inc()
}

// middleware observes the duration of every request.
func (m *Metrics) middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unknown"
		}
		m.requestDuration.
			WithLabelValues(c.Request.Method, endpoint, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}

func (m *Metrics) handler() gin.HandlerFunc {
	h := promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
