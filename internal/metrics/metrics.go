package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder is the metrics sink shared by the HTTP layer and the cache.
type Recorder interface {
	ObserveHTTPRequest(method, path string, status int, duration time.Duration)
	IncCacheHit(tier string)
	IncCacheMiss()
	IncCacheError(tier string)
}

// Init returns a Prometheus-backed recorder, or a noop one when disabled.
func Init(enabled bool) Recorder {
	if !enabled {
		return &noopRecorder{}
	}
	return newPrometheusRecorder()
}

type prometheusRecorder struct {
	httpRequests  *prometheus.CounterVec
	httpDurations *prometheus.HistogramVec
	cacheHits     *prometheus.CounterVec
	cacheMisses   prometheus.Counter
	cacheErrors   *prometheus.CounterVec
}

func newPrometheusRecorder() *prometheusRecorder {
	return &prometheusRecorder{
		httpRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "ferrusgate_http_requests_total",
			Help: "Total HTTP requests by method, path, and status.",
		}, []string{"method", "path", "status"}),
		httpDurations: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ferrusgate_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"}),
		cacheHits: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "ferrusgate_cache_hits_total",
			Help: "Cache hits by tier.",
		}, []string{"tier"}),
		cacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ferrusgate_cache_misses_total",
			Help: "Cache misses across both tiers.",
		}),
		cacheErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "ferrusgate_cache_errors_total",
			Help: "Cache backend errors by tier.",
		}, []string{"tier"}),
	}
}

func (p *prometheusRecorder) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	p.httpRequests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	p.httpDurations.WithLabelValues(method, path).Observe(duration.Seconds())
}

func (p *prometheusRecorder) IncCacheHit(tier string)   { p.cacheHits.WithLabelValues(tier).Inc() }
func (p *prometheusRecorder) IncCacheMiss()             { p.cacheMisses.Inc() }
func (p *prometheusRecorder) IncCacheError(tier string) { p.cacheErrors.WithLabelValues(tier).Inc() }

type noopRecorder struct{}

func (n *noopRecorder) ObserveHTTPRequest(string, string, int, time.Duration) {}
func (n *noopRecorder) IncCacheHit(string)                                    {}
func (n *noopRecorder) IncCacheMiss()                                         {}
func (n *noopRecorder) IncCacheError(string)                                  {}

// HTTPMiddleware records per-request counters and latency.
func HTTPMiddleware(rec Recorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		rec.ObserveHTTPRequest(c.Request.Method, path, c.Writer.Status(), time.Since(start))
	}
}

// Handler exposes the Prometheus scrape endpoint.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
