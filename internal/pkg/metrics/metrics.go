package metrics

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"cart-engine/internal/pkg/errs"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"code", "method", "path"},
	)
	httpRequestsDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
	httpRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Current Number of HTTP requests being processed.",
		},
	)

	cartOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cart_operations_total",
			Help: "Cart engine operations by outcome.",
		},
		[]string{"operation", "result"},
	)
	cartVersionConflictsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cart_version_conflicts_total",
			Help: "Optimistic concurrency conflicts seen on save.",
		},
		[]string{"operation", "retried"},
	)
	cartCollaboratorTimeoutsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cart_collaborator_timeouts_total",
			Help: "Collaborator calls abandoned after the configured timeout.",
		},
		[]string{"operation"},
	)
)

func init() {
	if err := prometheus.Register(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{})); err != nil {
		slog.Debug("ProcessCollector registration skipped (likely already registered)",
			slog.String("error", err.Error()))
	}
}

// Middleware records request counts and latency per route template.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		httpRequestsInFlight.Inc()
		defer httpRequestsInFlight.Dec()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		httpRequestsTotal.WithLabelValues(strconv.Itoa(c.Writer.Status()), c.Request.Method, path).Inc()
		httpRequestsDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

// Handler serves the Prometheus /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

func ObserveCartOperation(operation string, err error) {
	cartOperationsTotal.WithLabelValues(operation, resultLabel(err)).Inc()
	if err != nil && errs.Is(err, errs.ErrCollaboratorTimeout) {
		cartCollaboratorTimeoutsTotal.WithLabelValues(operation).Inc()
	}
}

func ObserveVersionConflict(operation string, retried bool) {
	cartVersionConflictsTotal.WithLabelValues(operation, strconv.FormatBool(retried)).Inc()
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return "success"
	case errs.Is(err, errs.ErrConcurrentModification):
		return "conflict"
	case errs.Is(err, errs.ErrCollaboratorTimeout):
		return "timeout"
	case errs.Is(err, errs.ErrCartNotFound), errs.Is(err, errs.ErrItemNotFound):
		return "not_found"
	case errs.Is(err, errs.ErrCartExpired), errs.Is(err, errs.ErrCartNotMutable):
		return "not_mutable"
	case errs.Is(err, errs.ErrInvalidQuantity), errs.Is(err, errs.ErrInvalidCoupon),
		errs.Is(err, errs.ErrCheckoutPrecondition), errs.Is(err, errs.ErrCurrencyMismatch):
		return "rejected"
	default:
		return "error"
	}
}
