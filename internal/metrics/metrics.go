package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "trimbook_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
	bookings = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trimbook_bookings_total",
			Help: "Appointment writes by operation and outcome",
		},
		[]string{"op", "outcome"},
	)
	casRetries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "trimbook_store_version_conflicts_total",
			Help: "Saves rejected because the shop changed underneath",
		},
	)
	eventsDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "trimbook_events_dropped_total",
			Help: "Events dropped because the dispatch queue was full",
		},
	)
	wsClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "trimbook_ws_clients",
			Help: "Connected websocket clients",
		},
	)
)

// Middleware records request duration by matched route.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		httpRequestDuration.
			WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}

func RecordBooking(op, outcome string) {
	bookings.WithLabelValues(op, outcome).Inc()
}

func RecordVersionConflict() {
	casRetries.Inc()
}

func RecordDroppedEvent() {
	eventsDropped.Inc()
}

func ClientConnected() {
	wsClients.Inc()
}

func ClientDisconnected() {
	wsClients.Dec()
}
