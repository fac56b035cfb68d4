// Package metrics exposes Prometheus collectors for the social core and its HTTP surface.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Actions counts social actions by name and outcome: ok, noop or error.
	Actions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "social_actions_total",
		Help: "Social actions by action and result",
	}, []string{"action", "result"})

	// NotificationsCreated counts stored notifications by verb.
	NotificationsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "social_notifications_created_total",
		Help: "Notifications persisted, by verb",
	}, []string{"verb"})

	// NotificationsSuppressed counts self-notifications that were dropped.
	NotificationsSuppressed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "social_notifications_suppressed_total",
		Help: "Notifications dropped because the actor is the recipient",
	})

	// PublishErrors counts failed realtime publishes.
	PublishErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "social_notification_publish_errors_total",
		Help: "Realtime notification publishes that failed",
	})

	// FeedFanout records how many followed authors a feed read spans.
	FeedFanout = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "social_feed_fanout_authors",
		Help:    "Number of followed authors per feed read",
		Buckets: []float64{0, 1, 10, 50, 100, 500, 1000, 5000},
	})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "social_http_request_duration_seconds",
		Help:    "HTTP request latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
)

// Observe records one action outcome.
func Observe(action string, err error, changed bool) {
	result := "ok"
	switch {
	case err != nil:
		result = "error"
	case !changed:
		result = "noop"
	}
	Actions.WithLabelValues(action, result).Inc()
}

// Middleware times every request against its route template.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		HTTPRequestDuration.
			WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}

func Handler() http.Handler { return promhttp.Handler() }
