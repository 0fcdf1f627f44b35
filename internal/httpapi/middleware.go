package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/k-code-yt/retail-orders/internal/domain"
)

const actorKey = "actor"

// actorMiddleware consumes the identity the upstream gateway already
// authenticated. This service never checks credentials itself.
func actorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		idHeader := c.GetHeader("X-User-Id")
		roleHeader := c.GetHeader("X-User-Role")

		id, err := strconv.ParseInt(idHeader, 10, 64)
		if err != nil || idHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing_identity"})
			return
		}
		role := domain.Role(roleHeader)
		if role != domain.Role_Customer && role != domain.Role_Admin {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing_identity"})
			return
		}

		c.Set(actorKey, domain.Actor{ID: id, Role: role})
		c.Next()
	}
}

func currentActor(c *gin.Context) domain.Actor {
	return c.MustGet(actorKey).(domain.Actor)
}

// adminOnly enforces the admin-only operations (ship/cancel). Role checks
// live here at the boundary; the order service trusts its caller.
func adminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !currentActor(c).IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin_only"})
			return
		}
		c.Next()
	}
}

var (
	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	ordersPlaced = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "orders_placed_total",
			Help: "Total number of successfully placed orders",
		},
	)
)

func registerMetrics() {
	prometheus.MustRegister(httpRequests)
	prometheus.MustRegister(httpDuration)
	prometheus.MustRegister(ordersPlaced)
}

func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		duration := time.Since(start).Seconds()
		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}
		httpDuration.WithLabelValues(c.Request.Method, endpoint).Observe(duration)
		httpRequests.WithLabelValues(c.Request.Method, endpoint, strconv.Itoa(c.Writer.Status())).Inc()
	}
}
