package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/fieldlab-api/internal/service"
)

// probeRoutes are polled by orchestrators and scrapers; counting them would
// drown the API traffic.
var probeRoutes = map[string]struct{}{
	"/health":  {},
	"/ready":   {},
	"/metrics": {},
}

// Metrics records latency and status per route pattern, so /samples/:id is one
// series no matter how many samples exist.
func Metrics(metricsSvc *service.MetricsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if metricsSvc == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if _, probe := probeRoutes[route]; probe {
			return
		}
		if route == "" {
			route = "unmatched"
		}
		metricsSvc.ObserveHTTPRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}

// ActorFields adds the authenticated username and role to request logs.
func ActorFields(c *gin.Context) []zap.Field {
	claims := Claims(c)
	if claims == nil {
		return nil
	}
	return []zap.Field{
		zap.String("user", claims.Username),
		zap.String("role", string(claims.Role)),
	}
}
