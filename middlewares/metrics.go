package middlewares

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/comandaonline/comanda-api/metrics"
)

// MetricsMiddleware alimenta os contadores e o histograma de requisições.
// Usa FullPath para não explodir a cardinalidade com ids nas rotas.
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}

		metrics.APIRequestCounter.With(prometheus.Labels{
			"method": c.Request.Method,
			"path":   path,
		}).Inc()

		c.Next()

		status := strconv.Itoa(c.Writer.Status())
		metrics.RequestDurationHistogram.With(prometheus.Labels{
			"method": c.Request.Method,
			"path":   path,
			"status": status,
		}).Observe(time.Since(start).Seconds())

		if c.Writer.Status() >= 400 {
			metrics.APIErrorCounter.With(prometheus.Labels{
				"method": c.Request.Method,
				"path":   path,
				"status": status,
			}).Inc()
		}
	}
}
