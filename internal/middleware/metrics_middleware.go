package middleware

import (
	"strconv"
	"time"

	"zefood-console/internal/metrics"

	"github.com/gin-gonic/gin"
)

// PrometheusMiddleware собирает метрики для HTTP запросов консоли
func PrometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Увеличиваем счетчик запросов в обработке
		metrics.RequestsInFlight.Inc()
		defer metrics.RequestsInFlight.Dec()

		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()

		// Получаем статус код и эндпоинт
		status := strconv.Itoa(c.Writer.Status())
		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unknown"
		}

		metrics.RequestsTotal.WithLabelValues(c.Request.Method, endpoint, status).Inc()
		metrics.RequestDuration.WithLabelValues(c.Request.Method, endpoint).Observe(duration)
	}
}
