package middleware

import (
	"strconv"
	"time"

	"kala/internal/pkg/metrics"

	"github.com/gofiber/fiber/v3"
)

// Metrics records request count and latency by route pattern, so path
// parameters do not explode label cardinality.
func Metrics() fiber.Handler {
	return func(c fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		route := c.Route().Path
		if route == "" {
			route = "unmatched"
		}
		status := c.Response().StatusCode()
		if err != nil {
			status, _, _ = normalizeError(err)
		}

		metrics.HTTPRequests.WithLabelValues(c.Method(), route, strconv.Itoa(status)).Inc()
		metrics.HTTPDuration.WithLabelValues(c.Method(), route).Observe(time.Since(start).Seconds())
		return err
	}
}
