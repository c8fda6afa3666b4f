package observability

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsHandler serves the qbank registry. A collector that fails to gather
// is reported in the scrape instead of turning it into a 500, and the
// handler's own scrape counters are registered alongside the API metrics.
func MetricsHandler() fiber.Handler {
	reg := Registry()
	return adaptor.HTTPHandler(promhttp.InstrumentMetricHandler(reg, promhttp.HandlerFor(reg, promhttp.HandlerOpts{
		ErrorHandling:     promhttp.ContinueOnError,
		EnableOpenMetrics: true,
	})))
}
