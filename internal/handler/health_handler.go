package handler

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/gema-qbank-api/internal/config"
	"github.com/noah-isme/gema-qbank-api/internal/utils"
)

const healthProbeTimeout = 2 * time.Second

// HealthProbe checks one backing service. A failing required probe makes the
// API unavailable; optional ones (cache, event bus) only degrade it because
// the workflow keeps working without them.
type HealthProbe struct {
	Name     string
	Required bool
	Check    func(ctx context.Context) error
}

// HealthResponse represents the payload returned by the health endpoint.
type HealthResponse struct {
	Status       string            `json:"status"`
	Timestamp    time.Time         `json:"timestamp"`
	Service      string            `json:"service"`
	Environment  string            `json:"environment"`
	Dependencies map[string]string `json:"dependencies,omitempty"`
}

// HealthCheck reports "ok", "degraded" (an optional probe failed) or
// "unavailable" (a required probe failed). The unavailable payload is served
// with 503 under details.
func HealthCheck(cfg config.Config, probes ...HealthProbe) fiber.Handler {
	return func(c *fiber.Ctx) error {
		payload := HealthResponse{
			Status:      "ok",
			Timestamp:   time.Now().UTC(),
			Service:     cfg.AppName,
			Environment: cfg.AppEnv,
		}

		if len(probes) > 0 {
			payload.Dependencies = make(map[string]string, len(probes))
		}
		for _, probe := range probes {
			ctx, cancel := context.WithTimeout(requestContext(c), healthProbeTimeout)
			err := probe.Check(ctx)
			cancel()

			if err == nil {
				payload.Dependencies[probe.Name] = "up"
				continue
			}
			payload.Dependencies[probe.Name] = "down: " + err.Error()
			switch {
			case probe.Required:
				payload.Status = "unavailable"
			case payload.Status == "ok":
				payload.Status = "degraded"
			}
		}

		if payload.Status == "unavailable" {
			return utils.Fail(c, fiber.StatusServiceUnavailable, "service unavailable", payload)
		}
		return utils.SendSuccess(c, "service healthy", payload)
	}
}
