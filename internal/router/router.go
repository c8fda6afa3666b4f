package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/gema-qbank-api/internal/config"
	"github.com/noah-isme/gema-qbank-api/internal/handler"
	"github.com/noah-isme/gema-qbank-api/internal/middleware"
	"github.com/noah-isme/gema-qbank-api/internal/observability"
	"github.com/noah-isme/gema-qbank-api/internal/service"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	QuestionHandler       *handler.QuestionHandler
	ClassificationHandler *handler.ClassificationHandler
	ActivityHandler       *handler.ActivityHandler
	Gate                  *service.AccessGate
	JWTMiddleware         fiber.Handler
	HealthProbes          []handler.HealthProbe
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	app.Get("/metrics", observability.MetricsHandler())

	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg, deps.HealthProbes...))

	// Use provided JWT middleware, or a no-op if nil
	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	gate := deps.Gate
	if gate == nil {
		gate = service.NewAccessGate()
	}

	window := cfg.RateLimitWindow
	if window <= 0 {
		window = time.Minute
	}
	mutationMax := cfg.RateLimitMutationMax
	if mutationMax <= 0 {
		mutationMax = cfg.RateLimitMax
	}

	if deps.QuestionHandler != nil {
		questions := api.Group("/questions",
			jwtMiddleware,
			middleware.RequireIdentity(),
			middleware.RateLimit(middleware.RateLimitRule{Scope: "questions", Max: cfg.RateLimitMax, Window: window}),
		)
		deps.QuestionHandler.Register(questions, stageGuard(gate, mutationMax, window))
	}

	if deps.ClassificationHandler != nil {
		classification := api.Group("/classification", jwtMiddleware, middleware.RequireIdentity())
		deps.ClassificationHandler.Register(classification)
	}

	if deps.ActivityHandler != nil {
		activity := api.Group("/activity",
			jwtMiddleware,
			middleware.RequireIdentity(),
			middleware.RequireRole(gate.AllowedRoles(service.OperationManageClassification)...),
		)
		deps.ActivityHandler.Register(activity)
	}
}

// stageGuard admits only the roles the gate allows for op. Mutating stage
// operations also get a per-operation budget of mutationMax requests.
func stageGuard(gate *service.AccessGate, mutationMax int, window time.Duration) handler.RouteGuard {
	return func(op service.Operation) []fiber.Handler {
		handlers := []fiber.Handler{middleware.RequireRole(gate.AllowedRoles(op)...)}
		if op.Mutates() {
			handlers = append(handlers, middleware.RateLimit(middleware.RateLimitRule{
				Scope:  string(op),
				Max:    mutationMax,
				Window: window,
			}))
		}
		return handlers
	}
}
