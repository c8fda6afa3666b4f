package middleware

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/noah-isme/gema-qbank-api/internal/utils"
)

// RateLimitRule bounds how often one caller may hit the routes it guards.
// Scope is usually a workflow operation name, so each stage endpoint keeps
// its own budget.
type RateLimitRule struct {
	Scope  string
	Max    int
	Window time.Duration
}

// RateLimit limits requests per scope, role and user. A user acting under two
// roles gets a budget for each; anonymous callers fall back to their IP.
func RateLimit(rule RateLimitRule) fiber.Handler {
	if rule.Max <= 0 {
		rule.Max = 10
	}
	if rule.Window <= 0 {
		rule.Window = time.Second
	}

	return limiter.New(limiter.Config{
		Max:          rule.Max,
		Expiration:   rule.Window,
		KeyGenerator: func(c *fiber.Ctx) string { return rateLimitKey(rule.Scope, c) },
		LimitReached: func(c *fiber.Ctx) error {
			return utils.Fail(c, fiber.StatusTooManyRequests, "rate limit exceeded", fiber.Map{
				"scope":          rule.Scope,
				"window_seconds": int(rule.Window.Seconds()),
			})
		},
	})
}

func rateLimitKey(scope string, c *fiber.Ctx) string {
	caller := c.IP()
	if id, ok := c.Locals("user_id").(uint); ok && id != 0 {
		caller = fmt.Sprintf("user:%d", id)
	}

	role := normalizeRoleValue(c.Locals("user_role"))
	if role == "" {
		role = "anonymous"
	}

	return scope + ":" + role + ":" + caller
}
