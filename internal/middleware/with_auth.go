package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/gema-qbank-api/internal/utils"
)

// RequireIdentity rejects requests whose token did not resolve to both a user
// id and a role. It runs after JWTProtected.
func RequireIdentity() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := c.Locals("user_id").(uint); !ok {
			return utils.Fail(c, fiber.StatusUnauthorized, "authentication required", nil)
		}
		if normalizeRoleValue(c.Locals("user_role")) == "" {
			return utils.Fail(c, fiber.StatusUnauthorized, "token carries no role", nil)
		}
		return c.Next()
	}
}
