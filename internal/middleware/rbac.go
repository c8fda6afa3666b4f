package middleware

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/gema-qbank-api/internal/models"
	"github.com/noah-isme/gema-qbank-api/internal/utils"
)

// RequireRole ensures that the authenticated user possesses one of the allowed
// roles. The super-role is always admitted.
func RequireRole(roles ...models.Role) fiber.Handler {
	allowed := make(map[models.Role]struct{}, len(roles)+1)
	for _, role := range roles {
		normalized := models.Role(strings.ToLower(strings.TrimSpace(string(role))))
		if normalized != "" {
			allowed[normalized] = struct{}{}
		}
	}
	allowed[models.RoleSuperAdmin] = struct{}{}

	return func(c *fiber.Ctx) error {
		role := models.Role(normalizeRoleValue(c.Locals("user_role")))
		if _, ok := allowed[role]; !ok {
			return utils.SendError(c, fiber.StatusForbidden, "insufficient permissions")
		}
		return c.Next()
	}
}

func normalizeRoleValue(value interface{}) string {
	switch v := value.(type) {
	case string:
		return strings.ToLower(strings.TrimSpace(v))
	case fmt.Stringer:
		return strings.ToLower(strings.TrimSpace(v.String()))
	default:
		if value == nil {
			return ""
		}
		return strings.ToLower(strings.TrimSpace(fmt.Sprintf("%v", value)))
	}
}
