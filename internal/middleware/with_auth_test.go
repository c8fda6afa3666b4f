package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-qbank-api/internal/middleware"
)

func identityApp(locals map[string]interface{}) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		for key, value := range locals {
			c.Locals(key, value)
		}
		return c.Next()
	})
	app.Use(middleware.RequireIdentity())
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})
	return app
}

func TestRequireIdentityAcceptsCompleteClaims(t *testing.T) {
	app := identityApp(map[string]interface{}{"user_id": uint(10), "user_role": "creator"})

	resp := perform(t, app)
	require.Equal(t, fiber.StatusNoContent, resp.StatusCode)
}

func TestRequireIdentityRejectsMissingUser(t *testing.T) {
	app := identityApp(map[string]interface{}{"user_role": "creator"})

	resp := perform(t, app)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestRequireIdentityRejectsMissingRole(t *testing.T) {
	app := identityApp(map[string]interface{}{"user_id": uint(10)})

	resp := perform(t, app)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func perform(t *testing.T, app *fiber.App) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}
