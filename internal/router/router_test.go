package router

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-qbank-api/internal/config"
	"github.com/noah-isme/gema-qbank-api/internal/handler"
	"github.com/noah-isme/gema-qbank-api/internal/middleware"
	"github.com/noah-isme/gema-qbank-api/internal/service"
)

func TestRegisterExposesPublicEndpoints(t *testing.T) {
	app := fiber.New()
	logger := zerolog.New(io.Discard)
	middleware.Register(app, middleware.Config{Logger: &logger})
	cfg := config.Config{AppName: "Test", JWTSecret: "secret"}

	Register(app, cfg, Dependencies{
		QuestionHandler: handler.NewQuestionHandler(service.NewQuestionWorkflowService(nil, nil, service.NewAccessGate(), nil, nil, nil, logger), logger),
		JWTMiddleware:   middleware.JWTProtected(cfg.JWTSecret),
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/health", nil), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, "Test", resp.Header.Get("X-Application"))
	require.NotEmpty(t, resp.Header.Get("X-Correlation-ID"))

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/questions/queue", nil), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.True(t, strings.Contains(string(body), "qbank_requests_total"))
}

func TestStageGuardLimitsMutatingOperations(t *testing.T) {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user_id", uint(4))
		c.Locals("user_role", c.Get("X-Role"))
		return c.Next()
	})
	guard := stageGuard(service.NewAccessGate(), 1, time.Minute)
	ok := func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) }
	app.Post("/approve", append(guard(service.OperationApprove), ok)...)
	app.Get("/view", append(guard(service.OperationView), ok)...)

	call := func(method, path, role string) int {
		req := httptest.NewRequest(method, path, nil)
		req.Header.Set("X-Role", role)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		return resp.StatusCode
	}

	require.Equal(t, fiber.StatusForbidden, call(http.MethodPost, "/approve", "gatherer"))
	require.Equal(t, fiber.StatusOK, call(http.MethodPost, "/approve", "processor"))
	require.Equal(t, fiber.StatusTooManyRequests, call(http.MethodPost, "/approve", "processor"))

	for i := 0; i < 3; i++ {
		require.Equal(t, fiber.StatusOK, call(http.MethodGet, "/view", "processor"))
	}
}
