package middlewares

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/quickbid/quickbid/helpers"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

func okApp(middleware fiber.Handler) *fiber.App {
	app := fiber.New()
	app.Post("/", middleware, func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	return app
}

func TestAdminAuth(t *testing.T) {
	t.Setenv("ADMIN_API_KEY", "top-secret")
	app := okApp(AdminAuth())

	req := httptest.NewRequest("POST", "/", nil)
	req.Header.Set("X-Admin-Key", "top-secret")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	req = httptest.NewRequest("POST", "/", nil)
	req.Header.Set("X-Admin-Key", "wrong")
	resp, err = app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	req = httptest.NewRequest("POST", "/", nil)
	resp, err = app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestAdminAuth_RejectsWhenUnconfigured(t *testing.T) {
	t.Setenv("ADMIN_API_KEY", "")
	app := okApp(AdminAuth())

	req := httptest.NewRequest("POST", "/", nil)
	req.Header.Set("X-Admin-Key", "")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestGatewaySignature(t *testing.T) {
	t.Setenv("GATEWAY_WEBHOOK_SECRET", "webhook-secret")
	app := okApp(GatewaySignature())

	body := `{"event_id":"evt-1","type":"wallet_topup"}`

	req := httptest.NewRequest("POST", "/", strings.NewReader(body))
	req.Header.Set("X-Gateway-Signature", helpers.SignPayload([]byte(body), "webhook-secret"))
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	req = httptest.NewRequest("POST", "/", strings.NewReader(body))
	req.Header.Set("X-Gateway-Signature", helpers.SignPayload([]byte(body), "other-secret"))
	resp, err = app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	req = httptest.NewRequest("POST", "/", strings.NewReader(body))
	resp, err = app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}
