package http_test

import (
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pedidos-api/internal/application/dto"
	"github.com/jhoicas/pedidos-api/internal/domain/entity"
	handlers "github.com/jhoicas/pedidos-api/internal/interfaces/http"
	"github.com/jhoicas/pedidos-api/pkg/jwt"
)

const testSecret = "access-secret-for-tests"

func newProtectedApp(t *testing.T) *fiber.App {
	t.Helper()
	app := fiber.New()
	protected := app.Group("/", handlers.AuthMiddleware(testSecret))
	protected.Get("/whoami", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"user_id": handlers.GetUserID(c), "role": handlers.GetRole(c)})
	})
	protected.Get("/admin-only", handlers.RequireRole(entity.RoleAdmin), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	return app
}

func accessToken(t *testing.T, secret, userID, role string, ttl time.Duration) string {
	t.Helper()
	token, err := jwt.Generate(secret, userID, role, jwt.TypeAccess, "test", "", ttl)
	require.NoError(t, err)
	return token
}

func doGet(t *testing.T, app *fiber.App, path, authHeader string) (int, string) {
	t.Helper()
	req := httptest.NewRequest(fiber.MethodGet, path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var body dto.ErrorResponse
	_ = json.NewDecoder(resp.Body).Decode(&body)
	return resp.StatusCode, body.Code
}

func TestAuthMiddleware_TokenValido(t *testing.T) {
	app := newProtectedApp(t)
	token := accessToken(t, testSecret, "user-1", entity.RoleUser, time.Minute)

	status, _ := doGet(t, app, "/whoami", "Bearer "+token)
	assert.Equal(t, fiber.StatusOK, status)
}

func TestAuthMiddleware_Rechazos(t *testing.T) {
	app := newProtectedApp(t)

	expired := accessToken(t, testSecret, "user-1", entity.RoleUser, -time.Minute)
	otherSecret := accessToken(t, "otro-secret", "user-1", entity.RoleUser, time.Minute)
	refreshToken, err := jwt.Generate(testSecret, "user-1", entity.RoleUser, jwt.TypeRefresh, "test", "jti-1", time.Minute)
	require.NoError(t, err)

	cases := []struct {
		name       string
		authHeader string
		wantCode   string
	}{
		{"sin header", "", "MISSING_TOKEN"},
		{"sin esquema Bearer", "token-a-secas", "INVALID_TOKEN"},
		{"esquema incorrecto", "Basic abc123", "INVALID_TOKEN"},
		// fasthttp recorta el espacio final, el header llega como "Bearer" a secas
		{"bearer vacío", "Bearer ", "INVALID_TOKEN"},
		{"token malformado", "Bearer no.es.jwt", "INVALID_TOKEN"},
		{"token expirado", "Bearer " + expired, "INVALID_TOKEN"},
		{"firma con otro secret", "Bearer " + otherSecret, "INVALID_TOKEN"},
		{"refresh token en vez de access", "Bearer " + refreshToken, "INVALID_TOKEN"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, code := doGet(t, app, "/whoami", tc.authHeader)
			assert.Equal(t, fiber.StatusUnauthorized, status)
			assert.Equal(t, tc.wantCode, code)
		})
	}
}

func TestAuthMiddleware_PropagaUserIDYRole(t *testing.T) {
	app := newProtectedApp(t)
	token := accessToken(t, testSecret, "user-42", entity.RoleAdmin, time.Minute)

	req := httptest.NewRequest(fiber.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "user-42", body["user_id"])
	assert.Equal(t, entity.RoleAdmin, body["role"])
}

func TestRequireRole_AdminPasa(t *testing.T) {
	app := newProtectedApp(t)
	token := accessToken(t, testSecret, "admin-1", entity.RoleAdmin, time.Minute)

	status, _ := doGet(t, app, "/admin-only", "Bearer "+token)
	assert.Equal(t, fiber.StatusOK, status)
}

func TestRequireRole_UsuarioComunRecibe403(t *testing.T) {
	app := newProtectedApp(t)
	token := accessToken(t, testSecret, "user-1", entity.RoleUser, time.Minute)

	status, code := doGet(t, app, "/admin-only", "Bearer "+token)
	assert.Equal(t, fiber.StatusForbidden, status)
	assert.Equal(t, "FORBIDDEN", code)
}

// Un token sin rol (claim vacío) no alcanza para rutas con RBAC.
func TestRequireRole_TokenSinRol(t *testing.T) {
	app := newProtectedApp(t)
	token := accessToken(t, testSecret, "user-1", "", time.Minute)

	status, code := doGet(t, app, "/admin-only", "Bearer "+token)
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Equal(t, "MISSING_ROLE", code)
}
