package http_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apphttp "github.com/jhoicas/erp-stock/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/erp-stock/pkg/jwt"
)

// whoami app mínima: auth + rol opcional + handler que devuelve la identidad de Locals.
func whoami(roles ...string) *fiber.App {
	app := fiber.New()
	handlers := []fiber.Handler{apphttp.AuthMiddleware(testJWTSecret)}
	if len(roles) > 0 {
		handlers = append(handlers, apphttp.RequireRole(roles...))
	}
	handlers = append(handlers, func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"user_id":   apphttp.GetUserID(c),
			"tenant_id": apphttp.GetTenantID(c),
			"role":      apphttp.GetRole(c),
		})
	})
	app.Get("/whoami", handlers...)
	return app
}

func get(t *testing.T, app *fiber.App, authHeader string) (int, map[string]string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	body := map[string]string{}
	_ = json.NewDecoder(resp.Body).Decode(&body)
	return resp.StatusCode, body
}

func signed(t *testing.T, claims gojwt.Claims, secret string) string {
	t.Helper()
	tok, err := gojwt.NewWithClaims(gojwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return "Bearer " + tok
}

func TestAuthMiddleware_Rechazos(t *testing.T) {
	future := gojwt.NewNumericDate(time.Now().Add(time.Hour))
	past := gojwt.NewNumericDate(time.Now().Add(-time.Hour))

	cases := []struct {
		name   string
		header string
		code   string
	}{
		{"sin header", "", "MISSING_TOKEN"},
		{"esquema distinto de Bearer", "Token abc", "INVALID_TOKEN"},
		{"token mal formado", "Bearer a.b.c", "INVALID_TOKEN"},
		{"firma con otro secreto", signed(t, pkgjwt.Claims{
			RegisteredClaims: gojwt.RegisteredClaims{ExpiresAt: future},
			UserID:           testUserID, TenantID: testTenantID, Role: "admin",
		}, "otro-secreto"), "INVALID_TOKEN"},
		{"expirado", signed(t, pkgjwt.Claims{
			RegisteredClaims: gojwt.RegisteredClaims{ExpiresAt: past},
			UserID:           testUserID, TenantID: testTenantID, Role: "admin",
		}, testJWTSecret), "INVALID_TOKEN"},
		{"sin company_id", signed(t, pkgjwt.Claims{
			RegisteredClaims: gojwt.RegisteredClaims{ExpiresAt: future},
			UserID:           testUserID, Role: "admin",
		}, testJWTSecret), "INVALID_TOKEN"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, body := get(t, whoami(), tc.header)
			assert.Equal(t, http.StatusUnauthorized, status)
			assert.Equal(t, tc.code, body["code"])
		})
	}
}

func TestAuthMiddleware_Mensajes(t *testing.T) {
	_, body := get(t, whoami(), "")
	assert.Equal(t, "authorization header required", body["message"])

	_, body = get(t, whoami(), "Bearer a.b.c")
	assert.Equal(t, "invalid or expired token", body["message"])

	_, body = get(t, whoami(apphttp.RoleAdmin), token(t, apphttp.RoleCashier))
	assert.Equal(t, "role not allowed for this operation", body["message"])
}

func TestAuthMiddleware_TenantDesdeCompanyID(t *testing.T) {
	status, body := get(t, whoami(), token(t, "cashier"))
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, testUserID, body["user_id"])
	assert.Equal(t, testTenantID, body["tenant_id"])
	assert.Equal(t, "cashier", body["role"])
}

func TestRequireRole(t *testing.T) {
	manage := []string{apphttp.RoleAdmin, apphttp.RoleStock}
	cases := []struct {
		role   string
		status int
	}{
		{apphttp.RoleAdmin, http.StatusOK},
		{apphttp.RoleStock, http.StatusOK},
		{apphttp.RoleCashier, http.StatusForbidden},
		{"auditor", http.StatusForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.role, func(t *testing.T) {
			status, body := get(t, whoami(manage...), token(t, tc.role))
			assert.Equal(t, tc.status, status)
			if tc.status == http.StatusForbidden {
				assert.Equal(t, "FORBIDDEN", body["code"])
			}
		})
	}
}

func TestRequireRole_TokenSinRol(t *testing.T) {
	tok, err := pkgjwt.Generate(testJWTSecret, pkgjwt.Identity{UserID: testUserID, TenantID: testTenantID}, testIssuer, testExpMin)
	require.NoError(t, err)

	status, body := get(t, whoami(apphttp.RoleAdmin), "Bearer "+tok)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "MISSING_ROLE", body["code"])
}
