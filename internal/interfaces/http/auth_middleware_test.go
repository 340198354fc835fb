package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/almacen-api/internal/application/dto"
	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	apphttp "github.com/jhoicas/almacen-api/internal/interfaces/http"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

// fakeAuthenticator acepta los tokens del mapa; el resto es inválido.
type fakeAuthenticator map[string]entity.Actor

func (f fakeAuthenticator) Authenticate(_ context.Context, token string) (entity.Actor, error) {
	actor, ok := f[token]
	if !ok {
		return entity.Actor{}, domain.ErrUnauthorized
	}
	return actor, nil
}

var tokens = fakeAuthenticator{
	"tok-admin":    {UserID: "u-1", Username: "ana", Role: entity.RoleAdmin},
	"tok-empleado": {UserID: "u-2", Username: "luis", Role: entity.RoleEmployee},
	"tok-sin-rol":  {UserID: "u-3", Username: "legacy"},
}

// buildTestApp construye una aplicación Fiber mínima con:
//   - AuthMiddleware para validar el token y cargar el actor
//   - RequireRole para autorizar el acceso
//   - Un handler dummy que devuelve 200 si pasa los middlewares
func buildTestApp(allowedRoles ...entity.Role) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		},
	})
	app.Get("/protected",
		apphttp.AuthMiddleware(tokens),
		apphttp.RequireRole(allowedRoles...),
		func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusOK).JSON(fiber.Map{
				"ok":   true,
				"role": apphttp.GetRole(c),
			})
		},
	)
	return app
}

// doRequest lanza una petición GET /protected y devuelve la respuesta.
func doRequest(t *testing.T, app *fiber.App, authHeader string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests RequireRole
// ──────────────────────────────────────────────────────────────────────────────

func TestRequireRole_AdminAccedeRutaAdmin(t *testing.T) {
	app := buildTestApp(entity.RoleAdmin)
	resp := doRequest(t, app, "Bearer tok-admin")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, true, body["ok"])
	assert.Equal(t, "admin", body["role"])
}

func TestRequireRole_EmpleadoAccedeRutaCompartida(t *testing.T) {
	app := buildTestApp(entity.RoleAdmin, entity.RoleEmployee)
	resp := doRequest(t, app, "Bearer tok-empleado")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRequireRole_EmpleadoBloqueadoEnRutaAdmin(t *testing.T) {
	app := buildTestApp(entity.RoleAdmin)
	resp := doRequest(t, app, "Bearer tok-empleado")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "FORBIDDEN")
}

func TestRequireRole_TokenSinRol_Retorna401(t *testing.T) {
	app := buildTestApp(entity.RoleAdmin)
	resp := doRequest(t, app, "Bearer tok-sin-rol")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "MISSING_ROLE")
}

func TestRequireRole_SinAuthHeader_Retorna401(t *testing.T) {
	app := buildTestApp(entity.RoleAdmin)
	resp := doRequest(t, app, "")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "MISSING_TOKEN")
}

func TestRequireRole_TokenInvalido_Retorna401(t *testing.T) {
	app := buildTestApp(entity.RoleAdmin)
	for _, header := range []string{"Bearer token.invalido.aqui", "Basic abc", "Bearer "} {
		resp := doRequest(t, app, header)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, header)
		resp.Body.Close()
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests AuthMiddleware / OptionalAuth
// ──────────────────────────────────────────────────────────────────────────────

func TestAuthMiddleware_CargaActor(t *testing.T) {
	app := fiber.New()
	app.Get("/me", apphttp.AuthMiddleware(tokens), func(c *fiber.Ctx) error {
		actor := apphttp.GetActor(c)
		return c.JSON(fiber.Map{
			"user_id":  apphttp.GetUserID(c),
			"username": actor.Username,
			"role":     apphttp.GetRole(c),
		})
	})

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "bearer tok-admin")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "u-1", body["user_id"])
	assert.Equal(t, "ana", body["username"])
	assert.Equal(t, "admin", body["role"])
}

func TestOptionalAuth_SinTokenSigueAnonimo(t *testing.T) {
	app := fiber.New()
	app.Get("/", apphttp.OptionalAuth(tokens), func(c *fiber.Ctx) error {
		return c.SendString(apphttp.GetRole(c))
	})

	for header, want := range map[string]string{"": "", "Bearer tok-admin": "admin", "Bearer otro": ""} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, want, string(body), header)
	}
}

func TestLogout_RevocaToken(t *testing.T) {
	srv := newTestServer(t)
	token := srv.register(t, "ana")

	resp := srv.do(t, http.MethodGet, "/api/sub-warehouses", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = srv.do(t, http.MethodPost, "/api/auth/logout", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = srv.do(t, http.MethodGet, "/api/sub-warehouses", token, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	_, err := srv.authUC.Authenticate(context.Background(), token)
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
}

func TestAuthMiddleware_RolDegradadoSeAplicaConTokenVigente(t *testing.T) {
	srv := newTestServer(t)
	adminToken := srv.register(t, "ana")

	resp := srv.do(t, http.MethodPost, "/api/users", adminToken, dto.CreateUserRequest{
		Username: "beto", Email: "beto@almacen.bo", Password: "secreto1", Role: "admin",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var beto dto.UserResponse
	decode(t, resp, &beto)

	betoToken := srv.login(t, "beto")
	resp = srv.do(t, http.MethodGet, "/api/users", betoToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = srv.do(t, http.MethodPut, "/api/users/"+beto.ID, adminToken, dto.UpdateUserRequest{
		Username: "beto", Email: "beto@almacen.bo", Role: "empleado",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = srv.do(t, http.MethodGet, "/api/users", betoToken, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = srv.do(t, http.MethodDelete, "/api/users/"+beto.ID, adminToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = srv.do(t, http.MethodGet, "/api/sub-warehouses", betoToken, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
