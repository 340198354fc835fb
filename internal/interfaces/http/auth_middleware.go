package http

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/almacen-api/internal/application/dto"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
)

// Locals keys para el actor autenticado y su token en Fiber.
const (
	LocalActor = "actor"
	LocalToken = "token"
)

// Authenticator valida un token (firma, expiración y revocación) y devuelve el actor.
// Lo implementa *auth.AuthUseCase.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (entity.Actor, error)
}

// AuthMiddleware valida el Bearer Token JWT y deja el actor en c.Locals.
func AuthMiddleware(authn Authenticator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_TOKEN", Message: "Authorization header requerido"})
		}
		token, ok := bearerToken(authHeader)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "formato: Bearer <token>"})
		}
		actor, err := authn.Authenticate(c.UserContext(), token)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "token inválido, expirado o revocado"})
		}
		c.Locals(LocalActor, actor)
		c.Locals(LocalToken, token)
		return c.Next()
	}
}

// OptionalAuth carga el actor si viene un token válido; sin token (o con uno inválido)
// la petición sigue como anónima. Lo usa el registro para saber si quien registra es admin.
func OptionalAuth(authn Authenticator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if token, ok := bearerToken(c.Get(fiber.HeaderAuthorization)); ok {
			if actor, err := authn.Authenticate(c.UserContext(), token); err == nil {
				c.Locals(LocalActor, actor)
				c.Locals(LocalToken, token)
			}
		}
		return c.Next()
	}
}

// RequireRole permite el paso solo a los roles indicados. Debe usarse DESPUÉS de AuthMiddleware.
func RequireRole(roles ...entity.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role := GetActor(c).Role
		if role == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_ROLE", Message: "el token no incluye rol"})
		}
		for _, r := range roles {
			if role == r {
				return c.Next()
			}
		}
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "se requieren permisos de administrador"})
	}
}

// RequireAdmin atajo de RequireRole(entity.RoleAdmin).
func RequireAdmin() fiber.Handler {
	return RequireRole(entity.RoleAdmin)
}

// GetActor devuelve el actor del contexto; el valor cero si la petición es anónima.
func GetActor(c *fiber.Ctx) entity.Actor {
	actor, _ := c.Locals(LocalActor).(entity.Actor)
	return actor
}

// GetUserID devuelve el UserID del contexto (después del middleware de auth).
func GetUserID(c *fiber.Ctx) string {
	return GetActor(c).UserID
}

// GetRole devuelve el rol del contexto (después del middleware de auth).
func GetRole(c *fiber.Ctx) string {
	return string(GetActor(c).Role)
}

func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}
