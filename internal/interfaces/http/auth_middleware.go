package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/qrbill-invoicer/internal/application/dto"
	"github.com/jhoicas/qrbill-invoicer/pkg/jwt"
)

// Locals keys para operador y alcance en Fiber.
const (
	LocalOperator = "operator"
	LocalScope    = "scope"
)

// AuthMiddleware valida el Bearer Token JWT y extrae operador y alcance a c.Locals.
func AuthMiddleware(jwtSecret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_TOKEN", Message: "Authorization header requerido"})
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "formato: Bearer <token>"})
		}
		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_TOKEN", Message: "token vacío"})
		}
		operator, scope, err := jwt.Parse(jwtSecret, tokenString)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "token inválido o expirado"})
		}
		c.Locals(LocalOperator, operator)
		c.Locals(LocalScope, scope)
		return c.Next()
	}
}

// RequireScope corta con 403 si el token no trae el alcance pedido.
// Debe ir después de AuthMiddleware.
func RequireScope(scope string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		got := GetScope(c)
		if got == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_SCOPE", Message: "el token no declara alcance"})
		}
		for _, s := range strings.Fields(got) {
			if s == scope {
				return c.Next()
			}
		}
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "alcance insuficiente"})
	}
}

// GetOperator devuelve el operador del contexto (después del middleware de auth).
func GetOperator(c *fiber.Ctx) string {
	s, _ := c.Locals(LocalOperator).(string)
	return s
}

// GetScope devuelve el alcance del contexto (después del middleware de auth).
func GetScope(c *fiber.Ctx) string {
	s, _ := c.Locals(LocalScope).(string)
	return s
}
