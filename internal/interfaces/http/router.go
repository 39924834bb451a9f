package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/qrbill-invoicer/internal/application/dto"
	"github.com/jhoicas/qrbill-invoicer/internal/application/invoicing"
	"github.com/jhoicas/qrbill-invoicer/pkg/jwt"
	"github.com/jhoicas/qrbill-invoicer/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Pipeline  *invoicing.Pipeline
	AppName   string
	JWTSecret string // vacío = API sin autenticación
	Log       *logger.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(dto.HealthResponse{Status: "ok", Service: deps.AppName})
	})

	api := app.Group("/api")

	invoices := api.Group("/invoices")
	if deps.JWTSecret != "" {
		invoices.Use(AuthMiddleware(deps.JWTSecret), RequireScope(jwt.ScopeInvoice))
	}
	invoiceHandler := NewInvoiceHandler(deps.Pipeline, deps.Log)
	invoices.Post("/", invoiceHandler.Create)
}
