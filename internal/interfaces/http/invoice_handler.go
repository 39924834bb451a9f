package http

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/qrbill-invoicer/internal/application/dto"
	"github.com/jhoicas/qrbill-invoicer/internal/application/invoicing"
	"github.com/jhoicas/qrbill-invoicer/internal/domain"
	"github.com/jhoicas/qrbill-invoicer/pkg/logger"
)

// InvoiceHandler maneja las peticiones HTTP de facturación.
type InvoiceHandler struct {
	pipeline *invoicing.Pipeline
	log      *logger.Logger
}

// NewInvoiceHandler construye el handler.
func NewInvoiceHandler(p *invoicing.Pipeline, log *logger.Logger) *InvoiceHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &InvoiceHandler{pipeline: p, log: log}
}

// Create genera la factura del período y la devuelve como adjunto PDF.
// Cada petición escribe en su propio directorio temporal.
// Si solo falla el QR-bill, el PDF sin QR se entrega igual (200, X-QRBill: missing)
// con el código de error en X-QRBill-Error.
// POST /api/invoices
func (h *InvoiceHandler) Create(c *fiber.Ctx) error {
	var in dto.GenerateInvoiceRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}

	dir, err := os.MkdirTemp("", "qrbill-http-*")
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "no se pudo crear directorio de trabajo"})
	}
	defer func() {
		if err := os.RemoveAll(dir); err != nil {
			h.log.Warn().Err(err).Str("path", dir).Msg("no se pudo borrar directorio temporal")
		}
	}()

	res, err := h.pipeline.WithOutputDir(dir).Run(c.UserContext(), in.Hours.String())
	status, body := fiber.StatusCreated, dto.ErrorResponse{}
	if err != nil {
		status, body = errorResponse(err)
		if !unstampedDeliverable(res, err) {
			return c.Status(status).JSON(body)
		}
		h.log.Warn().Err(err).Str("run_id", res.RunID).Str("code", body.Code).Msg("se entrega el PDF sin QR-bill")
		status = fiber.StatusOK
	}

	data, err := os.ReadFile(res.PDFPath)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "no se pudo leer el PDF generado"})
	}
	c.Attachment(filepath.Base(res.PDFPath))
	c.Set("X-Run-ID", res.RunID)
	c.Set("X-Invoice-Total", res.Invoice.TotalInclTax.StringFixed(2))
	c.Set("X-Billing-Period", res.Invoice.Period.Label)
	if res.Stamped {
		c.Set(headerQRBill, "embedded")
	} else {
		c.Set(headerQRBill, "missing")
		c.Set(headerQRBillError, body.Code)
	}
	return c.Status(status).Send(data)
}

const (
	headerQRBill      = "X-QRBill"
	headerQRBillError = "X-QRBill-Error"
)

// unstampedDeliverable indica si, pese a err, existe un PDF sin QR-bill que entregar.
func unstampedDeliverable(res *invoicing.Result, err error) bool {
	if res == nil || res.Stamped || res.PDFPath == "" {
		return false
	}
	stage := domain.Stage(err)
	return stage == domain.StageQRBill || stage == domain.StageOverlay
}

// errorResponse traduce el error del pipeline a status y cuerpo HTTP.
func errorResponse(err error) (int, dto.ErrorResponse) {
	body := dto.ErrorResponse{Stage: domain.Stage(err)}
	switch {
	case errors.Is(err, domain.ErrInvalidHours):
		body.Code, body.Message = "INVALID_HOURS", err.Error()
		return fiber.StatusBadRequest, body
	case errors.Is(err, domain.ErrTemplateNotFound),
		errors.Is(err, domain.ErrMalformedTemplate),
		errors.Is(err, domain.ErrArchiveWrite):
		body.Code, body.Message = "TEMPLATE", "no se pudo rellenar la plantilla"
		return fiber.StatusInternalServerError, body
	case errors.Is(err, domain.ErrConverterUnavailable),
		errors.Is(err, domain.ErrConversionFailed):
		body.Code, body.Message = "CONVERTER", "la conversión a PDF falló"
		return fiber.StatusBadGateway, body
	case errors.Is(err, domain.ErrPdfOpen),
		errors.Is(err, domain.ErrPageNotFound),
		errors.Is(err, domain.ErrOverlayImage),
		errors.Is(err, domain.ErrPdfSave):
		body.Code, body.Message = "OVERLAY", "no se pudo incrustar el QR-bill"
		return fiber.StatusInternalServerError, body
	case errors.Is(err, domain.ErrQRBill):
		body.Code, body.Message = "QRBILL", "no se pudo generar el QR-bill"
		return fiber.StatusInternalServerError, body
	default:
		body.Code, body.Message = "INTERNAL", "error interno"
		return fiber.StatusInternalServerError, body
	}
}
