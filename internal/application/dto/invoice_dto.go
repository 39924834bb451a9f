package dto

import "encoding/json"

// GenerateInvoiceRequest cuerpo de POST /api/invoices.
// Hours acepta número o string: {"hours": 3.5} o {"hours": "3.5"}.
type GenerateInvoiceRequest struct {
	Hours json.Number `json:"hours"`
}

// HealthResponse cuerpo de GET /health.
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}
