package odt

import (
	"github.com/jhoicas/qrbill-invoicer/internal/domain/billing"
	"github.com/jhoicas/qrbill-invoicer/internal/domain/entity"
)

// Marcadores que la plantilla puede contener. El conjunto es cerrado.
const (
	TokenDate               = "[Date]"
	TokenFirstDateMonth     = "[FirstDateMonth]"
	TokenHourlyWage         = "[HourlyWage]"
	TokenHours              = "[Hours]"
	TokenLastDateMonth      = "[LastDateMonth]"
	TokenMonthYear          = "[MonthYear]"
	TokenMWSTRate           = "[MWSTRate]"
	TokenMWSTPrice          = "[MWSTPrice]"
	TokenPlace              = "[Place]"
	TokenRecipient          = "[Recipient]"
	TokenStreet             = "[Street]"
	TokenTotalPrice         = "[TotalPrice]"
	TokenTotalPriceInclMWST = "[TotalPriceInclMWST]"
)

// Tokens todos los marcadores soportados.
var Tokens = []string{
	TokenDate,
	TokenFirstDateMonth,
	TokenHourlyWage,
	TokenHours,
	TokenLastDateMonth,
	TokenMonthYear,
	TokenMWSTRate,
	TokenMWSTPrice,
	TokenPlace,
	TokenRecipient,
	TokenStreet,
	TokenTotalPrice,
	TokenTotalPriceInclMWST,
}

// Values devuelve el texto (sin escapar) de cada marcador para la factura.
// Los montos pasan siempre por billing.FormatCurrency.
func Values(inv *entity.Invoice, nf billing.NumberFormat) map[string]string {
	return map[string]string{
		TokenDate:               billing.FormatDate(inv.Date),
		TokenFirstDateMonth:     billing.FormatDate(inv.Period.Start),
		TokenHourlyWage:         billing.FormatCurrency(inv.HourlyWage, nf),
		TokenHours:              inv.Hours.String(),
		TokenLastDateMonth:      billing.FormatDate(inv.Period.End),
		TokenMonthYear:          inv.Period.Label,
		TokenMWSTRate:           inv.TaxRate.String(),
		TokenMWSTPrice:          billing.FormatCurrency(inv.TaxAmount, nf),
		TokenPlace:              inv.Recipient.Place(),
		TokenRecipient:          inv.Recipient.Name,
		TokenStreet:             inv.Recipient.StreetLine(),
		TokenTotalPrice:         billing.FormatCurrency(inv.Subtotal, nf),
		TokenTotalPriceInclMWST: billing.FormatCurrency(inv.TotalInclTax, nf),
	}
}
