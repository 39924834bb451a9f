package entity

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Period período de facturación (un mes calendario completo).
type Period struct {
	Start time.Time
	End   time.Time
	Label string // "Februar 2024", según el locale configurado
}

// Invoice representa la factura de un período. Se construye una sola vez
// (billing.NewInvoice) y no se modifica después.
type Invoice struct {
	HourlyWage   decimal.Decimal
	TaxRate      decimal.Decimal // porcentaje, ej: 8.1
	Hours        decimal.Decimal
	Recipient    Address
	Currency     string
	Date         time.Time
	Period       Period
	Subtotal     decimal.Decimal // redondeado a 0.05
	TaxAmount    decimal.Decimal // sin redondear
	TotalInclTax decimal.Decimal // redondeado a 0.05
}

// FileBaseName nombre base de los archivos de salida:
// <prefix>_<destinatario con "_" en lugar de espacios>_<dd_MM_yyyy>.
func (inv *Invoice) FileBaseName(prefix string) string {
	name := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '/', '\\':
			return '_'
		}
		return r
	}, strings.TrimSpace(inv.Recipient.Name))
	return prefix + "_" + name + "_" + inv.Date.Format("02_01_2006")
}
