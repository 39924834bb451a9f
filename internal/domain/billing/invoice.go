package billing

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/qrbill-invoicer/internal/domain/entity"
)

// InvoiceParams datos de entrada para construir la factura de un período.
type InvoiceParams struct {
	HourlyWage decimal.Decimal
	TaxRate    decimal.Decimal
	Hours      decimal.Decimal
	Recipient  entity.Address
	Currency   string
	Now        time.Time
	CutoverDay int
	Locale     Locale
}

// NewInvoice calcula totales y período y devuelve la factura inmutable.
// Falla con domain.ErrInvalidHours si Hours <= 0.
func NewInvoice(p InvoiceParams) (*entity.Invoice, error) {
	totals, err := Calculate(p.HourlyWage, p.Hours, p.TaxRate)
	if err != nil {
		return nil, err
	}
	return &entity.Invoice{
		HourlyWage:   p.HourlyWage,
		TaxRate:      p.TaxRate,
		Hours:        p.Hours,
		Recipient:    p.Recipient,
		Currency:     p.Currency,
		Date:         p.Now,
		Period:       PeriodFor(p.Now, p.CutoverDay, p.Locale),
		Subtotal:     totals.Subtotal,
		TaxAmount:    totals.TaxAmount,
		TotalInclTax: totals.TotalInclTax,
	}, nil
}
