package billing

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/qrbill-invoicer/internal/domain"
)

// CoinIncrement granularidad de redondeo de los totales: 5 Rappen (monedas físicas).
var CoinIncrement = decimal.RequireFromString("0.05")

var hundred = decimal.NewFromInt(100)

// Totals resultado del cálculo de la factura.
type Totals struct {
	Subtotal     decimal.Decimal
	TaxAmount    decimal.Decimal
	TotalInclTax decimal.Decimal
}

// Calculate aplica la fórmula de la factura:
//
//	Subtotal     = Round5(wage * hours)
//	TaxAmount    = Subtotal * taxRate / 100          (sin redondear)
//	TotalInclTax = Round5(Subtotal + TaxAmount)
//
// Solo se redondean los totales; el impuesto entra sin redondear en la suma.
func Calculate(wage, hours, taxRate decimal.Decimal) (Totals, error) {
	if !hours.IsPositive() {
		return Totals{}, fmt.Errorf("%w: %s (deben ser mayores que cero)", domain.ErrInvalidHours, hours.String())
	}
	if wage.IsNegative() {
		return Totals{}, fmt.Errorf("billing: tarifa por hora negativa: %s", wage.String())
	}
	if taxRate.IsNegative() {
		return Totals{}, fmt.Errorf("billing: tasa de impuesto negativa: %s", taxRate.String())
	}

	subtotal := RoundToIncrement(wage.Mul(hours), CoinIncrement)
	tax := subtotal.Mul(taxRate).Div(hundred)
	return Totals{
		Subtotal:     subtotal,
		TaxAmount:    tax,
		TotalInclTax: RoundToIncrement(subtotal.Add(tax), CoinIncrement),
	}, nil
}

// RoundToIncrement redondea x al múltiplo de step más cercano (half away from zero):
// multiplica por 1/step, redondea a entero y divide de vuelta.
// step debe ser positivo y dividir a 1 exactamente (0.05, 0.01, 0.1, ...).
func RoundToIncrement(x, step decimal.Decimal) decimal.Decimal {
	if !step.IsPositive() {
		return x
	}
	factor := decimal.NewFromInt(1).Div(step)
	// decimal.Round redondea "half away from zero": 567.525 → 567.55
	return x.Mul(factor).Round(0).Div(factor)
}
