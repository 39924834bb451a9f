package billing

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FormatCurrency formatea un monto con exactamente dos decimales y separador
// de miles según nf. Ej (de-CH): 1234.56 → "1’234.56", -1000 → "-1’000.00".
func FormatCurrency(v decimal.Decimal, nf NumberFormat) string {
	s := v.StringFixed(2)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	intPart, frac, _ := strings.Cut(s, ".")

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	n := len(intPart)
	for i := 0; i < n; i++ {
		if i > 0 && (n-i)%3 == 0 {
			b.WriteString(nf.Group)
		}
		b.WriteByte(intPart[i])
	}
	b.WriteString(nf.Decimal)
	b.WriteString(frac)
	return b.String()
}

// FormatAmount formato de máquina: sin separador de miles, punto decimal, 2 decimales (ej: 1234.50).
func FormatAmount(v decimal.Decimal) string {
	return v.StringFixed(2)
}
