package billing

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/qrbill-invoicer/internal/domain"
)

// ParseHours valida la entrada del usuario. Acepta "3.5" y "3,5".
// Vacío, no numérico, cero o negativo → domain.ErrInvalidHours.
func ParseHours(raw string) (decimal.Decimal, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return decimal.Zero, fmt.Errorf("%w: valor vacío", domain.ErrInvalidHours)
	}
	if strings.Count(s, ",") == 1 && !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	h, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q no es un número", domain.ErrInvalidHours, raw)
	}
	if !h.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: %s (deben ser mayores que cero)", domain.ErrInvalidHours, h.String())
	}
	return h, nil
}
