package billing

import (
	"time"

	"github.com/jhoicas/qrbill-invoicer/internal/domain/entity"
)

// DefaultCutoverDay hasta este día (inclusive) se factura el mes anterior.
const DefaultCutoverDay = 15

const dateLayout = "02.01.2006"

// PeriodFor deriva el período de facturación a partir de now.
// Si now.Day() <= cutoverDay se factura el mes calendario anterior; si no, el mes actual.
func PeriodFor(now time.Time, cutoverDay int, loc Locale) entity.Period {
	if cutoverDay <= 0 {
		cutoverDay = DefaultCutoverDay
	}
	year, month := now.Year(), now.Month()
	if now.Day() <= cutoverDay {
		month--
		if month < time.January {
			month = time.December
			year--
		}
	}
	return entity.Period{
		Start: time.Date(year, month, 1, 0, 0, 0, 0, now.Location()),
		End:   time.Date(year, month, DaysIn(year, month), 0, 0, 0, 0, now.Location()),
		Label: loc.MonthYear(year, month),
	}
}

// DaysIn cantidad de días del mes (maneja años bisiestos).
func DaysIn(year int, month time.Month) int {
	// día 0 del mes siguiente = último día del mes pedido
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// FormatDate formato de fecha de la factura: dd.MM.yyyy.
func FormatDate(t time.Time) string {
	return t.Format(dateLayout)
}
