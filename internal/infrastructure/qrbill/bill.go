// Package qrbill genera la sección de pago suiza (QR-bill): el contenido del
// Swiss QR Code, su validación y la imagen del QR-bill en vectorial (SVG) y
// rasterizada (PNG).
package qrbill

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/qrbill-invoicer/internal/domain/entity"
)

// ErrInvalidBill datos del QR-bill que no cumplen las reglas del Swiss QR Code.
var ErrInvalidBill = errors.New("qrbill: datos inválidos")

const (
	qrType    = "SPC"
	version   = "0200"
	coding    = "1" // UTF-8 restringido a Latin
	trailer   = "EPD"
	addrTypeS = "S" // dirección estructurada

	maxName        = 70
	maxStreet      = 70
	maxHouseNo     = 16
	maxPostalCode  = 16
	maxTown        = 35
	maxInformation = 140 // mensaje + información de facturación
)

var (
	minAmount = decimal.RequireFromString("0.01")
	maxAmount = decimal.RequireFromString("999999999.99")
)

// Bill datos de una sección de pago.
type Bill struct {
	Account       string // IBAN del acreedor
	Creditor      entity.Address
	Amount        decimal.NullDecimal // sin Valid = importe a completar por el deudor
	Currency      string              // CHF o EUR
	Debtor        *entity.Address     // nil = campo en blanco para completar a mano
	ReferenceType ReferenceType
	Reference     string
	Message       string // mensaje no estructurado
	BillingInfo   string // información de facturación estructurada (//S1/...)
}

// FieldError campo inválido del QR-bill.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("qrbill: %s: %s", e.Field, e.Reason)
}

func (e *FieldError) Unwrap() error { return ErrInvalidBill }

func invalid(field, format string, args ...any) error {
	return &FieldError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// Validate aplica las reglas de la especificación Swiss QR Code v2.0.
// Devuelve el primer error encontrado; todos envuelven ErrInvalidBill.
func (b *Bill) Validate() error {
	if err := ValidateIBAN(b.Account); err != nil {
		return invalid("account", "%v", err)
	}
	if err := validateAddress("creditor", b.Creditor); err != nil {
		return err
	}
	if b.Debtor != nil {
		if err := validateAddress("debtor", *b.Debtor); err != nil {
			return err
		}
	}

	if b.Currency != "CHF" && b.Currency != "EUR" {
		return invalid("currency", "%q no soportada (CHF o EUR)", b.Currency)
	}
	if b.Amount.Valid {
		if b.Amount.Decimal.LessThan(minAmount) || b.Amount.Decimal.GreaterThan(maxAmount) {
			return invalid("amount", "%s fuera de rango (%s - %s)", b.Amount.Decimal.StringFixed(2), minAmount, maxAmount)
		}
	}

	if err := b.validateReference(); err != nil {
		return err
	}

	if err := checkCharset("message", b.Message); err != nil {
		return err
	}
	if err := checkCharset("billing_info", b.BillingInfo); err != nil {
		return err
	}
	if n := utf8.RuneCountInString(b.Message) + utf8.RuneCountInString(b.BillingInfo); n > maxInformation {
		return invalid("message", "mensaje e información de facturación suman %d caracteres (máx. %d)", n, maxInformation)
	}
	return nil
}

func (b *Bill) validateReference() error {
	qrIBAN := IsQRIBAN(b.Account)
	switch b.ReferenceType {
	case ReferenceQRR:
		if !qrIBAN {
			return invalid("reference", "una referencia QRR exige un QR-IBAN")
		}
		if err := ValidateQRReference(b.Reference); err != nil {
			return invalid("reference", "%v", err)
		}
	case ReferenceSCOR:
		if qrIBAN {
			return invalid("reference", "un QR-IBAN exige referencia QRR")
		}
		if err := ValidateCreditorReference(b.Reference); err != nil {
			return invalid("reference", "%v", err)
		}
	case ReferenceNone, "":
		if qrIBAN {
			return invalid("reference", "un QR-IBAN exige referencia QRR")
		}
		if NormalizeReference(b.Reference) != "" {
			return invalid("reference", "tipo NON no admite referencia")
		}
	default:
		return invalid("reference_type", "%q desconocido", b.ReferenceType)
	}
	return nil
}

func validateAddress(field string, a entity.Address) error {
	required := []struct {
		name, value string
	}{
		{"name", a.Name},
		{"postal_code", a.PostalCode},
		{"town", a.Town},
		{"country", a.Country},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return invalid(field+"."+r.name, "obligatorio")
		}
	}

	limits := []struct {
		name, value string
		max         int
	}{
		{"name", a.Name, maxName},
		{"street", a.Street, maxStreet},
		{"house_no", a.HouseNo, maxHouseNo},
		{"postal_code", a.PostalCode, maxPostalCode},
		{"town", a.Town, maxTown},
	}
	for _, l := range limits {
		if n := utf8.RuneCountInString(l.value); n > l.max {
			return invalid(field+"."+l.name, "%d caracteres (máx. %d)", n, l.max)
		}
		if err := checkCharset(field+"."+l.name, l.value); err != nil {
			return err
		}
	}

	if len(a.Country) != 2 || !isUpper(a.Country[0]) || !isUpper(a.Country[1]) {
		return invalid(field+".country", "%q no es un código ISO de 2 letras", a.Country)
	}
	return nil
}

func isUpper(c byte) bool { return c >= 'A' && c <= 'Z' }

// Payload contenido textual del Swiss QR Code. Líneas separadas por "\n",
// sin separador final. No valida: llamar antes a Validate.
func (b *Bill) Payload() string {
	lines := []string{qrType, version, coding, NormalizeIBAN(b.Account)}
	lines = append(lines, addressLines(&b.Creditor)...)
	lines = append(lines, make([]string, 7)...) // acreedor final, reservado

	amount := ""
	if b.Amount.Valid {
		amount = b.Amount.Decimal.StringFixed(2)
	}
	lines = append(lines, amount, b.Currency)
	lines = append(lines, addressLines(b.Debtor)...)

	refType := b.ReferenceType
	if refType == "" {
		refType = ReferenceNone
	}
	lines = append(lines, string(refType), NormalizeReference(b.Reference), clean(b.Message), trailer)
	if info := clean(b.BillingInfo); info != "" {
		lines = append(lines, info)
	}
	return strings.Join(lines, "\n")
}

func addressLines(a *entity.Address) []string {
	if a == nil || a.IsZero() {
		return make([]string, 7)
	}
	return []string{
		addrTypeS,
		clean(a.Name),
		clean(a.Street),
		clean(a.HouseNo),
		clean(a.PostalCode),
		clean(a.Town),
		clean(a.Country),
	}
}

// clean elimina saltos de línea y espacios sobrantes: un valor ocupa exactamente una línea.
func clean(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
