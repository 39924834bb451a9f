package qrbill

import (
	"fmt"
	"strings"
)

// ReferenceType tipo de referencia del QR-bill.
type ReferenceType string

const (
	ReferenceQRR  ReferenceType = "QRR"  // referencia QR, 27 dígitos, exige QR-IBAN
	ReferenceSCOR ReferenceType = "SCOR" // Creditor Reference ISO 11649
	ReferenceNone ReferenceType = "NON"
)

const qrrLength = 27

var mod10Table = [10]int{0, 9, 4, 6, 8, 2, 7, 1, 3, 5}

// NormalizeReference quita espacios y pasa a mayúsculas.
func NormalizeReference(ref string) string {
	return strings.ToUpper(strings.Join(strings.Fields(ref), ""))
}

// DetectReferenceType deduce el tipo a partir del texto: vacío → NON, "RF…" → SCOR, resto → QRR.
func DetectReferenceType(ref string) ReferenceType {
	s := NormalizeReference(ref)
	switch {
	case s == "":
		return ReferenceNone
	case strings.HasPrefix(s, "RF"):
		return ReferenceSCOR
	default:
		return ReferenceQRR
	}
}

// QRRCheckDigit dígito de control módulo 10 recursivo de una cadena de dígitos.
func QRRCheckDigit(digits string) (int, error) {
	carry := 0
	for i := 0; i < len(digits); i++ {
		if !isDigit(digits[i]) {
			return 0, fmt.Errorf("carácter no numérico %q", digits[i])
		}
		carry = mod10Table[(carry+int(digits[i]-'0'))%10]
	}
	return (10 - carry) % 10, nil
}

// NewQRReference completa una referencia de hasta 26 dígitos con ceros a la
// izquierda y le agrega el dígito de control.
func NewQRReference(digits string) (string, error) {
	digits = NormalizeReference(digits)
	if len(digits) == 0 || len(digits) > qrrLength-1 {
		return "", fmt.Errorf("se esperaban entre 1 y %d dígitos", qrrLength-1)
	}
	body := strings.Repeat("0", qrrLength-1-len(digits)) + digits
	check, err := QRRCheckDigit(body)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%d", body, check), nil
}

// ValidateQRReference exige 27 dígitos con dígito de control correcto.
func ValidateQRReference(ref string) error {
	s := NormalizeReference(ref)
	if len(s) != qrrLength {
		return fmt.Errorf("longitud %d, se esperaban %d dígitos", len(s), qrrLength)
	}
	check, err := QRRCheckDigit(s[:qrrLength-1])
	if err != nil {
		return err
	}
	if int(s[qrrLength-1]-'0') != check {
		return fmt.Errorf("dígito de control incorrecto")
	}
	return nil
}

// ValidateCreditorReference valida una referencia ISO 11649 ("RF" + 2 dígitos + hasta 21 alfanuméricos).
func ValidateCreditorReference(ref string) error {
	s := NormalizeReference(ref)
	if len(s) < 5 || len(s) > 25 {
		return fmt.Errorf("longitud %d fuera de rango (5-25)", len(s))
	}
	if !strings.HasPrefix(s, "RF") || !isDigit(s[2]) || !isDigit(s[3]) {
		return fmt.Errorf("debe comenzar con RF y dos dígitos de control")
	}
	if !mod97Valid(s[4:] + s[:4]) {
		return fmt.Errorf("dígito de control incorrecto")
	}
	return nil
}

// FormatReference formato de impresión: QRR en bloques de 5 desde la derecha,
// SCOR en bloques de 4 desde la izquierda.
func FormatReference(t ReferenceType, ref string) string {
	s := NormalizeReference(ref)
	switch t {
	case ReferenceQRR:
		return groupFromRight(s, 5)
	case ReferenceSCOR:
		return groupFromLeft(s, 4)
	default:
		return s
	}
}

func groupFromRight(s string, size int) string {
	head := len(s) % size
	if head == 0 {
		return groupFromLeft(s, size)
	}
	if len(s) <= size {
		return s
	}
	return s[:head] + " " + groupFromLeft(s[head:], size)
}
