package qrbill

import (
	"fmt"
	"strings"
)

const ibanLength = 21 // CH y LI

// NormalizeIBAN quita espacios y pasa a mayúsculas.
func NormalizeIBAN(iban string) string {
	return strings.ToUpper(strings.Join(strings.Fields(iban), ""))
}

// ValidateIBAN acepta solo cuentas CH/LI de 21 caracteres con dígito de control mod-97 correcto.
func ValidateIBAN(iban string) error {
	s := NormalizeIBAN(iban)
	if len(s) != ibanLength {
		return fmt.Errorf("longitud %d, se esperaban %d caracteres", len(s), ibanLength)
	}
	if cc := s[:2]; cc != "CH" && cc != "LI" {
		return fmt.Errorf("país %q no soportado (solo CH o LI)", cc)
	}
	for i := 2; i < 4; i++ {
		if !isDigit(s[i]) {
			return fmt.Errorf("dígitos de control inválidos")
		}
	}
	if !mod97Valid(s[4:] + s[:4]) {
		return fmt.Errorf("dígito de control incorrecto")
	}
	return nil
}

// IsQRIBAN indica si el IID (posiciones 5-9) está en el rango reservado 30000-31999.
// Un QR-IBAN exige referencia QRR.
func IsQRIBAN(iban string) bool {
	s := NormalizeIBAN(iban)
	if len(s) != ibanLength {
		return false
	}
	iid := 0
	for i := 4; i < 9; i++ {
		if !isDigit(s[i]) {
			return false
		}
		iid = iid*10 + int(s[i]-'0')
	}
	return iid >= 30000 && iid <= 31999
}

// FormatIBAN agrupa de a 4 caracteres, como se imprime en el QR-bill.
func FormatIBAN(iban string) string {
	return groupFromLeft(NormalizeIBAN(iban), 4)
}

// mod97Valid calcula el resto módulo 97 convirtiendo letras a números (A=10 … Z=35).
func mod97Valid(s string) bool {
	rem := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case isDigit(c):
			rem = (rem*10 + int(c-'0')) % 97
		case c >= 'A' && c <= 'Z':
			rem = (rem*100 + int(c-'A') + 10) % 97
		default:
			return false
		}
	}
	return rem == 1
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func groupFromLeft(s string, size int) string {
	var b strings.Builder
	for i := 0; i < len(s); i += size {
		if i > 0 {
			b.WriteByte(' ')
		}
		end := min(i+size, len(s))
		b.WriteString(s[i:end])
	}
	return b.String()
}
