package qrbill

import "unicode"

// latin rangos de caracteres admitidos en un Swiss QR Code con codificación 1:
// Basic Latin imprimible, Latin-1, Latin Extended-A, Ș/ș/Ț/ț y el signo del euro.
var latin = &unicode.RangeTable{
	R16: []unicode.Range16{
		{Lo: 0x0020, Hi: 0x007e, Stride: 1},
		{Lo: 0x00a0, Hi: 0x017f, Stride: 1},
		{Lo: 0x0218, Hi: 0x021b, Stride: 1},
		{Lo: 0x20ac, Hi: 0x20ac, Stride: 1},
	},
	LatinOffset: 1,
}

// checkCharset valida el texto tal como se escribe en el Swiss QR Code (ver clean).
func checkCharset(field, s string) error {
	for i, r := range []rune(clean(s)) {
		if !unicode.Is(latin, r) {
			return invalid(field, "carácter %q (U+%04X) en la posición %d no admitido", r, r, i+1)
		}
	}
	return nil
}
