package pdfstamp

import (
	"fmt"
	"strconv"
	"strings"
)

// Anchor borde de la página al que se pega la imagen.
type Anchor string

const (
	AnchorBottom Anchor = "bottom"
	AnchorTop    Anchor = "top"
)

// ParseAnchor acepta "bottom" o "top" (vacío = bottom).
func ParseAnchor(s string) (Anchor, error) {
	switch a := Anchor(strings.ToLower(strings.TrimSpace(s))); a {
	case "", AnchorBottom:
		return AnchorBottom, nil
	case AnchorTop:
		return AnchorTop, nil
	default:
		return "", fmt.Errorf("pdfstamp: anclaje %q inválido (bottom|top)", s)
	}
}

// PageSelector página destino: la primera, la última o un número fijo (base 1).
type PageSelector struct {
	last   bool
	number int
}

var (
	FirstPage = PageSelector{number: 1}
	LastPage  = PageSelector{last: true}
)

// Page selector de una página concreta.
func Page(n int) PageSelector { return PageSelector{number: n} }

// ParsePageSelector acepta "first", "last" o un número >= 1 (vacío = last).
func ParsePageSelector(s string) (PageSelector, error) {
	switch v := strings.ToLower(strings.TrimSpace(s)); v {
	case "", "last":
		return LastPage, nil
	case "first":
		return FirstPage, nil
	default:
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return PageSelector{}, fmt.Errorf("pdfstamp: página %q inválida (first|last|N)", s)
		}
		return Page(n), nil
	}
}

// Resolve número de página concreto para un documento de pageCount páginas.
func (p PageSelector) Resolve(pageCount int) (int, bool) {
	n := p.number
	if p.last {
		n = pageCount
	}
	return n, n >= 1 && n <= pageCount
}

func (p PageSelector) String() string {
	if p.last {
		return "last"
	}
	return strconv.Itoa(p.number)
}

// Rect posición en coordenadas PDF: puntos, origen en la esquina inferior izquierda.
type Rect struct {
	X, Y, W, H float64
}

// Place calcula dónde dibujar una imagen de imgW×imgH píxeles: ancho =
// widthFraction del ancho de página (fuera de (0,1] se usa 1), centrada en
// horizontal, conservando la proporción y pegada al borde indicado.
func Place(pageW, pageH float64, imgW, imgH int, widthFraction float64, anchor Anchor) Rect {
	if widthFraction <= 0 || widthFraction > 1 {
		widthFraction = 1
	}
	if imgW <= 0 || imgH <= 0 {
		return Rect{}
	}
	w := pageW * widthFraction
	h := w * float64(imgH) / float64(imgW)
	r := Rect{X: (pageW - w) / 2, W: w, H: h}
	if anchor == AnchorTop {
		r.Y = pageH - h
	}
	return r
}
