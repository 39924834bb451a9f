package qrbill

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"math"
	"strconv"
)

const svgFontFamily = "Helvetica, Arial, Liberation Sans, sans-serif"

// SVG serializa la escena. La unidad de usuario es 1 pt y el tamaño físico se
// declara en milímetros para que el visor respete 210×105 mm.
func (s *Scene) SVG() []byte {
	var b bytes.Buffer
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" version="1.1" width="%smm" height="%smm" viewBox="0 0 %s %s">`+"\n",
		num(billWidthMM), num(billHeightMM), num(s.Width), num(s.Height))

	for _, r := range s.Rects {
		fill := "#000"
		if r.White {
			fill = "#fff"
		}
		fmt.Fprintf(&b, `<rect x="%s" y="%s" width="%s" height="%s" fill="%s"/>`+"\n",
			num(r.X), num(r.Y), num(r.W), num(r.H), fill)
	}

	for _, t := range s.Texts {
		fmt.Fprintf(&b, `<text x="%s" y="%s" font-family="%s" font-size="%s"`, num(t.X), num(t.Y), svgFontFamily, num(t.Size))
		if t.Bold {
			b.WriteString(` font-weight="bold"`)
		}
		if t.AlignEnd {
			b.WriteString(` text-anchor="end"`)
		}
		b.WriteString(` fill="#000">`)
		_ = xml.EscapeText(&b, []byte(t.Value))
		b.WriteString("</text>\n")
	}

	b.WriteString("</svg>\n")
	return b.Bytes()
}

// num redondea a 3 decimales y quita ceros sobrantes.
func num(v float64) string {
	return strconv.FormatFloat(math.Round(v*1000)/1000, 'f', -1, 64)
}
