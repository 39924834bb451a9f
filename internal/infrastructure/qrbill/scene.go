package qrbill

import (
	"image"

	"github.com/jhoicas/qrbill-invoicer/internal/domain/billing"
	"github.com/jhoicas/qrbill-invoicer/internal/domain/entity"
)

// Medidas del formato QR-bill (A6 apaisado), en milímetros.
const (
	billWidthMM    = 210.0
	billHeightMM   = 105.0
	receiptWidthMM = 62.0
	marginMM       = 5.0
	qrSizeMM       = 46.0
	qrTopMM        = 17.0
	crossSizeMM    = 7.0
	amountTopMM    = 68.0
	infoLeftMM     = 118.0
	lineMM         = 0.2

	ptPerMM = 72 / 25.4
)

func mm(v float64) float64 { return v * ptPerMM }

// Rect rectángulo relleno, en puntos desde la esquina superior izquierda.
type Rect struct {
	X, Y, W, H float64
	White      bool
}

// Text línea de texto; Y es la línea base.
type Text struct {
	X, Y     float64
	Size     float64
	Bold     bool
	AlignEnd bool // X marca el extremo derecho
	Value    string
}

// Scene elementos del QR-bill en puntos (1 pt = 1/72 in). Es la única
// descripción del dibujo: SVG y PNG se generan a partir de ella.
type Scene struct {
	Width, Height float64
	Rects         []Rect
	Texts         []Text
}

func (s *Scene) rect(x, y, w, h float64, white bool) {
	s.Rects = append(s.Rects, Rect{X: x, Y: y, W: w, H: h, White: white})
}

func (s *Scene) text(x, y, size float64, bold bool, v string) {
	s.Texts = append(s.Texts, Text{X: x, Y: y, Size: size, Bold: bold, Value: v})
}

// frame dibuja solo las esquinas de un campo en blanco, como exige el formato.
func (s *Scene) frame(x, y, w, h float64) {
	const arm, t = 3 * ptPerMM, 0.75
	s.rect(x, y, arm, t, false)
	s.rect(x, y, t, arm, false)
	s.rect(x+w-arm, y, arm, t, false)
	s.rect(x+w-t, y, t, arm, false)
	s.rect(x, y+h-t, arm, t, false)
	s.rect(x, y+h-arm, t, arm, false)
	s.rect(x+w-arm, y+h-t, arm, t, false)
	s.rect(x+w-t, y+h-arm, t, arm, false)
}

// column escribe bloques título + valores desde (x, y) hacia abajo.
type column struct {
	s           *Scene
	x, y        float64
	labelSize   float64
	valueSize   float64
	blockGap    float64
	lineSpacing float64
}

func (c *column) block(label string, values ...string) {
	c.y += c.labelSize
	c.s.text(c.x, c.y, c.labelSize, true, label)
	for _, v := range values {
		if v == "" {
			continue
		}
		c.y += c.valueSize * c.lineSpacing
		c.s.text(c.x, c.y, c.valueSize, false, v)
	}
	c.y += c.blockGap
}

var billNumber = billing.NumberFormat{Group: " ", Decimal: "."}

// layout arma la escena completa: recibo a la izquierda, sección de pago a la derecha.
func layout(b *Bill, lang Language, code image.Image) *Scene {
	lb := labelsFor(lang)
	s := &Scene{Width: mm(billWidthMM), Height: mm(billHeightMM)}

	// Líneas de corte.
	s.rect(0, 0, s.Width, mm(lineMM), false)
	s.rect(mm(receiptWidthMM), 0, mm(lineMM), s.Height, false)

	creditor := append([]string{FormatIBAN(b.Account)}, addressText(&b.Creditor)...)
	reference := ""
	if b.ReferenceType == ReferenceQRR || b.ReferenceType == ReferenceSCOR {
		reference = FormatReference(b.ReferenceType, b.Reference)
	}
	amount := ""
	if b.Amount.Valid {
		amount = billing.FormatCurrency(b.Amount.Decimal, billNumber)
	}

	// Recibo.
	s.text(mm(marginMM), mm(marginMM)+11, 11, true, lb.Receipt)
	rc := &column{s: s, x: mm(marginMM), y: mm(12), labelSize: 6, valueSize: 8, blockGap: 9, lineSpacing: 1.15}
	rc.block(lb.AccountPayable, creditor...)
	if reference != "" {
		rc.block(lb.Reference, reference)
	}
	if b.Debtor != nil && !b.Debtor.IsZero() {
		rc.block(lb.PayableBy, addressText(b.Debtor)...)
	} else {
		rc.block(lb.PayableByBlank)
		s.frame(mm(marginMM), rc.y-6, mm(52), mm(20))
	}
	amountSection(s, mm(marginMM), mm(22), 6, 8, lb, b.Currency, amount, mm(27), mm(30), mm(10))
	s.Texts = append(s.Texts, Text{
		X: mm(receiptWidthMM - marginMM), Y: mm(82) + 6, Size: 6, Bold: true, AlignEnd: true,
		Value: lb.AcceptancePoint,
	})

	// Sección de pago.
	left := mm(receiptWidthMM + marginMM)
	s.text(left, mm(marginMM)+11, 11, true, lb.PaymentPart)
	qrCode(s, code, left, mm(qrTopMM), mm(qrSizeMM))
	amountSection(s, left, left+mm(14), 8, 10, lb, b.Currency, amount, left+mm(11), mm(40), mm(15))

	pc := &column{s: s, x: mm(infoLeftMM), y: mm(marginMM), labelSize: 8, valueSize: 10, blockGap: 11, lineSpacing: 1.1}
	pc.block(lb.AccountPayable, creditor...)
	if reference != "" {
		pc.block(lb.Reference, reference)
	}
	if info := clean(b.Message); info != "" || clean(b.BillingInfo) != "" {
		pc.block(lb.AdditionalInfo, info, clean(b.BillingInfo))
	}
	if b.Debtor != nil && !b.Debtor.IsZero() {
		pc.block(lb.PayableBy, addressText(b.Debtor)...)
	} else {
		pc.block(lb.PayableByBlank)
		s.frame(mm(infoLeftMM), pc.y-8, mm(65), mm(25))
	}
	return s
}

func amountSection(s *Scene, currencyX, amountX, labelSize, valueSize float64, lb labels, currency, amount string, blankX, blankW, blankH float64) {
	top := mm(amountTopMM)
	s.text(currencyX, top+labelSize, labelSize, true, lb.Currency)
	s.text(amountX, top+labelSize, labelSize, true, lb.Amount)
	s.text(currencyX, top+labelSize+valueSize*1.3, valueSize, false, currency)
	if amount != "" {
		s.text(amountX, top+labelSize+valueSize*1.3, valueSize, false, amount)
		return
	}
	s.frame(blankX, top+labelSize+2, blankW, blankH)
}

// qrCode dibuja cada módulo oscuro como un rectángulo y la cruz suiza centrada.
func qrCode(s *Scene, code image.Image, x, y, size float64) {
	bounds := code.Bounds()
	modules := bounds.Dx()
	if modules == 0 {
		return
	}
	unit := size / float64(modules)
	s.rect(x, y, size, size, true)
	for my := 0; my < modules; my++ {
		// Módulos consecutivos de una fila se funden en un solo rectángulo.
		run := -1
		for mx := 0; mx <= modules; mx++ {
			dark := mx < modules && isDark(code, bounds.Min.X+mx, bounds.Min.Y+my)
			switch {
			case dark && run < 0:
				run = mx
			case !dark && run >= 0:
				s.rect(x+float64(run)*unit, y+float64(my)*unit, float64(mx-run)*unit, unit, false)
				run = -1
			}
		}
	}

	cross := mm(crossSizeMM)
	cx, cy := x+(size-cross)/2, y+(size-cross)/2
	s.rect(cx, cy, cross, cross, true)
	inner := cross * 6 / 7
	ix, iy := cx+(cross-inner)/2, cy+(cross-inner)/2
	s.rect(ix, iy, inner, inner, false)
	// Proporciones de la bandera: brazos de 6/32 de ancho y 20/32 de largo.
	arm, bar := inner*20/32, inner*6/32
	s.rect(ix+(inner-bar)/2, iy+(inner-arm)/2, bar, arm, true)
	s.rect(ix+(inner-arm)/2, iy+(inner-bar)/2, arm, bar, true)
}

func isDark(img image.Image, x, y int) bool {
	r, g, b, _ := img.At(x, y).RGBA()
	return r+g+b < 3*0x8000
}

func addressText(a *entity.Address) []string {
	if a == nil {
		return nil
	}
	place := a.Place()
	if a.Country != "" && a.Country != "CH" {
		place = a.Country + "-" + place
	}
	return []string{clean(a.Name), clean(a.StreetLine()), clean(place)}
}
