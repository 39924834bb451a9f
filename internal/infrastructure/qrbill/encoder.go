package qrbill

import (
	"fmt"

	"github.com/boombuler/barcode/qr"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/qrbill-invoicer/internal/domain/entity"
)

// Encoder construye el QR-bill de una factura para un acreedor fijo.
type Encoder struct {
	creditor    entity.Company
	lang        Language
	scale       float64
	billingInfo string
}

// Option configura el Encoder.
type Option func(*Encoder)

// WithLanguage idioma de los textos impresos (por defecto alemán).
func WithLanguage(l Language) Option { return func(e *Encoder) { e.lang = l } }

// WithScale factor de ampliación del PNG respecto a 72 dpi.
func WithScale(s float64) Option { return func(e *Encoder) { e.scale = s } }

// WithBillingInfo información de facturación estructurada (campo StrdBkgInf).
func WithBillingInfo(info string) Option { return func(e *Encoder) { e.billingInfo = info } }

// NewEncoder crea el encoder para el acreedor dado.
func NewEncoder(creditor entity.Company, opts ...Option) *Encoder {
	e := &Encoder{creditor: creditor, lang: German, scale: DefaultScale}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Bill mapea la factura a los datos del QR-bill: importe = total con IVA,
// deudor = destinatario (en blanco si no tiene dirección).
func (e *Encoder) Bill(inv *entity.Invoice) *Bill {
	b := &Bill{
		Account:       e.creditor.IBAN,
		Creditor:      e.creditor.Address,
		Amount:        decimal.NewNullDecimal(inv.TotalInclTax),
		Currency:      inv.Currency,
		ReferenceType: DetectReferenceType(e.creditor.Reference),
		Reference:     e.creditor.Reference,
		Message:       e.creditor.Message,
		BillingInfo:   e.billingInfo,
	}
	if !inv.Recipient.IsZero() {
		debtor := inv.Recipient
		b.Debtor = &debtor
	}
	return b
}

// Encode valida, genera el Swiss QR Code y dibuja el QR-bill completo.
func (e *Encoder) Encode(inv *entity.Invoice) (*entity.RenderedBill, error) {
	return e.EncodeBill(e.Bill(inv))
}

// EncodeBill igual que Encode, a partir de datos ya armados.
func (e *Encoder) EncodeBill(b *Bill) (*entity.RenderedBill, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}
	payload := b.Payload()

	code, err := qr.Encode(payload, qr.M, qr.Unicode)
	if err != nil {
		return nil, fmt.Errorf("qrbill: generar código QR: %w", err)
	}

	scene := layout(b, e.lang, code)
	png, bounds, err := scene.PNG(e.scale)
	if err != nil {
		return nil, err
	}
	return &entity.RenderedBill{
		Payload: payload,
		SVG:     scene.SVG(),
		PNG:     png,
		Width:   bounds.Dx(),
		Height:  bounds.Dy(),
	}, nil
}
