package entity

// RenderedBill sección de pago QR-bill ya dibujada.
type RenderedBill struct {
	Payload string // contenido del Swiss QR Code
	SVG     []byte
	PNG     []byte
	Width   int // píxeles del PNG
	Height  int
}
