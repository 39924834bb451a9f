package entity

// Company es el acreedor que emite la factura y recibe el pago.
type Company struct {
	Address
	IBAN      string // cuenta del acreedor, con o sin espacios
	Reference string // referencia de pago QRR/SCOR; vacío = sin referencia
	Message   string // mensaje no estructurado impreso en el QR-bill
}
