package qrbill_test

import (
	"bytes"
	"image/png"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/qrbill-invoicer/internal/domain/billing"
	"github.com/jhoicas/qrbill-invoicer/internal/domain/entity"
	"github.com/jhoicas/qrbill-invoicer/internal/infrastructure/qrbill"
)

var ptPerMM = 72 / 25.4

func creditor() entity.Company {
	return entity.Company{
		Address: creditorAddress(),
		IBAN:    "CH23 8080 8007 6888 9345 2",
		Message: "Invoice for services",
	}
}

func invoice(t *testing.T) *entity.Invoice {
	t.Helper()
	inv, err := billing.NewInvoice(billing.InvoiceParams{
		HourlyWage: decimal.RequireFromString("150"),
		TaxRate:    decimal.RequireFromString("8.1"),
		Hours:      decimal.RequireFromString("3.5"),
		Recipient:  *debtorAddress(),
		Currency:   "CHF",
		Now:        time.Date(2024, time.March, 10, 9, 0, 0, 0, time.UTC),
		Locale:     billing.SwissGerman,
	})
	require.NoError(t, err)
	return inv
}

func TestEncoder_Bill(t *testing.T) {
	b := qrbill.NewEncoder(creditor()).Bill(invoice(t))

	assert.True(t, b.Amount.Valid)
	assert.Equal(t, "567.55", b.Amount.Decimal.StringFixed(2), "importe = total con IVA")
	assert.Equal(t, "CHF", b.Currency)
	require.NotNil(t, b.Debtor)
	assert.Equal(t, "Test Customer AG", b.Debtor.Name)
	assert.Equal(t, qrbill.ReferenceNone, b.ReferenceType)
	assert.Equal(t, "Invoice for services", b.Message)
}

func TestEncoder_DestinatarioVacioDejaDeudorEnBlanco(t *testing.T) {
	inv := invoice(t)
	inv.Recipient = entity.Address{}
	assert.Nil(t, qrbill.NewEncoder(creditor()).Bill(inv).Debtor)
}

func TestEncode_GeneraPNGAmpliadoYTransparente(t *testing.T) {
	r, err := qrbill.NewEncoder(creditor()).Encode(invoice(t))
	require.NoError(t, err)

	assert.InDelta(t, 4*210*ptPerMM, float64(r.Width), 1)
	assert.InDelta(t, 4*105*ptPerMM, float64(r.Height), 1)

	img, err := png.Decode(bytes.NewReader(r.PNG))
	require.NoError(t, err)
	assert.Equal(t, r.Width, img.Bounds().Dx())
	assert.Equal(t, r.Height, img.Bounds().Dy())

	_, _, _, a := img.At(r.Width-2, r.Height-2).RGBA()
	assert.Zero(t, a, "el fondo debe ser transparente")

	// Centro de la cruz suiza: blanco opaco.
	cx := int(4 * (62 + 5 + 23) * ptPerMM)
	cy := int(4 * (17 + 23) * ptPerMM)
	cr, cg, cb, ca := img.At(cx, cy).RGBA()
	assert.Equal(t, uint32(0xffff), ca)
	assert.Equal(t, []uint32{0xffff, 0xffff, 0xffff}, []uint32{cr, cg, cb})

	// Línea de corte vertical entre recibo y sección de pago.
	_, _, _, la := img.At(int(4*62*ptPerMM)+1, r.Height/2).RGBA()
	assert.NotZero(t, la)
}

func TestEncode_EscalaConfigurable(t *testing.T) {
	r, err := qrbill.NewEncoder(creditor(), qrbill.WithScale(1)).Encode(invoice(t))
	require.NoError(t, err)
	assert.InDelta(t, 210*ptPerMM, float64(r.Width), 1)
}

func TestEncode_SVGConEtiquetasYDatos(t *testing.T) {
	r, err := qrbill.NewEncoder(creditor()).Encode(invoice(t))
	require.NoError(t, err)

	svg := string(r.SVG)
	assert.True(t, strings.HasPrefix(svg, "<?xml"))
	assert.Contains(t, svg, `width="210mm" height="105mm"`)
	assert.Contains(t, svg, ">Empfangsschein</text>")
	assert.Contains(t, svg, ">Zahlteil</text>")
	assert.Contains(t, svg, ">CH23 8080 8007 6888 9345 2</text>")
	assert.Contains(t, svg, ">567.55</text>")
	assert.Contains(t, svg, ">8001 Zürich</text>")
	assert.Contains(t, svg, ">Invoice for services</text>")
	assert.NotContains(t, svg, ">Referenz</text>", "sin referencia no se imprime el bloque")
}

func TestEncode_IdiomaFrances(t *testing.T) {
	r, err := qrbill.NewEncoder(creditor(), qrbill.WithLanguage(qrbill.French)).Encode(invoice(t))
	require.NoError(t, err)
	assert.Contains(t, string(r.SVG), ">Récépissé</text>")
	assert.Contains(t, string(r.SVG), ">Section paiement</text>")
}

func TestEncode_PayloadCoincideConBill(t *testing.T) {
	enc := qrbill.NewEncoder(creditor())
	inv := invoice(t)
	r, err := enc.Encode(inv)
	require.NoError(t, err)
	assert.Equal(t, enc.Bill(inv).Payload(), r.Payload)
}

func TestEncode_ErrorSiAcreedorInvalido(t *testing.T) {
	c := creditor()
	c.IBAN = "CH00 0000 0000 0000 0000 0"
	_, err := qrbill.NewEncoder(c).Encode(invoice(t))
	assert.ErrorIs(t, err, qrbill.ErrInvalidBill)
}
