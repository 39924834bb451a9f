package pdfstamp_test

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/gen2brain/go-fitz"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/qrbill-invoicer/internal/domain"
	"github.com/jhoicas/qrbill-invoicer/internal/infrastructure/pdfstamp"
	"github.com/jhoicas/qrbill-invoicer/internal/testsupport"
)

// blackImage PNG negro de 2:1, como el QR-bill.
func blackImage(t *testing.T) pdfstamp.Image {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 400, 200))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.Black), image.Point{}, draw.Src)
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return pdfstamp.Image{PNG: buf.Bytes(), Width: 400, Height: 200}
}

// darkRatio fracción de píxeles oscuros en la banda [from, to) (proporción de la altura) de la página.
func darkRatio(t *testing.T, pdfPath string, page int, from, to float64) float64 {
	t.Helper()
	doc, err := fitz.New(pdfPath)
	require.NoError(t, err)
	defer doc.Close()

	img, err := doc.ImageDPI(page, 36)
	require.NoError(t, err)

	b := img.Bounds()
	y0, y1 := b.Min.Y+int(float64(b.Dy())*from), b.Min.Y+int(float64(b.Dy())*to)
	dark, total := 0, 0
	for y := y0; y < y1; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bb, _ := img.At(x, y).RGBA()
			if r+g+bb < 3*0x4000 {
				dark++
			}
			total++
		}
	}
	return float64(dark) / float64(total)
}

func TestOverlay_UltimaPaginaAbajo(t *testing.T) {
	path := testsupport.WritePDF(t, t.TempDir(), "Rechnung.pdf", 2)

	require.NoError(t, pdfstamp.NewStamper(pdfstamp.Options{}).Stamp(path, blackImage(t)))

	n, err := api.PageCountFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2, n, "no se agregan páginas")
	stamped, err := api.HasWatermarksFile(path, nil)
	require.NoError(t, err)
	assert.True(t, stamped, "pdfcpu reconoce el sello")

	// Ancho completo con proporción 2:1 en A4: ocupa ~35% inferior de la página.
	assert.Greater(t, darkRatio(t, path, 1, 0.75, 1), 0.9, "la imagen cubre el pie de la última página")
	assert.Less(t, darkRatio(t, path, 1, 0.2, 0.5), 0.05, "el resto de la página queda intacto")
	assert.Less(t, darkRatio(t, path, 0, 0.75, 1), 0.05, "la primera página no se modifica")
}

func TestOverlay_PrimeraPaginaArriba(t *testing.T) {
	path := testsupport.WritePDF(t, t.TempDir(), "Rechnung.pdf", 2)

	s := pdfstamp.NewStamper(pdfstamp.Options{Page: pdfstamp.FirstPage, Anchor: pdfstamp.AnchorTop})
	require.NoError(t, s.Stamp(path, blackImage(t)))

	assert.Greater(t, darkRatio(t, path, 0, 0.02, 0.3), 0.9)
	assert.Less(t, darkRatio(t, path, 0, 0.75, 1), 0.05)
	assert.Less(t, darkRatio(t, path, 1, 0.02, 0.3), 0.05)
}

func TestOverlay_ErrorSiPaginaNoExiste(t *testing.T) {
	path := testsupport.WritePDF(t, t.TempDir(), "Rechnung.pdf", 1)
	before, err := os.ReadFile(path)
	require.NoError(t, err)

	err = pdfstamp.NewStamper(pdfstamp.Options{Page: pdfstamp.Page(3)}).Stamp(path, blackImage(t))
	require.ErrorIs(t, err, domain.ErrPageNotFound)
	assert.Equal(t, domain.StageOverlay, domain.Stage(err))

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, before, after, "el PDF no se modifica si falla")
}

func TestOverlay_ErrorSiPDFCorrupto(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Rechnung.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4\nbasura"), 0o644))

	err := pdfstamp.NewStamper(pdfstamp.Options{}).Stamp(path, blackImage(t))
	assert.ErrorIs(t, err, domain.ErrPdfOpen)
}

func TestOverlay_ErrorSiPDFNoExiste(t *testing.T) {
	err := pdfstamp.NewStamper(pdfstamp.Options{}).Stamp(filepath.Join(t.TempDir(), "nope.pdf"), blackImage(t))
	assert.ErrorIs(t, err, domain.ErrPdfOpen)
}

func TestOverlay_DesdeArchivoPNG(t *testing.T) {
	dir := t.TempDir()
	path := testsupport.WritePDF(t, dir, "Rechnung.pdf", 1)
	imgPath := filepath.Join(t.TempDir(), "qrbill.png")
	require.NoError(t, os.WriteFile(imgPath, blackImage(t).PNG, 0o600))

	require.NoError(t, pdfstamp.NewStamper(pdfstamp.Options{}).Overlay(path, imgPath))
	assert.Greater(t, darkRatio(t, path, 0, 0.75, 1), 0.9)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no deben quedar temporales junto al PDF")
}

func TestOverlay_ErrorSiImagenNoEsPNG(t *testing.T) {
	path := testsupport.WritePDF(t, t.TempDir(), "Rechnung.pdf", 1)
	imgPath := filepath.Join(t.TempDir(), "qrbill.png")
	require.NoError(t, os.WriteFile(imgPath, []byte("no es png"), 0o600))

	err := pdfstamp.NewStamper(pdfstamp.Options{}).Overlay(path, imgPath)
	assert.ErrorIs(t, err, domain.ErrOverlayImage)
	assert.NotErrorIs(t, err, domain.ErrPdfSave)
}

func TestStamp_ImagenInvalidaNoSeReportaComoErrorDeGuardado(t *testing.T) {
	cases := map[string]pdfstamp.Image{
		"bytes corruptos": {PNG: []byte("\x89PNG basura"), Width: 400, Height: 200},
		"sin tamaño":      {PNG: blackImage(t).PNG, Width: 0, Height: 200},
	}
	for name, img := range cases {
		t.Run(name, func(t *testing.T) {
			path := testsupport.WritePDF(t, t.TempDir(), "Rechnung.pdf", 1)
			before, err := os.ReadFile(path)
			require.NoError(t, err)

			err = pdfstamp.NewStamper(pdfstamp.Options{}).Stamp(path, img)
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrOverlayImage)
			assert.NotErrorIs(t, err, domain.ErrPdfSave)
			assert.Equal(t, domain.StageOverlay, domain.Stage(err))

			after, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.Equal(t, before, after, "el PDF no debe modificarse")
		})
	}
}
