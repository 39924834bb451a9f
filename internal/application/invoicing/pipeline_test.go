package invoicing_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/qrbill-invoicer/internal/application/invoicing"
	"github.com/jhoicas/qrbill-invoicer/internal/domain"
	"github.com/jhoicas/qrbill-invoicer/internal/domain/billing"
	"github.com/jhoicas/qrbill-invoicer/internal/domain/entity"
	"github.com/jhoicas/qrbill-invoicer/internal/infrastructure/converter"
	"github.com/jhoicas/qrbill-invoicer/internal/infrastructure/odt"
	"github.com/jhoicas/qrbill-invoicer/internal/infrastructure/pdfstamp"
	"github.com/jhoicas/qrbill-invoicer/internal/infrastructure/qrbill"
	"github.com/jhoicas/qrbill-invoicer/internal/testsupport"
	"github.com/jhoicas/qrbill-invoicer/pkg/logger"
)

// fakeConverter imita a LibreOffice: escribe un PDF de una página y borra el fuente.
type fakeConverter struct {
	t     *testing.T
	calls int
	err   error
}

func (f *fakeConverter) Convert(_ context.Context, src string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	pdf := converter.PDFPathFor(src)
	require.NoError(f.t, os.WriteFile(pdf, testsupport.PDF(f.t, 1), 0o644))
	require.NoError(f.t, os.Remove(src))
	return pdf, nil
}

// recordingOverlay registra la imagen recibida y delega (o falla).
type recordingOverlay struct {
	next        invoicing.PDFOverlay
	err         error
	imagePath   string
	imageExists bool
}

func (o *recordingOverlay) Overlay(pdfPath, imagePath string) error {
	o.imagePath = imagePath
	_, statErr := os.Stat(imagePath)
	o.imageExists = statErr == nil
	if o.err != nil {
		return o.err
	}
	return o.next.Overlay(pdfPath, imagePath)
}

type fixture struct {
	outDir, workDir string
	conv            *fakeConverter
	overlay         *recordingOverlay
	pipeline        *invoicing.Pipeline
}

func newFixture(t *testing.T, mutate func(*invoicing.Settings)) *fixture {
	t.Helper()
	tplDir := t.TempDir()
	f := &fixture{
		outDir:  t.TempDir(),
		workDir: t.TempDir(),
		conv:    &fakeConverter{t: t},
		overlay: &recordingOverlay{next: pdfstamp.NewStamper(pdfstamp.Options{})},
	}
	settings := invoicing.Settings{
		TemplatePath: testsupport.WriteODT(t, tplDir, "template.odt", testsupport.DefaultEntries(testsupport.ContentWithAllTokens)...),
		OutputDir:    f.outDir,
		WorkDir:      f.workDir,
	}
	if mutate != nil {
		mutate(&settings)
	}

	params := billing.InvoiceParams{
		HourlyWage: decimal.RequireFromString("150"),
		TaxRate:    decimal.RequireFromString("8.1"),
		Recipient: entity.Address{
			Name: "Test Customer AG", Street: "Bahnhofstrasse", HouseNo: "1",
			PostalCode: "8001", Town: "Zürich", Country: "CH",
		},
		Currency: "CHF",
		Locale:   billing.SwissGerman,
	}
	creditor := entity.Company{
		Address: entity.Address{
			Name: "Aiza GmbH", Street: "Bernstrasse", HouseNo: "159",
			PostalCode: "3052", Town: "Zollikofen", Country: "CH",
		},
		IBAN: "CH23 8080 8007 6888 9345 2",
	}

	f.pipeline = invoicing.NewPipeline(
		params, settings,
		odt.NewFiller(billing.SwissGerman),
		f.conv,
		qrbill.NewEncoder(creditor, qrbill.WithScale(1)),
		f.overlay,
		logger.Nop(),
	).WithClock(func() time.Time { return time.Date(2024, time.March, 10, 9, 0, 0, 0, time.UTC) })
	return f
}

func dirNames(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestRun_GeneraPDFConQRBill(t *testing.T) {
	f := newFixture(t, nil)

	res, err := f.pipeline.Run(context.Background(), "3.5")
	require.NoError(t, err)

	assert.True(t, res.Stamped)
	assert.NotEmpty(t, res.RunID)
	stamped, err := api.HasWatermarksFile(res.PDFPath, nil)
	require.NoError(t, err)
	assert.True(t, stamped, "el PDF final lleva el QR-bill")
	assert.Equal(t, filepath.Join(f.outDir, "Rechnung_Test_Customer_AG_10_03_2024.pdf"), res.PDFPath)
	assert.Equal(t, "567.55", res.Invoice.TotalInclTax.StringFixed(2))
	assert.Equal(t, "Februar 2024", res.Invoice.Period.Label)

	assert.Equal(t, []string{"Rechnung_Test_Customer_AG_10_03_2024.pdf"}, dirNames(t, f.outDir), "no quedan intermedios")
	assert.Empty(t, dirNames(t, f.workDir), "los temporales del QR-bill se borran")
	assert.True(t, f.overlay.imageExists, "la imagen existe mientras se incrusta")
	assert.Contains(t, filepath.Base(f.overlay.imagePath), res.RunID)
}

func TestRun_HorasCeroNoEscribeNada(t *testing.T) {
	f := newFixture(t, nil)

	for _, raw := range []string{"0", "-1", "", "abc"} {
		res, err := f.pipeline.Run(context.Background(), raw)
		require.ErrorIs(t, err, domain.ErrInvalidHours, raw)
		assert.Nil(t, res)
		assert.Equal(t, domain.StageInput, domain.Stage(err))
	}
	assert.Empty(t, dirNames(t, f.outDir))
	assert.Empty(t, dirNames(t, f.workDir))
	assert.Zero(t, f.conv.calls)
}

func TestRunHours_AceptaDecimal(t *testing.T) {
	f := newFixture(t, nil)
	res, err := f.pipeline.RunHours(context.Background(), decimal.RequireFromString("1"))
	require.NoError(t, err)
	assert.Equal(t, "162.15", res.Invoice.TotalInclTax.StringFixed(2))
}

func TestRun_ErrorSiPlantillaNoExiste(t *testing.T) {
	f := newFixture(t, func(s *invoicing.Settings) { s.TemplatePath = filepath.Join(t.TempDir(), "nope.odt") })

	_, err := f.pipeline.Run(context.Background(), "3.5")
	require.ErrorIs(t, err, domain.ErrTemplateNotFound)
	assert.Empty(t, dirNames(t, f.outDir))
	assert.Zero(t, f.conv.calls)
}

func TestRun_ErrorDelConversorDetieneElPipeline(t *testing.T) {
	f := newFixture(t, nil)
	f.conv.err = domain.NewStageError(domain.StageConvert, domain.ErrConverterUnavailable, "soffice", errors.New("no instalado"))

	res, err := f.pipeline.Run(context.Background(), "3.5")
	require.ErrorIs(t, err, domain.ErrConverterUnavailable)
	assert.Nil(t, res)
	assert.Equal(t, domain.StageConvert, domain.Stage(err))
	assert.Empty(t, f.overlay.imagePath, "no se llega a la incrustación")
}

func TestRun_FalloDeIncrustacionDevuelvePDFSinQR(t *testing.T) {
	f := newFixture(t, nil)
	f.overlay.err = domain.NewStageError(domain.StageOverlay, domain.ErrPdfSave, "x.pdf", errors.New("archivo bloqueado"))

	res, err := f.pipeline.Run(context.Background(), "3.5")
	require.ErrorIs(t, err, domain.ErrPdfSave)
	require.NotNil(t, res, "el PDF convertido sigue siendo entregable")
	assert.False(t, res.Stamped)
	assert.FileExists(t, res.PDFPath)
	assert.Empty(t, dirNames(t, f.workDir), "los temporales se borran también al fallar")
}

func TestRun_ExportaSVG(t *testing.T) {
	f := newFixture(t, func(s *invoicing.Settings) { s.ExportSVG = true })

	res, err := f.pipeline.Run(context.Background(), "3.5")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(f.outDir, "Rechnung_Test_Customer_AG_10_03_2024.svg"), res.SVGPath)

	svg, err := os.ReadFile(res.SVGPath)
	require.NoError(t, err)
	assert.Contains(t, string(svg), "Zahlteil")
}

func TestWithOutputDir_NoModificaElOriginal(t *testing.T) {
	f := newFixture(t, nil)
	other := t.TempDir()

	res, err := f.pipeline.WithOutputDir(other).Run(context.Background(), "3.5")
	require.NoError(t, err)
	assert.Equal(t, other, filepath.Dir(res.PDFPath))
	assert.Empty(t, dirNames(t, f.outDir))
}
