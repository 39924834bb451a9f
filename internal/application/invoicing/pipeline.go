// Package invoicing orquesta la generación de la factura: cálculo, plantilla,
// conversión a PDF y QR-bill. Las etapas corren en secuencia y la primera que
// falla detiene la ejecución.
package invoicing

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/qrbill-invoicer/internal/domain"
	"github.com/jhoicas/qrbill-invoicer/internal/domain/billing"
	"github.com/jhoicas/qrbill-invoicer/internal/domain/entity"
	"github.com/jhoicas/qrbill-invoicer/pkg/logger"
)

// DefaultPrefix prefijo de los archivos generados.
const DefaultPrefix = "Rechnung"

// Settings rutas de una ejecución.
type Settings struct {
	TemplatePath string
	OutputDir    string
	Prefix       string // "" = DefaultPrefix
	WorkDir      string // temporales del QR-bill; "" = os.TempDir()
	ExportSVG    bool   // guarda también el QR-bill vectorial junto al PDF
}

// Result archivos producidos por una ejecución.
type Result struct {
	RunID   string
	Invoice *entity.Invoice
	PDFPath string
	SVGPath string // solo con Settings.ExportSVG
	Stamped bool   // false = el PDF existe pero sin QR-bill
}

// Pipeline caso de uso "generar factura del período".
type Pipeline struct {
	params    billing.InvoiceParams // plantilla: Hours y Now se completan en cada ejecución
	settings  Settings
	filler    TemplateFiller
	converter DocumentConverter
	encoder   QREncoder
	overlay   PDFOverlay
	log       *logger.Logger
	now       func() time.Time
}

// NewPipeline construye el caso de uso inyectando todas sus dependencias.
func NewPipeline(
	params billing.InvoiceParams,
	settings Settings,
	filler TemplateFiller,
	converter DocumentConverter,
	encoder QREncoder,
	overlay PDFOverlay,
	log *logger.Logger,
) *Pipeline {
	if settings.Prefix == "" {
		settings.Prefix = DefaultPrefix
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Pipeline{
		params:    params,
		settings:  settings,
		filler:    filler,
		converter: converter,
		encoder:   encoder,
		overlay:   overlay,
		log:       log,
		now:       time.Now,
	}
}

// WithClock copia del pipeline con otro reloj (tests, regeneración de meses anteriores).
func (p *Pipeline) WithClock(now func() time.Time) *Pipeline {
	cp := *p
	cp.now = now
	return &cp
}

// WithOutputDir copia del pipeline que escribe en dir.
func (p *Pipeline) WithOutputDir(dir string) *Pipeline {
	cp := *p
	cp.settings.OutputDir = dir
	return &cp
}

// Run valida las horas ingresadas y genera la factura.
// Una entrada inválida falla con domain.ErrInvalidHours antes de tocar el disco.
func (p *Pipeline) Run(ctx context.Context, hoursRaw string) (*Result, error) {
	hours, err := billing.ParseHours(hoursRaw)
	if err != nil {
		return nil, p.fail(p.log, domain.NewStageError(domain.StageInput, domain.ErrInvalidHours, "", err))
	}
	return p.RunHours(ctx, hours)
}

// RunHours igual que Run con las horas ya parseadas.
func (p *Pipeline) RunHours(ctx context.Context, hours decimal.Decimal) (*Result, error) {
	params := p.params
	params.Hours = hours
	params.Now = p.now()

	inv, err := billing.NewInvoice(params)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidHours) {
			return nil, p.fail(p.log, domain.NewStageError(domain.StageInput, domain.ErrInvalidHours, "", err))
		}
		return nil, p.fail(p.log, fmt.Errorf("invoicing: construir factura: %w", err))
	}
	return p.Generate(ctx, inv)
}

// Generate ejecuta las etapas para una factura ya construida:
//
//	plantilla → PDF → QR-bill → PDF con QR-bill
//
// Si falla el QR-bill o su incrustación, el PDF convertido sigue siendo un
// entregable válido: se devuelve el Result (Stamped=false) junto con el error.
func (p *Pipeline) Generate(ctx context.Context, inv *entity.Invoice) (*Result, error) {
	runID := uuid.NewString()
	log := p.log.Run(runID)
	base := inv.FileBaseName(p.settings.Prefix)

	log.Info().
		Str("recipient", inv.Recipient.Name).
		Str("period", inv.Period.Label).
		Str("hours", inv.Hours.String()).
		Str("total", inv.TotalInclTax.StringFixed(2)).
		Msg("generando factura")

	// ── 1. Plantilla ──────────────────────────────────────────────────────────
	if _, err := os.Stat(p.settings.TemplatePath); err != nil {
		return nil, p.fail(log, domain.NewStageError(domain.StageTemplate, domain.ErrTemplateNotFound, p.settings.TemplatePath, err))
	}
	docPath := filepath.Join(p.settings.OutputDir, base+filepath.Ext(p.settings.TemplatePath))
	start := time.Now()
	if err := p.filler.FillFile(p.settings.TemplatePath, docPath, inv); err != nil {
		return nil, p.fail(log, err)
	}
	log.Debug().Str("stage", domain.StageTemplate).Str("path", docPath).Dur("elapsed", time.Since(start)).Msg("plantilla rellenada")

	// ── 2. Conversión a PDF ───────────────────────────────────────────────────
	start = time.Now()
	pdfPath, err := p.converter.Convert(ctx, docPath)
	if err != nil {
		return nil, p.fail(log, err)
	}
	log.Debug().Str("stage", domain.StageConvert).Str("path", pdfPath).Dur("elapsed", time.Since(start)).Msg("documento convertido")

	res := &Result{RunID: runID, Invoice: inv, PDFPath: pdfPath}

	// ── 3. QR-bill ────────────────────────────────────────────────────────────
	rendered, err := p.encoder.Encode(inv)
	if err != nil {
		return res, p.fail(log, domain.NewStageError(domain.StageQRBill, domain.ErrQRBill, "", err))
	}

	// ── 4. Incrustación ───────────────────────────────────────────────────────
	if err := p.stamp(log, runID, pdfPath, rendered); err != nil {
		return res, p.fail(log, err)
	}
	res.Stamped = true

	if p.settings.ExportSVG {
		svgPath := filepath.Join(p.settings.OutputDir, base+".svg")
		if err := os.WriteFile(svgPath, rendered.SVG, 0o644); err != nil {
			log.Warn().Err(err).Str("path", svgPath).Msg("no se pudo exportar el QR-bill vectorial")
		} else {
			res.SVGPath = svgPath
		}
	}

	log.Info().Str("path", pdfPath).Msg("factura generada")
	return res, nil
}

// stamp escribe los intermedios del QR-bill con nombres únicos, los incrusta
// y los borra en cualquier caso.
func (p *Pipeline) stamp(log *logger.Logger, runID, pdfPath string, rendered *entity.RenderedBill) error {
	workDir := p.settings.WorkDir
	if workDir == "" {
		workDir = os.TempDir()
	}
	pngPath := filepath.Join(workDir, "qrbill-"+runID+".png")
	svgPath := filepath.Join(workDir, "qrbill-"+runID+".svg")
	defer removeQuietly(log, pngPath)
	defer removeQuietly(log, svgPath)

	if err := os.WriteFile(svgPath, rendered.SVG, 0o600); err != nil {
		return domain.NewStageError(domain.StageQRBill, domain.ErrQRBill, svgPath, fmt.Errorf("invoicing: escribir svg: %w", err))
	}
	if err := os.WriteFile(pngPath, rendered.PNG, 0o600); err != nil {
		return domain.NewStageError(domain.StageQRBill, domain.ErrQRBill, pngPath, fmt.Errorf("invoicing: escribir png: %w", err))
	}

	start := time.Now()
	if err := p.overlay.Overlay(pdfPath, pngPath); err != nil {
		return err
	}
	log.Debug().Str("stage", domain.StageOverlay).Int("width", rendered.Width).Int("height", rendered.Height).
		Dur("elapsed", time.Since(start)).Msg("QR-bill incrustado")
	return nil
}

func (p *Pipeline) fail(log *logger.Logger, err error) error {
	ev := log.Error().Err(err)
	var se *domain.StageError
	if errors.As(err, &se) {
		ev = ev.Str("stage", se.Stage).Str("path", se.Path)
	}
	ev.Msg("generación de factura fallida")
	return err
}

func removeQuietly(log *logger.Logger, path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warn().Err(err).Str("path", path).Msg("no se pudo borrar temporal")
	}
}
