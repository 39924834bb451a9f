// Package pdfstamp incrusta una imagen PNG en una página de un PDF existente.
package pdfstamp

import (
	"bytes"
	"fmt"
	"image/png"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/jhoicas/qrbill-invoicer/internal/domain"
)

func init() {
	// Sin directorio de configuración en $HOME: la configuración por defecto basta.
	api.DisableConfigDir()
}

// Image imagen a incrustar. Width/Height en píxeles.
type Image struct {
	PNG    []byte
	Width  int
	Height int
}

// validate comprueba que PNG sea decodificable antes de abrir el PDF: pdfcpu
// solo decodifica la imagen al incrustarla y su error se confundiría con uno
// de escritura.
func (img Image) validate() error {
	if img.Width <= 0 || img.Height <= 0 {
		return fmt.Errorf("pdfstamp: tamaño de imagen %dx%d inválido", img.Width, img.Height)
	}
	if _, err := png.DecodeConfig(bytes.NewReader(img.PNG)); err != nil {
		return fmt.Errorf("pdfstamp: imagen PNG inválida: %w", err)
	}
	return nil
}

// Options ubicación de la imagen.
type Options struct {
	Page          PageSelector
	Anchor        Anchor
	WidthFraction float64 // fracción del ancho de página; 0 = ancho completo
}

// Stamper implementa invoicing.PDFOverlay con pdfcpu.
type Stamper struct {
	opts Options
}

// NewStamper construye el stamper; una página sin definir se interpreta como la última.
func NewStamper(opts Options) *Stamper {
	if opts.Page == (PageSelector{}) {
		opts.Page = LastPage
	}
	if opts.Anchor == "" {
		opts.Anchor = AnchorBottom
	}
	return &Stamper{opts: opts}
}

// Overlay incrusta el PNG de imagePath en pdfPath (ver Stamp).
func (s *Stamper) Overlay(pdfPath, imagePath string) error {
	data, err := os.ReadFile(imagePath)
	if err != nil {
		return domain.NewStageError(domain.StageOverlay, domain.ErrOverlayImage, imagePath, fmt.Errorf("pdfstamp: leer imagen: %w", err))
	}
	cfg, err := png.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return domain.NewStageError(domain.StageOverlay, domain.ErrOverlayImage, imagePath, fmt.Errorf("pdfstamp: imagen PNG inválida: %w", err))
	}
	return s.Stamp(pdfPath, Image{PNG: data, Width: cfg.Width, Height: cfg.Height})
}

// Stamp dibuja img sobre la página configurada y reemplaza pdfPath.
// El archivo original solo se sustituye si la escritura completa fue exitosa.
//
// Retorna:
//   - domain.ErrPdfOpen       si el PDF no se puede leer o está corrupto.
//   - domain.ErrPageNotFound  si la página configurada no existe.
//   - domain.ErrOverlayImage  si pdfcpu no acepta la imagen o su ubicación.
//   - domain.ErrPdfSave       si falla la generación o escritura del resultado.
func (s *Stamper) Stamp(pdfPath string, img Image) error {
	if err := img.validate(); err != nil {
		return domain.NewStageError(domain.StageOverlay, domain.ErrOverlayImage, pdfPath, err)
	}
	data, err := os.ReadFile(pdfPath)
	if err != nil {
		return domain.NewStageError(domain.StageOverlay, domain.ErrPdfOpen, pdfPath, err)
	}

	conf := newConfiguration()
	ctx, err := api.ReadContext(bytes.NewReader(data), conf)
	if err != nil {
		return domain.NewStageError(domain.StageOverlay, domain.ErrPdfOpen, pdfPath, fmt.Errorf("pdfstamp: leer: %w", err))
	}
	if err := api.ValidateContext(ctx); err != nil {
		return domain.NewStageError(domain.StageOverlay, domain.ErrPdfOpen, pdfPath, fmt.Errorf("pdfstamp: validar: %w", err))
	}

	pageNr, ok := s.opts.Page.Resolve(ctx.PageCount)
	if !ok {
		return domain.NewStageError(domain.StageOverlay, domain.ErrPageNotFound, pdfPath,
			fmt.Errorf("pdfstamp: página %s de %d", s.opts.Page, ctx.PageCount))
	}
	dims, err := ctx.PageDims()
	if err != nil {
		return domain.NewStageError(domain.StageOverlay, domain.ErrPdfOpen, pdfPath,
			fmt.Errorf("pdfstamp: dimensiones de página: %w", err))
	}
	if len(dims) < pageNr {
		return domain.NewStageError(domain.StageOverlay, domain.ErrPageNotFound, pdfPath,
			fmt.Errorf("pdfstamp: sin dimensiones para la página %d", pageNr))
	}
	page := dims[pageNr-1]

	r := Place(page.Width, page.Height, img.Width, img.Height, s.opts.WidthFraction, s.opts.Anchor)
	desc := Description(r, img.Width)
	wm, err := api.ImageWatermarkForReader(bytes.NewReader(img.PNG), desc, true, false, types.POINTS)
	if err != nil {
		return domain.NewStageError(domain.StageOverlay, domain.ErrOverlayImage, pdfPath, fmt.Errorf("pdfstamp: preparar marca de agua %q: %w", desc, err))
	}

	var out bytes.Buffer
	if err := api.AddWatermarks(bytes.NewReader(data), &out, []string{strconv.Itoa(pageNr)}, wm, newConfiguration()); err != nil {
		return domain.NewStageError(domain.StageOverlay, domain.ErrPdfSave, pdfPath, fmt.Errorf("pdfstamp: incrustar: %w", err))
	}

	if err := replaceFile(pdfPath, out.Bytes()); err != nil {
		return domain.NewStageError(domain.StageOverlay, domain.ErrPdfSave, pdfPath, err)
	}
	return nil
}

// Description descripción del sello para pdfcpu: esquina inferior izquierda en
// (X, Y) y escala absoluta (pdfcpu mide la imagen a 1 píxel por punto).
// pdfcpu acepta prefijos de clave pero rechaza los ambiguos ("sc" es
// scalefactor y scriptname), por eso las claves van completas.
func Description(r Rect, imgW int) string {
	scale := 1.0
	if imgW > 0 {
		scale = r.W / float64(imgW)
	}
	return fmt.Sprintf("pos:bl, off:%.2f %.2f, scalefactor:%.6f abs, rot:0, op:1", r.X, r.Y, scale)
}

func newConfiguration() *model.Configuration {
	conf := model.NewDefaultConfiguration()
	// LibreOffice genera PDFs válidos, pero pdfcpu en modo estricto rechaza algunas variantes.
	conf.ValidationMode = model.ValidationRelaxed
	return conf
}

func replaceFile(path string, data []byte) (err error) {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("pdfstamp: stat: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("pdfstamp: crear temporal: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return fmt.Errorf("pdfstamp: escribir temporal: %w", err)
	}
	if err = tmp.Chmod(info.Mode().Perm()); err != nil {
		return fmt.Errorf("pdfstamp: permisos: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("pdfstamp: cerrar temporal: %w", err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("pdfstamp: reemplazar %s: %w", path, err)
	}
	return nil
}
