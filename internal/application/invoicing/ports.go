package invoicing

import (
	"context"

	"github.com/jhoicas/qrbill-invoicer/internal/domain/entity"
)

// TemplateFiller rellena la plantilla con los datos de la factura y escribe el documento en outputPath.
// Implementación: odt.Filler.
type TemplateFiller interface {
	FillFile(templatePath, outputPath string, inv *entity.Invoice) error
}

// DocumentConverter convierte el documento relleno a PDF y devuelve la ruta del PDF.
// Implementación: converter.LibreOffice.
type DocumentConverter interface {
	Convert(ctx context.Context, sourcePath string) (string, error)
}

// QREncoder genera el QR-bill de la factura.
// Implementación: qrbill.Encoder.
type QREncoder interface {
	Encode(inv *entity.Invoice) (*entity.RenderedBill, error)
}

// PDFOverlay incrusta la imagen PNG de imagePath en el PDF, reemplazándolo.
// Implementación: pdfstamp.Stamper.
type PDFOverlay interface {
	Overlay(pdfPath, imagePath string) error
}
