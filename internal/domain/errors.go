package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Errores de dominio (sin dependencias externas).
// Cada etapa del pipeline reporta uno de estos tipos; se comparan con errors.Is.
var (
	ErrInvalidHours = errors.New("horas trabajadas inválidas")

	ErrTemplateNotFound  = errors.New("plantilla no encontrada")
	ErrMalformedTemplate = errors.New("plantilla mal formada")
	ErrArchiveWrite      = errors.New("error al escribir el archivo del documento")

	ErrConverterUnavailable = errors.New("conversor de documentos no disponible")
	ErrConversionFailed     = errors.New("conversión a PDF fallida")

	ErrQRBill = errors.New("no se puede generar el QR-bill")

	ErrPdfOpen      = errors.New("no se puede abrir el PDF")
	ErrOverlayImage = errors.New("imagen del QR-bill no aplicable al PDF")
	ErrPageNotFound = errors.New("página no encontrada en el PDF")
	ErrPdfSave      = errors.New("no se puede guardar el PDF")
)

// Etapas del pipeline.
const (
	StageInput    = "input"
	StageTemplate = "template"
	StageConvert  = "convert"
	StageQRBill   = "qrbill"
	StageOverlay  = "overlay"
)

// StageError describe el fallo de una etapa con el contexto necesario para diagnosticarlo.
// Unwrap expone tanto el tipo (Kind) como la causa subyacente (Err).
type StageError struct {
	Stage  string
	Kind   error  // uno de los Err* de este paquete
	Path   string // archivo involucrado, si aplica
	Output string // stdout/stderr capturado de procesos externos
	Err    error
}

func (e *StageError) Error() string {
	var b strings.Builder
	b.WriteString(e.Stage)
	// Si la causa ya envuelve al tipo, no se repite su texto.
	if e.Kind != nil && !errors.Is(e.Err, e.Kind) {
		b.WriteString(": ")
		b.WriteString(e.Kind.Error())
	}
	if e.Path != "" {
		fmt.Fprintf(&b, " (%s)", e.Path)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	if out := strings.TrimSpace(e.Output); out != "" {
		b.WriteString("\n")
		b.WriteString(out)
	}
	return b.String()
}

func (e *StageError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// NewStageError construye un StageError; cause puede ser nil.
func NewStageError(stage string, kind error, path string, cause error) *StageError {
	return &StageError{Stage: stage, Kind: kind, Path: path, Err: cause}
}

// Stage devuelve la etapa que originó err, o "" si no es un StageError.
func Stage(err error) string {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage
	}
	return ""
}
