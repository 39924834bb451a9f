// Package converter convierte documentos de oficina a PDF invocando
// LibreOffice en modo headless.
package converter

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/jhoicas/qrbill-invoicer/internal/domain"
)

// DefaultTimeout espera máxima por la conversión si no se configura otra.
const DefaultTimeout = 2 * time.Minute

// Config configuración del conversor.
type Config struct {
	Binary  string        // "soffice" o ruta absoluta
	Timeout time.Duration // <= 0 usa DefaultTimeout
	// IsolatedProfile usa un perfil de usuario temporal por conversión, para que
	// varias ejecuciones concurrentes no compartan la instancia de LibreOffice.
	IsolatedProfile bool
}

// LibreOffice implementa invoicing.DocumentConverter.
type LibreOffice struct {
	cfg Config
}

// NewLibreOffice construye el conversor.
func NewLibreOffice(cfg Config) *LibreOffice {
	if cfg.Binary == "" {
		cfg.Binary = "soffice"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &LibreOffice{cfg: cfg}
}

// PDFPathFor ruta esperada del PDF: mismo directorio, mismo nombre base, extensión .pdf.
func PDFPathFor(sourcePath string) string {
	base := strings.TrimSuffix(filepath.Base(sourcePath), filepath.Ext(sourcePath))
	return filepath.Join(filepath.Dir(sourcePath), base+".pdf")
}

// Args argumentos de la invocación (sin el binario).
func (c *LibreOffice) Args(sourcePath, profileDir string) []string {
	args := []string{"--headless", "--norestore", "--nolockcheck"}
	if profileDir != "" {
		u := url.URL{Scheme: "file", Path: filepath.ToSlash(profileDir)}
		args = append(args, "-env:UserInstallation="+u.String())
	}
	return append(args, "--convert-to", "pdf", "--outdir", filepath.Dir(sourcePath), sourcePath)
}

// Convert convierte sourcePath a PDF y espera a que el proceso termine.
// Si el PDF existe al final, borra el documento fuente; si no, lo conserva
// para diagnóstico.
//
// Retorna:
//   - domain.ErrConverterUnavailable  si el binario no existe o no arranca.
//   - domain.ErrConversionFailed      si vence el timeout, el proceso falla o no aparece el PDF.
func (c *LibreOffice) Convert(ctx context.Context, sourcePath string) (string, error) {
	sourcePath, err := filepath.Abs(sourcePath)
	if err != nil {
		return "", domain.NewStageError(domain.StageConvert, domain.ErrConversionFailed, sourcePath, err)
	}
	if _, err := os.Stat(sourcePath); err != nil {
		return "", domain.NewStageError(domain.StageConvert, domain.ErrConversionFailed, sourcePath, err)
	}

	bin, err := exec.LookPath(c.cfg.Binary)
	if err != nil {
		return "", domain.NewStageError(domain.StageConvert, domain.ErrConverterUnavailable, c.cfg.Binary, err)
	}

	var profileDir string
	if c.cfg.IsolatedProfile {
		profileDir, err = os.MkdirTemp("", "lo-profile-*")
		if err != nil {
			return "", domain.NewStageError(domain.StageConvert, domain.ErrConverterUnavailable, c.cfg.Binary,
				fmt.Errorf("converter: crear perfil temporal: %w", err))
		}
		defer os.RemoveAll(profileDir)
	}

	pdfPath := PDFPathFor(sourcePath)
	output, err := c.run(ctx, bin, c.Args(sourcePath, profileDir))
	if err != nil {
		var se *domain.StageError
		if errors.As(err, &se) {
			se.Path = sourcePath
			se.Output = output
		}
		return "", err
	}

	if _, err := os.Stat(pdfPath); err != nil {
		se := domain.NewStageError(domain.StageConvert, domain.ErrConversionFailed, pdfPath,
			fmt.Errorf("converter: el PDF no fue generado: %w", err))
		se.Output = output
		return "", se
	}

	// Un fuente huérfano no invalida un PDF ya generado.
	_ = os.Remove(sourcePath)
	return pdfPath, nil
}

func (c *LibreOffice) run(ctx context.Context, bin string, args []string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	var out bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Stdout = &out
	cmd.Stderr = &out
	cmd.WaitDelay = 5 * time.Second

	if err := cmd.Start(); err != nil {
		return "", domain.NewStageError(domain.StageConvert, domain.ErrConverterUnavailable, "", err)
	}
	err := cmd.Wait()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return out.String(), domain.NewStageError(domain.StageConvert, domain.ErrConversionFailed, "",
			fmt.Errorf("converter: proceso terminado tras %s: %w", c.cfg.Timeout, ctxErr))
	}
	if err != nil {
		return out.String(), domain.NewStageError(domain.StageConvert, domain.ErrConversionFailed, "",
			fmt.Errorf("converter: %s: %w", filepath.Base(bin), err))
	}
	return out.String(), nil
}
