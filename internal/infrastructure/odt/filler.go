// Package odt rellena plantillas OpenDocument (.odt): un ZIP cuyo content.xml
// contiene los marcadores de la factura. Solo se reescribe content.xml; el
// resto de entradas se copia en crudo, sin recomprimir.
package odt

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/beevik/etree"

	"github.com/jhoicas/qrbill-invoicer/internal/domain"
	"github.com/jhoicas/qrbill-invoicer/internal/domain/billing"
	"github.com/jhoicas/qrbill-invoicer/internal/domain/entity"
)

// ContentEntry nombre de la entrada con el cuerpo del documento.
const ContentEntry = "content.xml"

// Filler sustituye los marcadores de la plantilla con los datos de la factura.
type Filler struct {
	number billing.NumberFormat
}

// NewFiller construye el filler con el formato numérico del locale de la factura.
func NewFiller(loc billing.Locale) *Filler {
	return &Filler{number: loc.Number}
}

// Fill lee la plantilla y devuelve los bytes del documento relleno.
//
// Retorna:
//   - domain.ErrTemplateNotFound   si la plantilla no existe.
//   - domain.ErrMalformedTemplate  si no es un ZIP, falta content.xml (o aparece
//     más de una vez), no es UTF-8 o el XML resultante no está bien formado.
//   - domain.ErrArchiveWrite       si falla la escritura del nuevo ZIP.
func (f *Filler) Fill(templatePath string, inv *entity.Invoice) ([]byte, error) {
	data, err := os.ReadFile(templatePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, domain.NewStageError(domain.StageTemplate, domain.ErrTemplateNotFound, templatePath, err)
		}
		return nil, domain.NewStageError(domain.StageTemplate, domain.ErrMalformedTemplate, templatePath, err)
	}

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, domain.NewStageError(domain.StageTemplate, domain.ErrMalformedTemplate, templatePath,
			fmt.Errorf("odt: abrir zip: %w", err))
	}

	var buf bytes.Buffer
	if err := f.rewrite(zr, &buf, inv); err != nil {
		var se *domain.StageError
		if errors.As(err, &se) {
			se.Path = templatePath
			return nil, se
		}
		return nil, domain.NewStageError(domain.StageTemplate, domain.ErrArchiveWrite, templatePath, err)
	}
	return buf.Bytes(), nil
}

// FillFile rellena la plantilla y escribe el resultado en outputPath de forma
// atómica: archivo temporal en el mismo directorio + rename. Si algo falla no
// queda ningún archivo en outputPath.
func (f *Filler) FillFile(templatePath, outputPath string, inv *entity.Invoice) error {
	out, err := f.Fill(templatePath, inv)
	if err != nil {
		return err
	}
	if err := writeAtomic(outputPath, out); err != nil {
		return domain.NewStageError(domain.StageTemplate, domain.ErrArchiveWrite, outputPath, err)
	}
	return nil
}

// rewrite copia zr en w reemplazando content.xml.
func (f *Filler) rewrite(zr *zip.Reader, w io.Writer, inv *entity.Invoice) error {
	found := 0
	for _, zf := range zr.File {
		if zf.Name == ContentEntry {
			found++
		}
	}
	if found != 1 {
		return domain.NewStageError(domain.StageTemplate, domain.ErrMalformedTemplate, "",
			fmt.Errorf("odt: se esperaba exactamente una entrada %s, hay %d", ContentEntry, found))
	}

	replacer := f.replacer(inv)
	zw := zip.NewWriter(w)
	zw.SetComment(zr.Comment)

	for _, zf := range zr.File {
		if zf.Name != ContentEntry {
			// Copia en crudo: mismos bytes comprimidos, misma cabecera y mismo orden.
			if err := zw.Copy(zf); err != nil {
				return fmt.Errorf("odt: copiar entrada %s: %w", zf.Name, err)
			}
			continue
		}

		content, err := readEntry(zf)
		if err != nil {
			return err
		}
		filled := replacer.Replace(content)
		if err := checkWellFormed(filled); err != nil {
			return err
		}

		hdr := &zip.FileHeader{
			Name:          zf.Name,
			Comment:       zf.Comment,
			Method:        zf.Method,
			Modified:      zf.Modified,
			ExternalAttrs: zf.ExternalAttrs,
		}
		ew, err := zw.CreateHeader(hdr)
		if err != nil {
			return fmt.Errorf("odt: crear entrada %s: %w", ContentEntry, err)
		}
		if _, err := io.WriteString(ew, filled); err != nil {
			return fmt.Errorf("odt: escribir %s: %w", ContentEntry, err)
		}
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("odt: cerrar zip: %w", err)
	}
	return nil
}

// replacer sustitución de una sola pasada: un valor insertado nunca se vuelve a escanear.
func (f *Filler) replacer(inv *entity.Invoice) *strings.Replacer {
	values := Values(inv, f.number)
	pairs := make([]string, 0, 2*len(Tokens))
	for _, tok := range Tokens {
		pairs = append(pairs, tok, escapeXML(values[tok]))
	}
	return strings.NewReplacer(pairs...)
}

func readEntry(zf *zip.File) (string, error) {
	rc, err := zf.Open()
	if err != nil {
		return "", domain.NewStageError(domain.StageTemplate, domain.ErrMalformedTemplate, "",
			fmt.Errorf("odt: abrir %s: %w", zf.Name, err))
	}
	defer rc.Close()

	raw, err := io.ReadAll(rc)
	if err != nil {
		return "", domain.NewStageError(domain.StageTemplate, domain.ErrMalformedTemplate, "",
			fmt.Errorf("odt: leer %s: %w", zf.Name, err))
	}
	if !utf8.Valid(raw) {
		return "", domain.NewStageError(domain.StageTemplate, domain.ErrMalformedTemplate, "",
			fmt.Errorf("odt: %s no es UTF-8", zf.Name))
	}
	return string(bytes.TrimPrefix(raw, []byte("\xef\xbb\xbf"))), nil
}

func checkWellFormed(content string) error {
	doc := etree.NewDocument()
	if err := doc.ReadFromString(content); err != nil {
		return domain.NewStageError(domain.StageTemplate, domain.ErrMalformedTemplate, "",
			fmt.Errorf("odt: %s no es XML válido: %w", ContentEntry, err))
	}
	if doc.Root() == nil {
		return domain.NewStageError(domain.StageTemplate, domain.ErrMalformedTemplate, "",
			fmt.Errorf("odt: %s sin elemento raíz", ContentEntry))
	}
	return nil
}

func escapeXML(s string) string {
	var b strings.Builder
	_ = xml.EscapeText(&b, []byte(s)) // strings.Builder nunca falla
	return b.String()
}

func writeAtomic(path string, data []byte) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("odt: crear temporal: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return fmt.Errorf("odt: escribir temporal: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("odt: sync temporal: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("odt: cerrar temporal: %w", err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("odt: renombrar a %s: %w", path, err)
	}
	return nil
}
