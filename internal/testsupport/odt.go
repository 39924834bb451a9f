// Package testsupport genera fixtures (plantillas ODT y PDFs) para los tests
// de los demás paquetes. No se usa en producción.
package testsupport

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// ContentWithAllTokens content.xml mínimo que contiene todos los marcadores,
// algunos repetidos.
const ContentWithAllTokens = `<?xml version="1.0" encoding="UTF-8"?>
<office:document-content xmlns:office="urn:oasis:names:tc:opendocument:xmlns:office:1.0" xmlns:text="urn:oasis:names:tc:opendocument:xmlns:text:1.0" office:version="1.3">
<office:body><office:text>
<text:p>[Recipient]</text:p>
<text:p>[Street]</text:p>
<text:p>[Place]</text:p>
<text:p>Datum: [Date]</text:p>
<text:p>Rechnung [MonthYear] ([FirstDateMonth] - [LastDateMonth])</text:p>
<text:p>[Hours] h à CHF [HourlyWage] = CHF [TotalPrice]</text:p>
<text:p>MWST [MWSTRate] %: CHF [MWSTPrice]</text:p>
<text:p>Total: CHF [TotalPriceInclMWST]</text:p>
<text:p>Zahlbar bis Ende [MonthYear], an [Recipient] adressiert.</text:p>
</office:text></office:body>
</office:document-content>`

// Entry una entrada del ZIP de la plantilla.
type Entry struct {
	Name   string
	Body   string
	Method uint16
}

var fixedTime = time.Date(2024, time.January, 2, 3, 4, 5, 0, time.UTC)

// DefaultEntries estructura típica de un .odt: mimetype sin comprimir primero.
func DefaultEntries(content string) []Entry {
	return []Entry{
		{Name: "mimetype", Body: "application/vnd.oasis.opendocument.text", Method: zip.Store},
		{Name: "META-INF/manifest.xml", Body: `<?xml version="1.0" encoding="UTF-8"?><manifest:manifest xmlns:manifest="urn:oasis:names:tc:opendocument:xmlns:manifest:1.0"/>`, Method: zip.Deflate},
		{Name: "content.xml", Body: content, Method: zip.Deflate},
		{Name: "styles.xml", Body: `<?xml version="1.0" encoding="UTF-8"?><office:document-styles xmlns:office="urn:oasis:names:tc:opendocument:xmlns:office:1.0"/>`, Method: zip.Deflate},
		{Name: "Pictures/logo.png", Body: "\x89PNG\r\n\x1a\nnot-really-a-png", Method: zip.Store},
	}
}

// ODT empaqueta las entradas en un ZIP.
func ODT(t testing.TB, entries ...Entry) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, e := range entries {
		w, err := zw.CreateHeader(&zip.FileHeader{Name: e.Name, Method: e.Method, Modified: fixedTime})
		require.NoError(t, err)
		_, err = w.Write([]byte(e.Body))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

// WriteODT escribe la plantilla en dir/name y devuelve la ruta.
func WriteODT(t testing.TB, dir, name string, entries ...Entry) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, ODT(t, entries...), 0o644))
	return path
}
