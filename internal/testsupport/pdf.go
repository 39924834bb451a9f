package testsupport

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/page"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/stretchr/testify/require"
)

// PDF genera un PDF A4 de n páginas con una línea de texto por página.
func PDF(t testing.TB, pages int) []byte {
	t.Helper()
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithTitle("Rechnung", true).
		Build()
	m := maroto.New(cfg)
	for i := 1; i <= pages; i++ {
		m.AddPages(page.New().Add(text.NewRow(10, fmt.Sprintf("Seite %d", i))))
	}
	doc, err := m.Generate()
	require.NoError(t, err)
	return doc.GetBytes()
}

// WritePDF escribe un PDF de n páginas en dir/name y devuelve la ruta.
func WritePDF(t testing.TB, dir, name string, pages int) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, PDF(t, pages), 0o644))
	return path
}
