package config_test

import (
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/qrbill-invoicer/pkg/config"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("BILLING_HOURLY_WAGE", "150")
	t.Setenv("CREDITOR_IBAN", "CH23 8080 8007 6888 9345 2")
	t.Setenv("CREDITOR_NAME", "Aiza GmbH")
	t.Setenv("DEBTOR_NAME", "Test Customer AG")
}

func TestLoad_ValoresPorDefecto(t *testing.T) {
	setRequired(t)

	cfg, err := config.Load()
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "150", cfg.Billing.HourlyWage.String())
	assert.Equal(t, "8.1", cfg.Billing.TaxRate.String())
	assert.Equal(t, "CHF", cfg.Billing.Currency)
	assert.Equal(t, "de-CH", cfg.Billing.Locale)
	assert.Equal(t, 15, cfg.Billing.CutoverDay)
	assert.Equal(t, "CH", cfg.Creditor.Country)
	assert.Equal(t, "Rechnung", cfg.Paths.Prefix)
	assert.Equal(t, "soffice", cfg.Converter.Binary)
	assert.Equal(t, 2*time.Minute, cfg.Converter.Timeout)
	assert.Equal(t, "last", cfg.Overlay.Page)
	assert.Equal(t, "bottom", cfg.Overlay.Anchor)
	assert.Equal(t, 1.0, cfg.Overlay.Width)
	assert.Equal(t, 4.0, cfg.Overlay.Scale)
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTP.Addr())
}

func TestLoad_LeeVariablesDeEntorno(t *testing.T) {
	setRequired(t)
	t.Setenv("BILLING_TAX_RATE", "7.7")
	t.Setenv("BILLING_CURRENCY", "eur")
	t.Setenv("DEBTOR_NAME", "Test Customer AG")
	t.Setenv("DEBTOR_COUNTRY", "li")
	t.Setenv("CONVERTER_TIMEOUT", "30s")
	t.Setenv("PATHS_EXPORT_SVG", "true")
	t.Setenv("OVERLAY_PAGE", "First")

	cfg, err := config.Load()
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "7.7", cfg.Billing.TaxRate.String())
	assert.Equal(t, "EUR", cfg.Billing.Currency)
	assert.Equal(t, "Test Customer AG", cfg.Debtor.Name)
	assert.Equal(t, "LI", cfg.Debtor.Country)
	assert.Equal(t, 30*time.Second, cfg.Converter.Timeout)
	assert.True(t, cfg.Paths.ExportSVG)
	assert.Equal(t, "first", cfg.Overlay.Page)
}

func TestLoadWithFlags_FlagPisaEntorno(t *testing.T) {
	setRequired(t)
	t.Setenv("PATHS_TEMPLATE", "/env/Rechnung.odt")
	t.Setenv("OVERLAY_PAGE", "last")

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	config.RegisterFlags(fs)
	require.NoError(t, fs.Parse([]string{"--template", "/flag/Rechnung.odt", "--timeout", "5s"}))

	cfg, err := config.LoadWithFlags(fs)
	require.NoError(t, err)

	assert.Equal(t, "/flag/Rechnung.odt", cfg.Paths.Template)
	assert.Equal(t, 5*time.Second, cfg.Converter.Timeout)
	assert.Equal(t, "last", cfg.Overlay.Page, "un flag sin modificar no pisa el entorno")
}

func TestLoad_ErrorDeFormato(t *testing.T) {
	setRequired(t)
	t.Setenv("BILLING_TAX_RATE", "ocho")
	t.Setenv("HTTP_PORT", "http")

	_, err := config.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BILLING_TAX_RATE")
	assert.Contains(t, err.Error(), "HTTP_PORT")
}

func TestValidate(t *testing.T) {
	cases := map[string]struct {
		key, value string
		want       string
	}{
		"salario cero":         {"BILLING_HOURLY_WAGE", "0", "BILLING_HOURLY_WAGE"},
		"moneda no soportada":  {"BILLING_CURRENCY", "USD", "BILLING_CURRENCY"},
		"día de corte":         {"BILLING_CUTOVER_DAY", "0", "BILLING_CUTOVER_DAY"},
		"sin IBAN":             {"CREDITOR_IBAN", "", "CREDITOR_IBAN"},
		"sin destinatario":     {"DEBTOR_NAME", "", "DEBTOR_NAME"},
		"página inválida":      {"OVERLAY_PAGE", "0", "OVERLAY_PAGE"},
		"ancla inválida":       {"OVERLAY_ANCHOR", "middle", "OVERLAY_ANCHOR"},
		"ancho fuera de rango": {"OVERLAY_WIDTH", "1.5", "OVERLAY_WIDTH"},
		"timeout negativo":     {"CONVERTER_TIMEOUT", "-1s", "CONVERTER_TIMEOUT"},
		"nivel de log":         {"LOG_LEVEL", "verbose", "LOG_LEVEL"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			setRequired(t)
			t.Setenv(tc.key, tc.value)

			cfg, err := config.Load()
			require.NoError(t, err)
			err = cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}
