package logger_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/qrbill-invoicer/pkg/logger"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry), "una sola línea JSON")
	return entry
}

func TestNew_ProduccionEscribeJSON(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Config{Env: "production", Level: "info", Service: "qrbill-invoicer", Out: &buf})

	log.Info().Str("stage", "template").Msg("plantilla rellenada")
	log.Debug().Msg("no debe aparecer")

	entry := decodeLine(t, &buf)
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "template", entry["stage"])
	assert.Equal(t, "qrbill-invoicer", entry["service"])
	assert.Equal(t, "plantilla rellenada", entry["message"])
	assert.Contains(t, entry, "time")
}

func TestNew_DesarrolloEscribeConsola(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Config{Env: "Development", Out: &buf})

	log.Warn().Msg("sin QR-bill")

	assert.Contains(t, buf.String(), "sin QR-bill")
	assert.False(t, json.Valid(bytes.TrimSpace(buf.Bytes())), "la consola no es JSON")
}

func TestNew_NivelDesconocidoUsaInfo(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Config{Env: "production", Level: "verbose", Out: &buf})

	log.Debug().Msg("descartado")
	assert.Zero(t, buf.Len())
	log.Info().Msg("visible")
	assert.Equal(t, "visible", decodeLine(t, &buf)["message"])
}

func TestRun_AgregaRunID(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Config{Env: "production", Level: "debug", Out: &buf})

	log.Run("abc").Debug().Msg("x")

	assert.Equal(t, "abc", decodeLine(t, &buf)["run_id"])
}

func TestChild_AgregaCampos(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Config{Env: "production", Level: "debug", Out: &buf})

	log.Child(log.With().Str("path", "Rechnung.pdf")).Debug().Msg("x")

	assert.Equal(t, "Rechnung.pdf", decodeLine(t, &buf)["path"])
}

func TestParseLevel(t *testing.T) {
	cases := map[string]zerolog.Level{
		"":       zerolog.InfoLevel,
		"debug":  zerolog.DebugLevel,
		" WARN ": zerolog.WarnLevel,
		"trace":  zerolog.TraceLevel,
		"error":  zerolog.ErrorLevel,
	}
	for in, want := range cases {
		got, err := logger.ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := logger.ParseLevel("verbose")
	assert.Error(t, err)
}

func TestNop_NoEscribe(t *testing.T) {
	log := logger.Nop()
	assert.NotPanics(t, func() { log.Run("x").Error().Msg("descartado") })
}
