// Package logger envuelve zerolog con los campos comunes de cada ejecución
// (servicio, run_id) para que todos los componentes registren igual.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config opciones para el logger.
type Config struct {
	Env     string    // development -> consola legible; otro valor -> JSON
	Level   string    // trace, debug, info, warn, error; vacío = info
	Service string    // campo "service" en cada entrada; vacío = se omite
	Out     io.Writer // nil = stderr; stdout queda libre para la salida de la CLI
}

// Logger wrapper sobre zerolog para inyección y consistencia.
type Logger struct {
	zl zerolog.Logger
}

// New crea un logger estructurado y lo instala como logger global de zerolog.
// Un nivel desconocido cae en info; Config.Validate lo rechaza antes.
func New(cfg Config) *Logger {
	out := cfg.Out
	if out == nil {
		out = os.Stderr
	}
	if strings.EqualFold(cfg.Env, "development") {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: "15:04:05"}
	}

	level, err := ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zc := zerolog.New(out).Level(level).With().Timestamp()
	if cfg.Service != "" {
		zc = zc.Str("service", cfg.Service)
	}
	zl := zc.Logger()
	log.Logger = zl

	return &Logger{zl: zl}
}

// ParseLevel acepta los niveles en cualquier capitalización; "" es info.
func ParseLevel(s string) (zerolog.Level, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return zerolog.InfoLevel, nil
	}
	level, err := zerolog.ParseLevel(s)
	if err != nil || level == zerolog.NoLevel {
		return zerolog.InfoLevel, fmt.Errorf("logger: nivel %q desconocido", s)
	}
	return level, nil
}

// Nop logger que descarta todo; para tests.
func Nop() *Logger {
	return &Logger{zl: zerolog.Nop()}
}

func (l *Logger) Debug() *zerolog.Event { return l.zl.Debug() }
func (l *Logger) Info() *zerolog.Event  { return l.zl.Info() }
func (l *Logger) Warn() *zerolog.Event  { return l.zl.Warn() }
func (l *Logger) Error() *zerolog.Event { return l.zl.Error() }
func (l *Logger) Fatal() *zerolog.Event { return l.zl.Fatal() }

// With contexto para construir un sublogger (ver Child).
func (l *Logger) With() zerolog.Context {
	return l.zl.With()
}

// Child devuelve un Logger con los campos de ctx, ej: l.Child(l.With().Str("k", v)).
func (l *Logger) Child(ctx zerolog.Context) *Logger {
	return &Logger{zl: ctx.Logger()}
}

// Run sublogger de una ejecución del pipeline: toda entrada lleva run_id.
func (l *Logger) Run(runID string) *Logger {
	return l.Child(l.zl.With().Str("run_id", runID))
}
