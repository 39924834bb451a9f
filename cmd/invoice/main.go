package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/jhoicas/qrbill-invoicer/internal/app"
	"github.com/jhoicas/qrbill-invoicer/internal/domain"
	"github.com/jhoicas/qrbill-invoicer/pkg/config"
	"github.com/jhoicas/qrbill-invoicer/pkg/logger"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// run ejecuta la CLI y devuelve el código de salida (ver exitCode).
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := pflag.NewFlagSet("invoice", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	hours := fs.String("hours", "", "horas trabajadas en el período, ej: 3.5 (sin flag se piden por stdin)")
	config.RegisterFlags(fs)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return exitOK
		}
		return exitOther
	}

	cfg, err := config.LoadWithFlags(fs)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitOther
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
		Out:     stderr,
	})

	pipeline, err := app.NewPipeline(cfg, log)
	if err != nil {
		log.Error().Err(err).Msg("configuración inválida")
		return exitOther
	}

	raw := *hours
	if !fs.Changed("hours") {
		if raw, err = prompt(stdin, stderr); err != nil {
			log.Error().Err(err).Msg("lectura de horas")
			return exitOther
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	res, err := pipeline.Run(ctx, raw)
	if res != nil && !res.Stamped {
		// el PDF sin QR-bill sigue siendo entregable
		fmt.Fprintln(stdout, res.PDFPath)
	}
	if err != nil {
		return exitCode(err)
	}
	fmt.Fprintln(stdout, res.PDFPath)
	if res.SVGPath != "" {
		fmt.Fprintln(stdout, res.SVGPath)
	}
	return exitOK
}

func prompt(in io.Reader, out io.Writer) (string, error) {
	fmt.Fprint(out, "Horas trabajadas: ")
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// Códigos de salida.
const (
	exitOK        = 0
	exitOther     = 1 // configuración, flags, errores no clasificados
	exitHours     = 2
	exitTemplate  = 3
	exitConverter = 4
	exitOverlay   = 5 // también QR-bill: el PDF queda sin QR
)

func exitCode(err error) int {
	switch domain.Stage(err) {
	case "":
		if err == nil {
			return exitOK
		}
		return exitOther
	case domain.StageInput:
		return exitHours
	case domain.StageTemplate:
		return exitTemplate
	case domain.StageConvert:
		return exitConverter
	case domain.StageQRBill, domain.StageOverlay:
		return exitOverlay
	default:
		return exitOther
	}
}
