package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/spf13/pflag"

	"github.com/jhoicas/qrbill-invoicer/internal/app"
	httpRouter "github.com/jhoicas/qrbill-invoicer/internal/interfaces/http"
	"github.com/jhoicas/qrbill-invoicer/pkg/config"
	"github.com/jhoicas/qrbill-invoicer/pkg/jwt"
	"github.com/jhoicas/qrbill-invoicer/pkg/logger"
)

func main() {
	fs := pflag.NewFlagSet("api", pflag.ExitOnError)
	issue := fs.String("issue-token", "", "emite un token para el operador indicado y termina")
	config.RegisterFlags(fs)
	_ = fs.Parse(os.Args[1:])

	cfg, err := config.LoadWithFlags(fs)
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})

	if *issue != "" {
		tok, err := jwt.Generate(cfg.JWT.Secret, *issue, jwt.ScopeInvoice, cfg.JWT.Issuer, cfg.JWT.Expiration)
		if err != nil {
			log.Fatal().Err(err).Msg("emitir token")
		}
		fmt.Println(tok)
		return
	}

	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Bool("auth", cfg.JWT.Secret != "").
		Msg("iniciando aplicación")

	pipeline, err := app.NewPipeline(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("configuración inválida")
	}

	// La conversión puede tardar hasta CONVERTER_TIMEOUT; el WriteTimeout la cubre.
	srv := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: cfg.Converter.Timeout + 30*time.Second,
		IdleTimeout:  time.Second * 60,
		BodyLimit:    4 * 1024,
	})
	srv.Use(recover.New())

	httpRouter.Router(srv, httpRouter.RouterDeps{
		Pipeline:  pipeline,
		AppName:   cfg.App.Name,
		JWTSecret: cfg.JWT.Secret,
		Log:       log,
	})

	go func() {
		if err := srv.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Converter.Timeout+10*time.Second)
	defer cancel()

	if err := srv.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
