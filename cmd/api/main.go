package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jhoicas/inventario-sync/internal/app"
	httpRouter "github.com/jhoicas/inventario-sync/internal/interfaces/http"
	"github.com/jhoicas/inventario-sync/pkg/config"
	"github.com/jhoicas/inventario-sync/pkg/logger"
)

// @title        Inventario Sync API
// @version      1.0
// @description  Sincronización de catálogo e inventario y métricas de stock por tienda.
// @BasePath     /
// @securityDefinitions.apikey  Bearer
// @in                          header
// @name                        Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: "api",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Int("max_concurrent_writes", cfg.DB.MaxConcurrentWrites).
		Msg("iniciando aplicación")

	ctx := context.Background()
	svc, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar servicios")
	}
	defer svc.Close()

	srv := fiber.New(fiber.Config{
		AppName: cfg.App.Name,
		// Una sincronización completa puede tardar minutos.
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Minute * 15,
		IdleTimeout:  time.Second * 60,
	})
	srv.Use(recover.New())

	httpRouter.Router(srv, httpRouter.RouterDeps{
		Syncer:      svc.Coordinator,
		Runs:        svc.Sync,
		Metrics:     svc.Coordinator,
		ProductUC:   svc.Products,
		WarehouseUC: svc.Warehouses,
		JWTSecret:   cfg.JWT.Secret,
		SwaggerFile: cfg.HTTP.SwaggerFile,
		Logger:      log.Component("http"),
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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
