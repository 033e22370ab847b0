package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jhoicas/inventario-sync/internal/app"
	"github.com/jhoicas/inventario-sync/internal/application/catalogsync"
	"github.com/jhoicas/inventario-sync/pkg/config"
	"github.com/jhoicas/inventario-sync/pkg/logger"
)

// Programa: sincroniza todas las tiendas cada SYNC_INTERVAL, o una sola vez con -once.
//
//	go run ./cmd/sync -once
//	go run ./cmd/sync -shop <shop_id>
func main() {
	once := flag.Bool("once", false, "ejecutar una sola pasada y salir")
	shopID := flag.String("shop", "", "sincronizar solo esta tienda (implica -once)")
	skipMetrics := flag.Bool("skip-metrics", false, "no recalcular métricas al final")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}
	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: "sync",
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	svc, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar servicios")
	}
	defer svc.Close()

	opts := catalogsync.SyncOptions{Resume: cfg.Sync.ResumeOnStart, SkipMetrics: *skipMetrics}

	if *shopID != "" {
		summary, err := svc.Coordinator.SyncShop(ctx, *shopID, opts)
		if err != nil {
			log.Error().Err(err).Str("shop_id", *shopID).Msg("sincronización fallida")
			svc.Close()
			os.Exit(1)
		}
		log.Info().Str("status", summary.Status).Str("run_id", summary.RunID).Msg(summary.Message)
		return
	}

	runPass := func() {
		started := time.Now()
		summaries, err := svc.Coordinator.SyncAll(ctx, opts)
		if err != nil {
			log.Error().Err(err).Msg("pasada de sincronización interrumpida")
		}
		ok := 0
		for _, s := range summaries {
			if s.Success {
				ok++
			}
		}
		log.Info().Int("shops", len(summaries)).Int("ok", ok).Dur("elapsed", time.Since(started)).Msg("pasada terminada")
	}

	runPass()
	if *once {
		return
	}

	log.Info().Dur("interval", cfg.Sync.Interval).Msg("scheduler iniciado")
	ticker := time.NewTicker(cfg.Sync.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("señal de apagado recibida, scheduler detenido")
			return
		case <-ticker.C:
			runPass()
		}
	}
}
