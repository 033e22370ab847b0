package catalogsync

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jhoicas/inventario-sync/internal/application/dto"
	"github.com/jhoicas/inventario-sync/internal/domain"
	"github.com/jhoicas/inventario-sync/internal/domain/catalog"
	"github.com/jhoicas/inventario-sync/internal/domain/entity"
	"github.com/jhoicas/inventario-sync/internal/domain/repository"
	"github.com/rs/zerolog"
)

// SyncOptions controla una corrida.
type SyncOptions struct {
	// Resume retoma desde el cursor de la última corrida que no terminó con éxito.
	Resume bool
	// SkipMetrics omite el recálculo de métricas al final.
	SkipMetrics bool
}

// SyncUseCase ejecuta una corrida completa para una tienda: ubicaciones, catálogo paginado y
// recálculo de métricas. No serializa corridas concurrentes; eso lo hace el llamador.
type SyncUseCase struct {
	shops    repository.ShopRepository
	runs     repository.SyncRunRepository
	sources  SourceFactory
	resolver *LocationResolver
	writer   *ReconciliationWriter
	metrics  MetricsRecomputer
	throttle *WriteThrottle
	log      zerolog.Logger
	now      func() time.Time
}

// NewSyncUseCase construye el caso de uso.
func NewSyncUseCase(
	shops repository.ShopRepository,
	runs repository.SyncRunRepository,
	sources SourceFactory,
	resolver *LocationResolver,
	writer *ReconciliationWriter,
	metrics MetricsRecomputer,
	throttle *WriteThrottle,
	log zerolog.Logger,
) *SyncUseCase {
	return &SyncUseCase{
		shops:    shops,
		runs:     runs,
		sources:  sources,
		resolver: resolver,
		writer:   writer,
		metrics:  metrics,
		throttle: throttle,
		log:      log,
		now:      time.Now,
	}
}

// SyncShop ejecuta la corrida. Solo devuelve error si la tienda no existe o no se puede registrar
// la corrida; el resto de fallos queda en el resumen (Success=false, Message corto).
func (uc *SyncUseCase) SyncShop(ctx context.Context, shopID string, opts SyncOptions) (*dto.SyncRunSummary, error) {
	shop, err := uc.shops.GetByID(ctx, shopID)
	if err != nil {
		return nil, fmt.Errorf("get shop: %w", err)
	}
	if shop == nil {
		return nil, domain.ErrShopNotFound
	}
	log := uc.log.With().Str("shop_id", shopID).Logger()

	startCursor := ""
	if opts.Resume {
		prev, err := uc.runs.LastResumable(ctx, shopID)
		if err != nil {
			log.Warn().Err(err).Msg("no se pudo leer la última corrida, se empieza desde el inicio")
		} else if prev != nil && prev.Stalled() {
			// Reanudar otra vez repetiría la misma página; se recorre el catálogo completo.
			log.Warn().Str("cursor", prev.ProductCursor).Str("previous_run", prev.ID).
				Msg("la corrida anterior se reanudó sin avanzar, se empieza desde el inicio")
		} else if prev != nil {
			startCursor = prev.ProductCursor
			log.Info().Str("cursor", startCursor).Str("previous_run", prev.ID).Msg("reanudando sincronización")
		}
	}

	run := &entity.SyncRun{
		ShopID:        shopID,
		Status:        entity.SyncRunStatusRunning,
		ProductCursor: startCursor,
		ResumedFrom:   startCursor,
		StartedAt:     uc.now(),
	}
	if err := uc.throttle.Do(ctx, func(ctx context.Context) error { return uc.runs.Create(ctx, run) }); err != nil {
		return nil, fmt.Errorf("create sync run: %w", err)
	}
	log = log.With().Str("run_id", run.ID).Logger()
	log.Info().Msg("sincronización iniciada")

	source := uc.sources(shop)
	degraded := false

	locations, err := uc.resolver.Resolve(ctx, shopID, source)
	run.LocationsMapped = len(locations)
	if err != nil {
		degraded = true
		log.Warn().Err(err).Int("locations", len(locations)).Msg("ubicaciones incompletas, se continúa con el mapa parcial")
	}

	var total PageResult
	walker := NewCatalogWalker(source, log)
	cursor, walkErr := walker.Walk(ctx, startCursor, func(ctx context.Context, page catalog.Page[catalog.Product]) error {
		total = total.Add(uc.writer.WritePage(ctx, shopID, page.Items, locations))
		if err := ctx.Err(); err != nil {
			return err
		}
		if page.EndCursor == "" {
			return nil
		}
		if err := uc.throttle.Do(ctx, func(ctx context.Context) error {
			return uc.runs.SaveCursor(ctx, run.ID, page.EndCursor)
		}); err != nil {
			log.Warn().Err(err).Str("cursor", page.EndCursor).Msg("no se pudo guardar el cursor")
		}
		log.Debug().Str("cursor", page.EndCursor).Int("products", len(page.Items)).Msg("página reconciliada")
		return nil
	})
	run.ProductCursor = cursor
	run.ProductsSynced = total.Products
	run.VariantsSynced = total.Variants
	run.InventoryRows = total.InventoryRows
	run.SkippedRows = total.SkippedUnmapped
	run.FailedRows = total.Failed
	if total.SkippedUnmapped > 0 || total.Failed > 0 {
		degraded = true
	}

	var metricsSummary dto.MetricsRunSummary
	metricsOK := true
	if !opts.SkipMetrics && ctx.Err() == nil {
		metricsSummary, err = uc.metrics.RecomputeAll(ctx, shopID)
		if err != nil {
			metricsOK = false
			log.Error().Err(err).Msg("falló el recálculo de métricas")
		} else if metricsSummary.ProductsFailed > 0 {
			degraded = true
		}
		run.ProductsUpdated = metricsSummary.ProductsUpdated
	}

	switch {
	case walkErr != nil:
		run.Status = entity.SyncRunStatusFailed
		run.Message = failureMessage(walkErr)
		log.Error().Err(walkErr).Str("cursor", cursor).Msg("sincronización abortada")
	case !metricsOK:
		run.Status = entity.SyncRunStatusFailed
		run.Message = "catálogo sincronizado; falló el recálculo de métricas"
	case degraded:
		run.Status = entity.SyncRunStatusPartial
		run.Message = fmt.Sprintf("sincronización parcial: %d filas omitidas, %d con error", run.SkippedRows, run.FailedRows)
	default:
		run.Status = entity.SyncRunStatusSuccess
		run.Message = "sincronización completa"
	}
	if walkErr == nil {
		run.ProductCursor = ""
	}
	finished := uc.now()
	run.FinishedAt = &finished

	// La corrida se registra aunque ctx se haya cancelado.
	finishCtx := context.WithoutCancel(ctx)
	if err := uc.throttle.Do(finishCtx, func(ctx context.Context) error { return uc.runs.Finish(ctx, run) }); err != nil {
		log.Error().Err(err).Msg("no se pudo cerrar la corrida")
	}

	log.Info().
		Str("status", run.Status).
		Int("products", run.ProductsSynced).
		Int("variants", run.VariantsSynced).
		Int("inventory_rows", run.InventoryRows).
		Int("skipped", run.SkippedRows).
		Int("failed", run.FailedRows).
		Int("metrics_updated", run.ProductsUpdated).
		Dur("elapsed", finished.Sub(run.StartedAt)).
		Msg("sincronización terminada")

	return toSyncRunSummary(run), nil
}

// ListRuns devuelve las últimas corridas de la tienda.
func (uc *SyncUseCase) ListRuns(ctx context.Context, shopID string, limit int) (*dto.SyncRunListResponse, error) {
	if limit <= 0 {
		limit = 20
	}
	runs, err := uc.runs.ListByShop(ctx, shopID, limit)
	if err != nil {
		return nil, err
	}
	items := make([]dto.SyncRunSummary, 0, len(runs))
	for _, r := range runs {
		items = append(items, *toSyncRunSummary(r))
	}
	return &dto.SyncRunListResponse{Items: items}, nil
}

func failureMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrMalformedPage):
		return "sincronización detenida: página del catálogo con forma inesperada"
	case errors.Is(err, domain.ErrRateLimited):
		return "sincronización detenida por límite de uso de la API externa; se puede reanudar"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "sincronización interrumpida; se puede reanudar desde el último cursor"
	default:
		return "sincronización detenida por un error de la API externa"
	}
}

func toSyncRunSummary(r *entity.SyncRun) *dto.SyncRunSummary {
	return &dto.SyncRunSummary{
		RunID:                r.ID,
		ShopID:               r.ShopID,
		Success:              r.Status == entity.SyncRunStatusSuccess || r.Status == entity.SyncRunStatusPartial,
		Status:               r.Status,
		ProductsUpdatedCount: r.ProductsUpdated,
		LocationsMapped:      r.LocationsMapped,
		ProductsSynced:       r.ProductsSynced,
		VariantsSynced:       r.VariantsSynced,
		InventoryRows:        r.InventoryRows,
		SkippedRows:          r.SkippedRows,
		FailedRows:           r.FailedRows,
		Message:              r.Message,
		StartedAt:            r.StartedAt,
		FinishedAt:           r.FinishedAt,
	}
}
